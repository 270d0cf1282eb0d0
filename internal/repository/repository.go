package repository

import (
	"context"
	"time"

	"acetrack-backend/internal/authz"
	"acetrack-backend/internal/domain"
)

// Repositories bundles every repository bound to one database handle,
// either the pool or a single transaction.
type Repositories struct {
	Users         UserRepository
	Orgs          OrganizationRepository
	Members       MemberRepository
	Events        EventRepository
	Subscriptions SubscriptionRepository
	Attendance    AttendanceRepository
}

// Tx runs fn with repositories bound to one transaction; fn returning
// an error rolls everything back.
type Tx interface {
	ExecTx(ctx context.Context, fn func(Repositories) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateRole(ctx context.Context, userID int32, role domain.Role) error
}

type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id int32) (*domain.Organization, error)
	GetByName(ctx context.Context, name string) (*domain.Organization, error) // case-insensitive
	GetByAdminUserID(ctx context.Context, userID int32) (*domain.Organization, error)
	List(ctx context.Context, scope authz.OrganizationScope) ([]domain.Organization, error)
	Update(ctx context.Context, org *domain.Organization) error
	UpdateStatus(ctx context.Context, orgID int32, status domain.OrgStatus) error
}

type MemberRepository interface {
	Create(ctx context.Context, m *domain.Member) error
	GetByID(ctx context.Context, id int32) (*domain.Member, error)
	GetByOrgAndUser(ctx context.Context, orgID, userID int32) (*domain.Member, error)
	List(ctx context.Context, scope authz.MemberScope) ([]domain.Member, error)
	ListByUser(ctx context.Context, userID int32) ([]domain.Member, error)
	Update(ctx context.Context, m *domain.Member) error
	Delete(ctx context.Context, id int32) error
	DeactivateByOrg(ctx context.Context, orgID int32) error
	CountActiveByOrg(ctx context.Context, orgID int32) (int32, error)
}

type EventRepository interface {
	Create(ctx context.Context, e *domain.Event) error
	// GetByID excludes soft-deleted events unless includeDeleted is set.
	GetByID(ctx context.Context, id int32, includeDeleted bool) (*domain.Event, error)
	List(ctx context.Context, scope authz.EventScope, orgFilter *int32) ([]domain.Event, error)
	Update(ctx context.Context, e *domain.Event) error
	UpdateStatus(ctx context.Context, id int32, status domain.EventStatus) error
	SoftDelete(ctx context.Context, id int32, at time.Time) error
	Restore(ctx context.Context, id int32) error
	HardDelete(ctx context.Context, id int32) error
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	ListPublishedOn(ctx context.Context, date time.Time) ([]domain.Event, error)
}

type SubscriptionRepository interface {
	Create(ctx context.Context, s *domain.Subscription) error
	GetByID(ctx context.Context, id int32) (*domain.Subscription, error)
	List(ctx context.Context, scope authz.SubscriptionScope) ([]domain.Subscription, error)
	Update(ctx context.Context, s *domain.Subscription) error
	// HasActiveOrPending reports whether the org already holds a
	// subscription in active or pending status.
	HasActiveOrPending(ctx context.Context, orgID int32) (bool, error)
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Subscription, error)
}

type AttendanceRepository interface {
	Create(ctx context.Context, a *domain.Attendance) error
	GetByEventAndUser(ctx context.Context, eventID, userID int32) (*domain.Attendance, error)
	Update(ctx context.Context, a *domain.Attendance) error
	ListByEvent(ctx context.Context, eventID int32) ([]domain.Attendance, error)
	ListByUser(ctx context.Context, userID int32) ([]domain.Attendance, error)
	SummaryByEvent(ctx context.Context, eventID int32) (*domain.AttendanceSummary, error)
}
