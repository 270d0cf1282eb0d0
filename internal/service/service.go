package service

import (
	"context"
	"time"

	"acetrack-backend/internal/authz"
	"acetrack-backend/internal/domain"
)

type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, string, *domain.User, error) // access, refresh
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	// ResolveActor loads the caller and, for org_admins, the
	// organization they administer. Rejected for non-active users.
	ResolveActor(ctx context.Context, userID int32) (authz.Actor, error)
}

type UserService interface {
	GetProfile(ctx context.Context, actor authz.Actor) (*domain.User, error)
	// UpdateProfile patches the caller's own name and password.
	UpdateProfile(ctx context.Context, actor authz.Actor, name, password *string) (*domain.User, error)
}

type CreateEventInput struct {
	OrgID             int32  `json:"org_id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	EventDate         string `json:"event_date"` // "2006-01-02"
	BannerURL         string `json:"banner_url"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	CheckInStartTime  string `json:"check_in_start_time"`
	CheckInEndTime    string `json:"check_in_end_time"`
	CheckOutStartTime string `json:"check_out_start_time"`
	CheckOutEndTime   string `json:"check_out_end_time"`
	Location          string `json:"location"`
	Mandatory         bool   `json:"mandatory"`
}

// UpdateEventInput is a sparse patch; nil leaves a field untouched.
type UpdateEventInput struct {
	Title             *string `json:"title"`
	Description       *string `json:"description"`
	EventDate         *string `json:"event_date"`
	BannerURL         *string `json:"banner_url"`
	StartTime         *string `json:"start_time"`
	EndTime           *string `json:"end_time"`
	CheckInStartTime  *string `json:"check_in_start_time"`
	CheckInEndTime    *string `json:"check_in_end_time"`
	CheckOutStartTime *string `json:"check_out_start_time"`
	CheckOutEndTime   *string `json:"check_out_end_time"`
	Location          *string `json:"location"`
	Mandatory         *bool   `json:"mandatory"`
}

type EventService interface {
	CreateEvent(ctx context.Context, actor authz.Actor, in CreateEventInput) (*domain.Event, error)
	GetEvent(ctx context.Context, actor authz.Actor, id int32, includeDeleted bool) (*domain.Event, error)
	ListEvents(ctx context.Context, actor authz.Actor, orgFilter *int32, includeDeleted bool) ([]domain.Event, error)
	UpdateEvent(ctx context.Context, actor authz.Actor, id int32, in UpdateEventInput) (*domain.Event, error)
	Transition(ctx context.Context, actor authz.Actor, id int32, target domain.EventStatus) (*domain.Event, error)
	// DeleteEvent soft-deletes; with permanently set it hard-deletes an
	// already soft-deleted event (admin only).
	DeleteEvent(ctx context.Context, actor authz.Actor, id int32, permanently bool) error
	RestoreEvent(ctx context.Context, actor authz.Actor, id int32) (*domain.Event, error)
	// CheckInToken issues the short-lived signed payload encoded in the
	// event's QR code.
	CheckInToken(ctx context.Context, actor authz.Actor, eventID int32) (string, error)
}

type CreateOrganizationInput struct {
	Name          string                      `json:"name"`
	Description   string                      `json:"description"`
	Settings      domain.OrgSettings          `json:"settings"`
	Duration      domain.SubscriptionDuration `json:"duration"`
	AmountCents   int32                       `json:"amount_cents"`
	PaymentMethod string                      `json:"payment_method"`
}

type UpdateOrganizationInput struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Settings    *domain.OrgSettings `json:"settings"`
}

type OrganizationService interface {
	// CreateOrganization founds the organization together with its
	// pending subscription, the admin membership record and the
	// caller's role promotion, all in one transaction.
	CreateOrganization(ctx context.Context, actor authz.Actor, in CreateOrganizationInput) (*domain.Organization, error)
	GetOrganization(ctx context.Context, actor authz.Actor, id int32) (*domain.Organization, error)
	ListOrganizations(ctx context.Context, actor authz.Actor) ([]domain.Organization, error)
	UpdateOrganization(ctx context.Context, actor authz.Actor, id int32, in UpdateOrganizationInput) (*domain.Organization, error)
	// DeleteOrganization sets status inactive, deactivates every member
	// and, when the org's own admin deletes it, reverts their global
	// role to member.
	DeleteOrganization(ctx context.Context, actor authz.Actor, id int32) error
}

type MemberService interface {
	AddMember(ctx context.Context, actor authz.Actor, orgID, userID int32, role domain.MemberRole, notes string) (*domain.Member, error)
	RequestToJoin(ctx context.Context, actor authz.Actor, orgID int32, notes string) (*domain.Member, error)
	ApproveMember(ctx context.Context, actor authz.Actor, memberID int32) (*domain.Member, error)
	// RejectMember deletes the pending record outright.
	RejectMember(ctx context.Context, actor authz.Actor, memberID int32) error
	UpdateMember(ctx context.Context, actor authz.Actor, memberID int32, role *domain.MemberRole, status *domain.MemberStatus, notes *string) (*domain.Member, error)
	RemoveMember(ctx context.Context, actor authz.Actor, memberID int32) error
	ListMembers(ctx context.Context, actor authz.Actor) ([]domain.Member, error)
	MyMemberships(ctx context.Context, actor authz.Actor) ([]domain.Member, error)
}

type CreateSubscriptionInput struct {
	OrgID         int32                       `json:"org_id"`
	Duration      domain.SubscriptionDuration `json:"duration"`
	StartDate     string                      `json:"start_date"` // "2006-01-02"
	AmountCents   int32                       `json:"amount_cents"`
	PaymentMethod string                      `json:"payment_method"`
	Notes         string                      `json:"notes"`
}

type SubscriptionService interface {
	CreateSubscription(ctx context.Context, actor authz.Actor, in CreateSubscriptionInput) (*domain.Subscription, error)
	GetSubscription(ctx context.Context, actor authz.Actor, id int32) (*domain.Subscription, error)
	ListSubscriptions(ctx context.Context, actor authz.Actor, orgFilter *int32) ([]domain.Subscription, error)
	// VerifySubscription activates (or cancels) a pending subscription.
	VerifySubscription(ctx context.Context, actor authz.Actor, id int32, approve bool, notes string) (*domain.Subscription, error)
	CancelSubscription(ctx context.Context, actor authz.Actor, id int32) (*domain.Subscription, error)
	UpdateSubscription(ctx context.Context, actor authz.Actor, id int32, patch authz.SubscriptionUpdate) (*domain.Subscription, error)
}

type CheckInInput struct {
	EventID   int32  `json:"event_id"`
	QRToken   string `json:"qr_token"`
	Notes     string `json:"notes"`
	UserAgent string `json:"-"`
	Location  string `json:"location"`
}

type AttendanceService interface {
	CheckIn(ctx context.Context, actor authz.Actor, in CheckInInput) (*domain.Attendance, error)
	CheckOut(ctx context.Context, actor authz.Actor, eventID int32) (*domain.Attendance, error)
	ListByEvent(ctx context.Context, actor authz.Actor, eventID int32) ([]domain.Attendance, *domain.AttendanceSummary, error)
	MyAttendance(ctx context.Context, actor authz.Actor) ([]domain.Attendance, error)
}

type EmailService interface {
	SendMembershipDecision(ctx context.Context, email, name, orgName string, approved bool) error
	SendSubscriptionReceipt(ctx context.Context, email, orgName string, sub *domain.Subscription) error
	SendSubscriptionExpiryReminder(ctx context.Context, email, orgName string, endDate time.Time) error
	SendEventCancelledNotice(ctx context.Context, email, name, eventTitle string, eventDate time.Time) error
}

type PushService interface {
	EventPublished(ctx context.Context, e *domain.Event) error
	EventCancelled(ctx context.Context, e *domain.Event) error
	EventReminder(ctx context.Context, e *domain.Event) error
	CheckInConfirmed(ctx context.Context, a *domain.Attendance, e *domain.Event) error
}
