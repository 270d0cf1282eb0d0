package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"acetrack-backend/internal/authz"
	"acetrack-backend/internal/domain"
	"acetrack-backend/internal/repository"
	"acetrack-backend/internal/security"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) UpdateRole(ctx context.Context, userID int32, role domain.Role) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

// MockOrgRepo
type MockOrgRepo struct {
	mock.Mock
}

func (m *MockOrgRepo) Create(ctx context.Context, org *domain.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}
func (m *MockOrgRepo) GetByID(ctx context.Context, id int32) (*domain.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}
func (m *MockOrgRepo) GetByName(ctx context.Context, name string) (*domain.Organization, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}
func (m *MockOrgRepo) GetByAdminUserID(ctx context.Context, userID int32) (*domain.Organization, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}
func (m *MockOrgRepo) List(ctx context.Context, scope authz.OrganizationScope) ([]domain.Organization, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]domain.Organization), args.Error(1)
}
func (m *MockOrgRepo) Update(ctx context.Context, org *domain.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}
func (m *MockOrgRepo) UpdateStatus(ctx context.Context, orgID int32, status domain.OrgStatus) error {
	args := m.Called(ctx, orgID, status)
	return args.Error(0)
}

// MockMemberRepo
type MockMemberRepo struct {
	mock.Mock
}

func (m *MockMemberRepo) Create(ctx context.Context, member *domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}
func (m *MockMemberRepo) GetByID(ctx context.Context, id int32) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}
func (m *MockMemberRepo) GetByOrgAndUser(ctx context.Context, orgID, userID int32) (*domain.Member, error) {
	args := m.Called(ctx, orgID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}
func (m *MockMemberRepo) List(ctx context.Context, scope authz.MemberScope) ([]domain.Member, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]domain.Member), args.Error(1)
}
func (m *MockMemberRepo) ListByUser(ctx context.Context, userID int32) ([]domain.Member, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Member), args.Error(1)
}
func (m *MockMemberRepo) Update(ctx context.Context, member *domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}
func (m *MockMemberRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockMemberRepo) DeactivateByOrg(ctx context.Context, orgID int32) error {
	args := m.Called(ctx, orgID)
	return args.Error(0)
}
func (m *MockMemberRepo) CountActiveByOrg(ctx context.Context, orgID int32) (int32, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int32), args.Error(1)
}

// MockEventRepo
type MockEventRepo struct {
	mock.Mock
}

func (m *MockEventRepo) Create(ctx context.Context, e *domain.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
func (m *MockEventRepo) GetByID(ctx context.Context, id int32, includeDeleted bool) (*domain.Event, error) {
	args := m.Called(ctx, id, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}
func (m *MockEventRepo) List(ctx context.Context, scope authz.EventScope, orgFilter *int32) ([]domain.Event, error) {
	args := m.Called(ctx, scope, orgFilter)
	return args.Get(0).([]domain.Event), args.Error(1)
}
func (m *MockEventRepo) Update(ctx context.Context, e *domain.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
func (m *MockEventRepo) UpdateStatus(ctx context.Context, id int32, status domain.EventStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockEventRepo) SoftDelete(ctx context.Context, id int32, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}
func (m *MockEventRepo) Restore(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockEventRepo) HardDelete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockEventRepo) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockEventRepo) ListPublishedOn(ctx context.Context, date time.Time) ([]domain.Event, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]domain.Event), args.Error(1)
}

// MockSubscriptionRepo
type MockSubscriptionRepo struct {
	mock.Mock
}

func (m *MockSubscriptionRepo) Create(ctx context.Context, s *domain.Subscription) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *MockSubscriptionRepo) GetByID(ctx context.Context, id int32) (*domain.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}
func (m *MockSubscriptionRepo) List(ctx context.Context, scope authz.SubscriptionScope) ([]domain.Subscription, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]domain.Subscription), args.Error(1)
}
func (m *MockSubscriptionRepo) Update(ctx context.Context, s *domain.Subscription) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *MockSubscriptionRepo) HasActiveOrPending(ctx context.Context, orgID int32) (bool, error) {
	args := m.Called(ctx, orgID)
	return args.Bool(0), args.Error(1)
}
func (m *MockSubscriptionRepo) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockSubscriptionRepo) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]domain.Subscription, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]domain.Subscription), args.Error(1)
}

// MockAttendanceRepo
type MockAttendanceRepo struct {
	mock.Mock
}

func (m *MockAttendanceRepo) Create(ctx context.Context, a *domain.Attendance) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}
func (m *MockAttendanceRepo) GetByEventAndUser(ctx context.Context, eventID, userID int32) (*domain.Attendance, error) {
	args := m.Called(ctx, eventID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attendance), args.Error(1)
}
func (m *MockAttendanceRepo) Update(ctx context.Context, a *domain.Attendance) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}
func (m *MockAttendanceRepo) ListByEvent(ctx context.Context, eventID int32) ([]domain.Attendance, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]domain.Attendance), args.Error(1)
}
func (m *MockAttendanceRepo) ListByUser(ctx context.Context, userID int32) ([]domain.Attendance, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Attendance), args.Error(1)
}
func (m *MockAttendanceRepo) SummaryByEvent(ctx context.Context, eventID int32) (*domain.AttendanceSummary, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AttendanceSummary), args.Error(1)
}

// MockTokenManager
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) GenerateAccessToken(userID int32, email, role string) (string, error) {
	args := m.Called(userID, email, role)
	return args.String(0), args.Error(1)
}
func (m *MockTokenManager) GenerateRefreshToken(userID int32, email string) (string, error) {
	args := m.Called(userID, email)
	return args.String(0), args.Error(1)
}
func (m *MockTokenManager) GenerateCheckInToken(eventID int32, ttl time.Duration) (string, error) {
	args := m.Called(eventID, ttl)
	return args.String(0), args.Error(1)
}
func (m *MockTokenManager) ValidateToken(token string) (*security.UserClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.UserClaims), args.Error(1)
}
func (m *MockTokenManager) ValidateCheckInToken(token string) (int32, error) {
	args := m.Called(token)
	return args.Get(0).(int32), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendMembershipDecision(ctx context.Context, email, name, orgName string, approved bool) error {
	args := m.Called(ctx, email, name, orgName, approved)
	return args.Error(0)
}
func (m *MockEmailService) SendSubscriptionReceipt(ctx context.Context, email, orgName string, sub *domain.Subscription) error {
	args := m.Called(ctx, email, orgName, sub)
	return args.Error(0)
}
func (m *MockEmailService) SendSubscriptionExpiryReminder(ctx context.Context, email, orgName string, endDate time.Time) error {
	args := m.Called(ctx, email, orgName, endDate)
	return args.Error(0)
}
func (m *MockEmailService) SendEventCancelledNotice(ctx context.Context, email, name, eventTitle string, eventDate time.Time) error {
	args := m.Called(ctx, email, name, eventTitle, eventDate)
	return args.Error(0)
}

// MockPushService
type MockPushService struct {
	mock.Mock
}

func (m *MockPushService) EventPublished(ctx context.Context, e *domain.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
func (m *MockPushService) EventCancelled(ctx context.Context, e *domain.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
func (m *MockPushService) EventReminder(ctx context.Context, e *domain.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
func (m *MockPushService) CheckInConfirmed(ctx context.Context, a *domain.Attendance, e *domain.Event) error {
	args := m.Called(ctx, a, e)
	return args.Error(0)
}

// fakeTx runs the callback immediately against the supplied repos.
type fakeTx struct {
	repos repository.Repositories
}

func (t *fakeTx) ExecTx(_ context.Context, fn func(repository.Repositories) error) error {
	return fn(t.repos)
}
