package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"acetrack-backend/internal/domain"
	"acetrack-backend/internal/repository"
)

type orgTestEnv struct {
	orgRepo    *MockOrgRepo
	userRepo   *MockUserRepo
	memberRepo *MockMemberRepo
	subRepo    *MockSubscriptionRepo
	svc        OrganizationService
}

func newOrgTestEnv() *orgTestEnv {
	env := &orgTestEnv{
		orgRepo:    new(MockOrgRepo),
		userRepo:   new(MockUserRepo),
		memberRepo: new(MockMemberRepo),
		subRepo:    new(MockSubscriptionRepo),
	}
	tx := &fakeTx{repos: repository.Repositories{
		Users:         env.userRepo,
		Orgs:          env.orgRepo,
		Members:       env.memberRepo,
		Subscriptions: env.subRepo,
	}}
	env.svc = NewOrganizationService(env.orgRepo, env.userRepo, env.memberRepo, tx)
	return env
}

func TestOrganizationService_CreateOrganization(t *testing.T) {
	ctx := context.Background()

	in := CreateOrganizationInput{
		Name:          "Chess Club",
		Description:   "Weekly games",
		Duration:      domain.Duration1Year,
		AmountCents:   12000,
		PaymentMethod: "bank_transfer",
	}

	t.Run("founding creates org, pending subscription and admin membership", func(t *testing.T) {
		env := newOrgTestEnv()
		env.orgRepo.On("GetByName", ctx, "Chess Club").Return(nil, nil)
		env.orgRepo.On("GetByAdminUserID", ctx, int32(3)).Return(nil, nil)
		env.orgRepo.On("Create", ctx, mock.AnythingOfType("*domain.Organization")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*domain.Organization).ID = 7
			}).Return(nil)
		env.subRepo.On("Create", ctx, mock.MatchedBy(func(sub *domain.Subscription) bool {
			return sub.OrgID == 7 && sub.Status == domain.SubscriptionStatusPending &&
				sub.Duration == domain.Duration1Year
		})).Return(nil)
		env.memberRepo.On("Create", ctx, mock.MatchedBy(func(m *domain.Member) bool {
			return m.OrgID == 7 && m.UserID == 3 &&
				m.Role == domain.MemberRoleOrgAdmin && m.Status == domain.MemberStatusActive
		})).Return(nil)
		env.userRepo.On("UpdateRole", ctx, int32(3), domain.RoleOrgAdmin).Return(nil)

		org, err := env.svc.CreateOrganization(ctx, memberActor(), in)
		require.NoError(t, err)
		assert.Equal(t, int32(7), org.ID)
		assert.Equal(t, domain.OrgStatusActive, org.Status)
		assert.Equal(t, int32(3), org.AdminUserID)
		env.orgRepo.AssertExpectations(t)
		env.subRepo.AssertExpectations(t)
		env.memberRepo.AssertExpectations(t)
		env.userRepo.AssertExpectations(t)
	})

	t.Run("admin founder keeps the admin role", func(t *testing.T) {
		env := newOrgTestEnv()
		env.orgRepo.On("GetByName", ctx, "Chess Club").Return(nil, nil)
		env.orgRepo.On("GetByAdminUserID", ctx, int32(1)).Return(nil, nil)
		env.orgRepo.On("Create", ctx, mock.AnythingOfType("*domain.Organization")).Return(nil)
		env.subRepo.On("Create", ctx, mock.AnythingOfType("*domain.Subscription")).Return(nil)
		env.memberRepo.On("Create", ctx, mock.AnythingOfType("*domain.Member")).Return(nil)

		_, err := env.svc.CreateOrganization(ctx, adminActor(), in)
		require.NoError(t, err)
		env.userRepo.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("taken name is a conflict", func(t *testing.T) {
		env := newOrgTestEnv()
		env.orgRepo.On("GetByName", ctx, "Chess Club").Return(&domain.Organization{ID: 4, Name: "Chess Club"}, nil)

		_, err := env.svc.CreateOrganization(ctx, memberActor(), in)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("one organization per admin", func(t *testing.T) {
		env := newOrgTestEnv()
		env.orgRepo.On("GetByName", ctx, "Chess Club").Return(nil, nil)
		env.orgRepo.On("GetByAdminUserID", ctx, int32(3)).Return(&domain.Organization{ID: 4}, nil)

		_, err := env.svc.CreateOrganization(ctx, memberActor(), in)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("duration must be valid", func(t *testing.T) {
		env := newOrgTestEnv()
		bad := in
		bad.Duration = domain.SubscriptionDuration("3months")
		_, err := env.svc.CreateOrganization(ctx, memberActor(), bad)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestOrganizationService_UpdateOrganization(t *testing.T) {
	ctx := context.Background()

	t.Run("rename checks uniqueness", func(t *testing.T) {
		env := newOrgTestEnv()
		env.orgRepo.On("GetByID", ctx, int32(7)).Return(&domain.Organization{ID: 7, Name: "Old", AdminUserID: 2, Status: domain.OrgStatusActive}, nil)
		env.orgRepo.On("GetByName", ctx, "New").Return(&domain.Organization{ID: 9, Name: "New"}, nil)

		name := "New"
		_, err := env.svc.UpdateOrganization(ctx, orgAdminActor(7), 7, UpdateOrganizationInput{Name: &name})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("foreign org_admin denied", func(t *testing.T) {
		env := newOrgTestEnv()
		env.orgRepo.On("GetByID", ctx, int32(7)).Return(&domain.Organization{ID: 7, AdminUserID: 99, Status: domain.OrgStatusActive}, nil)

		desc := "updated"
		_, err := env.svc.UpdateOrganization(ctx, orgAdminActor(4), 7, UpdateOrganizationInput{Description: &desc})
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})
}

func TestOrganizationService_DeleteOrganization(t *testing.T) {
	ctx := context.Background()

	t.Run("own admin deletion reverts the role", func(t *testing.T) {
		env := newOrgTestEnv()
		env.orgRepo.On("GetByID", ctx, int32(7)).Return(&domain.Organization{ID: 7, AdminUserID: 2, Status: domain.OrgStatusActive}, nil)
		env.orgRepo.On("UpdateStatus", ctx, int32(7), domain.OrgStatusInactive).Return(nil)
		env.memberRepo.On("DeactivateByOrg", ctx, int32(7)).Return(nil)
		env.userRepo.On("UpdateRole", ctx, int32(2), domain.RoleMember).Return(nil)

		require.NoError(t, env.svc.DeleteOrganization(ctx, orgAdminActor(7), 7))
		env.userRepo.AssertExpectations(t)
	})

	t.Run("system admin deletion leaves the org admin's role alone", func(t *testing.T) {
		env := newOrgTestEnv()
		env.orgRepo.On("GetByID", ctx, int32(7)).Return(&domain.Organization{ID: 7, AdminUserID: 2, Status: domain.OrgStatusActive}, nil)
		env.orgRepo.On("UpdateStatus", ctx, int32(7), domain.OrgStatusInactive).Return(nil)
		env.memberRepo.On("DeactivateByOrg", ctx, int32(7)).Return(nil)

		require.NoError(t, env.svc.DeleteOrganization(ctx, adminActor(), 7))
		env.userRepo.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
	})
}
