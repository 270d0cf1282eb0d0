package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"acetrack-backend/internal/domain"
)

type memberTestEnv struct {
	memberRepo *MockMemberRepo
	orgRepo    *MockOrgRepo
	userRepo   *MockUserRepo
	emailSvc   *MockEmailService
	svc        MemberService
}

func newMemberTestEnv() *memberTestEnv {
	env := &memberTestEnv{
		memberRepo: new(MockMemberRepo),
		orgRepo:    new(MockOrgRepo),
		userRepo:   new(MockUserRepo),
		emailSvc:   new(MockEmailService),
	}
	env.svc = NewMemberService(env.memberRepo, env.orgRepo, env.userRepo, env.emailSvc)
	return env
}

func activeOrg(id int32) *domain.Organization {
	return &domain.Organization{ID: id, Name: "Chess Club", AdminUserID: 2, Status: domain.OrgStatusActive}
}

func TestMemberService_AddMember(t *testing.T) {
	ctx := context.Background()

	t.Run("admin path is active immediately", func(t *testing.T) {
		env := newMemberTestEnv()
		env.orgRepo.On("GetByID", ctx, int32(5)).Return(activeOrg(5), nil)
		env.userRepo.On("GetByID", ctx, int32(9)).Return(&domain.User{ID: 9}, nil)
		env.memberRepo.On("GetByOrgAndUser", ctx, int32(5), int32(9)).Return(nil, nil)
		env.memberRepo.On("Create", ctx, mock.AnythingOfType("*domain.Member")).Return(nil)

		m, err := env.svc.AddMember(ctx, orgAdminActor(5), 5, 9, domain.MemberRoleMember, "")
		require.NoError(t, err)
		assert.Equal(t, domain.MemberStatusActive, m.Status)
	})

	t.Run("existing membership is a conflict", func(t *testing.T) {
		env := newMemberTestEnv()
		env.orgRepo.On("GetByID", ctx, int32(5)).Return(activeOrg(5), nil)
		env.userRepo.On("GetByID", ctx, int32(9)).Return(&domain.User{ID: 9}, nil)
		env.memberRepo.On("GetByOrgAndUser", ctx, int32(5), int32(9)).Return(&domain.Member{ID: 1}, nil)

		_, err := env.svc.AddMember(ctx, orgAdminActor(5), 5, 9, domain.MemberRoleMember, "")
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("member limit is enforced", func(t *testing.T) {
		env := newMemberTestEnv()
		limit := int32(2)
		org := activeOrg(5)
		org.Settings.MaxMembers = &limit
		env.orgRepo.On("GetByID", ctx, int32(5)).Return(org, nil)
		env.userRepo.On("GetByID", ctx, int32(9)).Return(&domain.User{ID: 9}, nil)
		env.memberRepo.On("GetByOrgAndUser", ctx, int32(5), int32(9)).Return(nil, nil)
		env.memberRepo.On("CountActiveByOrg", ctx, int32(5)).Return(int32(2), nil)

		_, err := env.svc.AddMember(ctx, orgAdminActor(5), 5, 9, domain.MemberRoleMember, "")
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("foreign org_admin denied", func(t *testing.T) {
		env := newMemberTestEnv()
		_, err := env.svc.AddMember(ctx, orgAdminActor(4), 5, 9, domain.MemberRoleMember, "")
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})
}

func TestMemberService_RequestToJoin(t *testing.T) {
	ctx := context.Background()

	t.Run("approval-required orgs get a pending membership", func(t *testing.T) {
		env := newMemberTestEnv()
		org := activeOrg(5)
		org.Settings.AllowPublicJoin = true
		org.Settings.RequireApproval = true
		env.orgRepo.On("GetByID", ctx, int32(5)).Return(org, nil)
		env.memberRepo.On("GetByOrgAndUser", ctx, int32(5), int32(3)).Return(nil, nil)
		env.memberRepo.On("Create", ctx, mock.AnythingOfType("*domain.Member")).Return(nil)

		m, err := env.svc.RequestToJoin(ctx, memberActor(), 5, "hi")
		require.NoError(t, err)
		assert.Equal(t, domain.MemberStatusPending, m.Status)
		assert.Equal(t, domain.MemberRoleMember, m.Role)
	})

	t.Run("open orgs join active", func(t *testing.T) {
		env := newMemberTestEnv()
		org := activeOrg(5)
		org.Settings.AllowPublicJoin = true
		env.orgRepo.On("GetByID", ctx, int32(5)).Return(org, nil)
		env.memberRepo.On("GetByOrgAndUser", ctx, int32(5), int32(3)).Return(nil, nil)
		env.memberRepo.On("Create", ctx, mock.AnythingOfType("*domain.Member")).Return(nil)

		m, err := env.svc.RequestToJoin(ctx, memberActor(), 5, "")
		require.NoError(t, err)
		assert.Equal(t, domain.MemberStatusActive, m.Status)
	})

	t.Run("closed orgs refuse join requests", func(t *testing.T) {
		env := newMemberTestEnv()
		env.orgRepo.On("GetByID", ctx, int32(5)).Return(activeOrg(5), nil)

		_, err := env.svc.RequestToJoin(ctx, memberActor(), 5, "")
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("inactive org reads as not found", func(t *testing.T) {
		env := newMemberTestEnv()
		org := activeOrg(5)
		org.Status = domain.OrgStatusInactive
		env.orgRepo.On("GetByID", ctx, int32(5)).Return(org, nil)

		_, err := env.svc.RequestToJoin(ctx, memberActor(), 5, "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestMemberService_ApproveAndReject(t *testing.T) {
	ctx := context.Background()

	t.Run("approve activates and notifies", func(t *testing.T) {
		env := newMemberTestEnv()
		m := &domain.Member{ID: 11, OrgID: 5, UserID: 9, Status: domain.MemberStatusPending}
		env.memberRepo.On("GetByID", ctx, int32(11)).Return(m, nil)
		env.memberRepo.On("Update", ctx, m).Return(nil)
		env.userRepo.On("GetByID", ctx, int32(9)).Return(&domain.User{ID: 9, Email: "u@example.com", Name: "U"}, nil)
		env.orgRepo.On("GetByID", ctx, int32(5)).Return(activeOrg(5), nil)
		env.emailSvc.On("SendMembershipDecision", ctx, "u@example.com", "U", "Chess Club", true).Return(nil)

		got, err := env.svc.ApproveMember(ctx, orgAdminActor(5), 11)
		require.NoError(t, err)
		assert.Equal(t, domain.MemberStatusActive, got.Status)
		env.emailSvc.AssertExpectations(t)
	})

	t.Run("approve of non-pending membership is a conflict", func(t *testing.T) {
		env := newMemberTestEnv()
		m := &domain.Member{ID: 11, OrgID: 5, Status: domain.MemberStatusActive}
		env.memberRepo.On("GetByID", ctx, int32(11)).Return(m, nil)

		_, err := env.svc.ApproveMember(ctx, orgAdminActor(5), 11)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("reject deletes the pending record", func(t *testing.T) {
		env := newMemberTestEnv()
		m := &domain.Member{ID: 11, OrgID: 5, UserID: 9, Status: domain.MemberStatusPending}
		env.memberRepo.On("GetByID", ctx, int32(11)).Return(m, nil)
		env.memberRepo.On("Delete", ctx, int32(11)).Return(nil)
		env.userRepo.On("GetByID", ctx, int32(9)).Return(&domain.User{ID: 9, Email: "u@example.com", Name: "U"}, nil)
		env.orgRepo.On("GetByID", ctx, int32(5)).Return(activeOrg(5), nil)
		env.emailSvc.On("SendMembershipDecision", ctx, "u@example.com", "U", "Chess Club", false).Return(nil)

		require.NoError(t, env.svc.RejectMember(ctx, orgAdminActor(5), 11))
		env.memberRepo.AssertExpectations(t)
	})

	t.Run("decision email failure is swallowed", func(t *testing.T) {
		env := newMemberTestEnv()
		m := &domain.Member{ID: 11, OrgID: 5, UserID: 9, Status: domain.MemberStatusPending}
		env.memberRepo.On("GetByID", ctx, int32(11)).Return(m, nil)
		env.memberRepo.On("Update", ctx, m).Return(nil)
		env.userRepo.On("GetByID", ctx, int32(9)).Return(&domain.User{ID: 9, Email: "u@example.com", Name: "U"}, nil)
		env.orgRepo.On("GetByID", ctx, int32(5)).Return(activeOrg(5), nil)
		env.emailSvc.On("SendMembershipDecision", ctx, "u@example.com", "U", "Chess Club", true).Return(assert.AnError)

		_, err := env.svc.ApproveMember(ctx, orgAdminActor(5), 11)
		assert.NoError(t, err)
	})
}

func TestMemberService_RemoveMember(t *testing.T) {
	ctx := context.Background()

	t.Run("org admin membership is protected", func(t *testing.T) {
		env := newMemberTestEnv()
		m := &domain.Member{ID: 11, OrgID: 5, UserID: 2, Status: domain.MemberStatusActive}
		env.memberRepo.On("GetByID", ctx, int32(11)).Return(m, nil)
		env.orgRepo.On("GetByID", ctx, int32(5)).Return(activeOrg(5), nil)

		err := env.svc.RemoveMember(ctx, adminActor(), 11)
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("regular member removed", func(t *testing.T) {
		env := newMemberTestEnv()
		m := &domain.Member{ID: 11, OrgID: 5, UserID: 9, Status: domain.MemberStatusActive}
		env.memberRepo.On("GetByID", ctx, int32(11)).Return(m, nil)
		env.orgRepo.On("GetByID", ctx, int32(5)).Return(activeOrg(5), nil)
		env.memberRepo.On("Delete", ctx, int32(11)).Return(nil)

		require.NoError(t, env.svc.RemoveMember(ctx, orgAdminActor(5), 11))
		env.memberRepo.AssertExpectations(t)
	})
}
