package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"acetrack-backend/internal/authz"
	"acetrack-backend/internal/domain"
	"acetrack-backend/internal/repository"
	"acetrack-backend/internal/security"
)

type authService struct {
	userRepo repository.UserRepository
	orgRepo  repository.OrganizationRepository
	tokenMgr security.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, orgRepo repository.OrganizationRepository, tokenMgr security.TokenManager) AuthService {
	return &authService{
		userRepo: userRepo,
		orgRepo:  orgRepo,
		tokenMgr: tokenMgr,
	}
}

func (s *authService) Signup(ctx context.Context, name, email, password string) (*domain.User, error) {
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", domain.ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleMember,
		Status:       domain.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, string, *domain.User, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", "", nil, err
	}
	// A missing account and a wrong password report identically.
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", "", nil, fmt.Errorf("%w: invalid email or password", domain.ErrPermissionDenied)
	}
	if u.Status != domain.UserStatusActive {
		return "", "", nil, fmt.Errorf("%w: account is %s", domain.ErrPermissionDenied, u.Status)
	}

	access, err := s.tokenMgr.GenerateAccessToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return "", "", nil, err
	}
	refresh, err := s.tokenMgr.GenerateRefreshToken(u.ID, u.Email)
	if err != nil {
		return "", "", nil, err
	}
	return access, refresh, u, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.tokenMgr.ValidateToken(refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid refresh token", domain.ErrPermissionDenied)
	}
	if claims.Type != security.TokenTypeRefresh {
		return "", "", fmt.Errorf("%w: wrong token type", domain.ErrPermissionDenied)
	}
	u, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", "", err
	}
	if u.Status != domain.UserStatusActive {
		return "", "", fmt.Errorf("%w: account is %s", domain.ErrPermissionDenied, u.Status)
	}

	access, err := s.tokenMgr.GenerateAccessToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return "", "", err
	}
	refresh, err := s.tokenMgr.GenerateRefreshToken(u.ID, u.Email)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// ResolveActor turns an authenticated user id into the per-request
// Actor. The org_admin's organization is looked up here, once, and
// carried on the actor for every later authorization check.
func (s *authService) ResolveActor(ctx context.Context, userID int32) (authz.Actor, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return authz.Actor{}, err
	}
	if u.Status != domain.UserStatusActive {
		return authz.Actor{}, fmt.Errorf("%w: account is %s", domain.ErrPermissionDenied, u.Status)
	}

	actor := authz.Actor{
		UserID:        u.ID,
		Role:          u.Role,
		Authenticated: true,
	}
	if u.Role == domain.RoleOrgAdmin {
		org, err := s.orgRepo.GetByAdminUserID(ctx, u.ID)
		if err != nil {
			return authz.Actor{}, err
		}
		if org != nil {
			actor.OrgID = &org.ID
		}
	}
	return actor, nil
}
