package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-gateway/internal/checkout/helpers"
	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	"github.com/angelmondragon/storefront-gateway/pkg/auth/session"
	"github.com/angelmondragon/storefront-gateway/pkg/backend"
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
)

// Backend is the account part of the storefront API.
type Backend interface {
	Login(ctx context.Context, email, password string) (string, error)
	Signup(ctx context.Context, fullName, email, password string) (string, error)
	Me(ctx context.Context, cred auth.Credential) (*backend.UserProfile, error)
	BecomeSeller(ctx context.Context, cred auth.Credential, req backend.BecomeSellerRequest) (*backend.UserProfile, error)
	UpdateBuyerProfile(ctx context.Context, cred auth.Credential, req backend.UpdateBuyerProfileRequest) (string, error)
	UpdateSellerProfile(ctx context.Context, cred auth.Credential, req backend.UpdateSellerProfileRequest) (string, error)
}

// Releaser drops per-session view state held in memory.
type Releaser interface {
	Forget(sessionID string) error
}

type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Signup(ctx context.Context, fullName, email, password string) (string, error)
	Logout(ctx context.Context, cred auth.Credential) error
	Me(ctx context.Context, cred auth.Credential) (*ProfileDTO, error)
	BecomeSeller(ctx context.Context, cred auth.Credential, req backend.BecomeSellerRequest) (*ProfileDTO, error)
	UpdateBuyerProfile(ctx context.Context, cred auth.Credential, req backend.UpdateBuyerProfileRequest) (*ProfileUpdate, error)
	UpdateSellerProfile(ctx context.Context, cred auth.Credential, req backend.UpdateSellerProfileRequest) (*ProfileUpdate, error)
}

type service struct {
	backend   Backend
	sessions  session.Store
	releasers []Releaser
	logg      *logger.Logger
}

// NewService builds the account service. Releasers are told to forget a session on logout.
func NewService(api Backend, sessions session.Store, logg *logger.Logger, releasers ...Releaser) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("users backend required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	for i, r := range releasers {
		if r == nil {
			return nil, fmt.Errorf("releaser %d is nil", i)
		}
	}
	return &service{backend: api, sessions: sessions, releasers: releasers, logg: logg}, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	fields := map[string]string{}
	if email == "" {
		fields["email"] = "is required"
	}
	if password == "" {
		fields["password"] = "is required"
	}
	if len(fields) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required").
			WithDetails(map[string]any{"fields": fields})
	}

	token, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	cred := auth.Credential{Token: token}
	profile, err := s.backend.Me(ctx, cred)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Create(ctx, session.CreateParams{
		BackendToken: token,
		UserID:       profile.ID,
		Email:        profile.Email,
		FullName:     profile.FullName,
		Roles:        profile.ParsedRoles(),
	})
	if err != nil {
		if errors.Is(err, session.ErrTokenExpired) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "login expired, please sign in again")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to open session")
	}

	lctx := s.logg.WithUserID(ctx, profile.ID)
	s.logg.Info(s.logg.WithField(lctx, "roles", profile.Roles), "auth.login.success")
	return &LoginResult{Token: sess.ID, ExpiresAt: sess.ExpiresAt, User: newProfileDTO(*profile)}, nil
}

func (s *service) Signup(ctx context.Context, fullName, email, password string) (string, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	fields := map[string]string{}
	if fullName == "" {
		fields["full_name"] = "is required"
	}
	if email == "" {
		fields["email"] = "is required"
	}
	if password == "" {
		fields["password"] = "is required"
	}
	if len(fields) > 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "signup details are incomplete").
			WithDetails(map[string]any{"fields": fields})
	}
	msg, err := s.backend.Signup(ctx, fullName, email, password)
	if err != nil {
		return "", err
	}
	s.logg.Info(ctx, "auth.signup.success")
	return msg, nil
}

// Logout revokes the session and releases every view it holds. Every releaser runs even
// when an earlier step fails.
func (s *service) Logout(ctx context.Context, cred auth.Credential) error {
	if cred.SessionID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "not signed in")
	}
	var errs error
	if err := s.sessions.Revoke(ctx, cred.SessionID); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("revoke session: %w", err))
	}
	for _, r := range s.releasers {
		errs = multierr.Append(errs, r.Forget(cred.SessionID))
	}
	if errs != nil {
		s.logg.Error(ctx, "auth.logout.partial", errs)
		return pkgerrors.Wrap(pkgerrors.CodeInternal, errs, "logout did not complete cleanly")
	}
	s.logg.Info(ctx, "auth.logout")
	return nil
}

func (s *service) Me(ctx context.Context, cred auth.Credential) (*ProfileDTO, error) {
	profile, err := s.backend.Me(ctx, cred)
	if err != nil {
		return nil, err
	}
	dto := newProfileDTO(*profile)
	return &dto, nil
}

// BecomeSeller opens a shop and refreshes the roles stored in the session.
func (s *service) BecomeSeller(ctx context.Context, cred auth.Credential, req backend.BecomeSellerRequest) (*ProfileDTO, error) {
	req.ShopName = strings.TrimSpace(req.ShopName)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	fields := map[string]string{}
	if req.ShopName == "" {
		fields["shop_name"] = "is required"
	}
	switch {
	case req.PhoneNumber == "":
		fields["phone_number"] = "is required"
	case !helpers.ValidPhone(req.PhoneNumber):
		fields["phone_number"] = "must contain 9 to 11 digits"
	}
	if len(fields) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop details are incomplete").
			WithDetails(map[string]any{"fields": fields})
	}

	profile, err := s.backend.BecomeSeller(ctx, cred, req)
	if err != nil {
		return nil, err
	}
	roles := profile.ParsedRoles()
	if !enums.HasRole(roles, enums.RoleSeller) {
		roles = append(roles, enums.RoleSeller)
	}
	if err := s.sessions.UpdateRoles(ctx, cred.SessionID, roles); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to refresh session roles")
	}

	s.logg.Info(ctx, "users.become_seller")
	dto := newProfileDTO(*profile)
	dto.Roles = roles
	dto.IsSeller = true
	return &dto, nil
}

func (s *service) UpdateBuyerProfile(ctx context.Context, cred auth.Credential, req backend.UpdateBuyerProfileRequest) (*ProfileUpdate, error) {
	if phone := strings.TrimSpace(req.PhoneNumber); phone != "" && !helpers.ValidPhone(phone) {
		return nil, invalidPhone()
	}
	msg, err := s.backend.UpdateBuyerProfile(ctx, cred, req)
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, cred, msg, "users.buyer_profile.updated"), nil
}

func (s *service) UpdateSellerProfile(ctx context.Context, cred auth.Credential, req backend.UpdateSellerProfileRequest) (*ProfileUpdate, error) {
	if phone := strings.TrimSpace(req.PhoneNumber); phone != "" && !helpers.ValidPhone(phone) {
		return nil, invalidPhone()
	}
	msg, err := s.backend.UpdateSellerProfile(ctx, cred, req)
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, cred, msg, "users.seller_profile.updated"), nil
}

func (s *service) reload(ctx context.Context, cred auth.Credential, msg, event string) *ProfileUpdate {
	s.logg.Info(ctx, event)
	update := &ProfileUpdate{Message: msg}
	profile, err := s.backend.Me(ctx, cred)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "users.profile.reload_failed")
		return update
	}
	dto := newProfileDTO(*profile)
	update.Profile = &dto
	return update
}

func invalidPhone() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid phone number").
		WithDetails(map[string]any{"fields": map[string]string{"phone_number": "must contain 9 to 11 digits"}})
}
