package users

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	"github.com/angelmondragon/storefront-gateway/pkg/auth/session"
	"github.com/angelmondragon/storefront-gateway/pkg/backend"
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
)

type stubBackend struct {
	token      string
	loginErr   error
	profile    *backend.UserProfile
	seller     *backend.UserProfile
	lastCred   auth.Credential
	lastSeller backend.BecomeSellerRequest
	sellerHits int
}

func (s *stubBackend) Login(context.Context, string, string) (string, error) {
	if s.loginErr != nil {
		return "", s.loginErr
	}
	return s.token, nil
}

func (s *stubBackend) Signup(context.Context, string, string, string) (string, error) {
	return "User registered successfully", nil
}

func (s *stubBackend) Me(_ context.Context, cred auth.Credential) (*backend.UserProfile, error) {
	s.lastCred = cred
	return s.profile, nil
}

func (s *stubBackend) BecomeSeller(_ context.Context, _ auth.Credential, req backend.BecomeSellerRequest) (*backend.UserProfile, error) {
	s.sellerHits++
	s.lastSeller = req
	return s.seller, nil
}

func (s *stubBackend) UpdateBuyerProfile(context.Context, auth.Credential, backend.UpdateBuyerProfileRequest) (string, error) {
	return "Profile updated", nil
}

func (s *stubBackend) UpdateSellerProfile(context.Context, auth.Credential, backend.UpdateSellerProfileRequest) (string, error) {
	return "Shop updated", nil
}

type stubSessions struct {
	created   []session.CreateParams
	revoked   []string
	roles     map[string][]enums.Role
	createErr error
	revokeErr error
}

func (s *stubSessions) Create(_ context.Context, params session.CreateParams) (*session.Session, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, params)
	return &session.Session{
		ID:        "gw-token",
		UserID:    params.UserID,
		Roles:     params.Roles,
		ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

func (s *stubSessions) Get(context.Context, string) (*session.Session, error) {
	return nil, session.ErrSessionNotFound
}

func (s *stubSessions) UpdateRoles(_ context.Context, sessionID string, roles []enums.Role) error {
	if s.roles == nil {
		s.roles = map[string][]enums.Role{}
	}
	s.roles[sessionID] = roles
	return nil
}

func (s *stubSessions) Revoke(_ context.Context, sessionID string) error {
	s.revoked = append(s.revoked, sessionID)
	return s.revokeErr
}

type recordingReleaser struct {
	forgotten []string
	err       error
}

func (r *recordingReleaser) Forget(sessionID string) error {
	r.forgotten = append(r.forgotten, sessionID)
	return r.err
}

var cred = auth.Credential{SessionID: "gw-token", UserID: "u1", Token: "backend-token"}

func buyerProfile() *backend.UserProfile {
	return &backend.UserProfile{ID: "u1", Email: "an@example.com", FullName: "An Nguyen", Roles: []string{"ROLE_BUYER"}}
}

func newTestService(t *testing.T, api *stubBackend, sessions *stubSessions, releasers ...Releaser) Service {
	t.Helper()
	svc, err := NewService(api, sessions, logger.New(logger.Options{Output: io.Discard}), releasers...)
	require.NoError(t, err)
	return svc
}

func TestLoginCreatesSessionFromProfile(t *testing.T) {
	api := &stubBackend{token: "backend-token", profile: buyerProfile()}
	sessions := &stubSessions{}
	svc := newTestService(t, api, sessions)

	got, err := svc.Login(context.Background(), " an@example.com ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "gw-token", got.Token)
	assert.Equal(t, "backend-token", api.lastCred.Token)
	require.Len(t, sessions.created, 1)
	assert.Equal(t, "u1", sessions.created[0].UserID)
	assert.Equal(t, "An Nguyen", sessions.created[0].FullName)
	assert.Equal(t, []enums.Role{enums.RoleBuyer}, sessions.created[0].Roles)
	assert.False(t, got.User.IsSeller)
}

func TestLoginValidationAndFailures(t *testing.T) {
	api := &stubBackend{token: "t", profile: buyerProfile()}
	sessions := &stubSessions{}
	svc := newTestService(t, api, sessions)

	_, err := svc.Login(context.Background(), "", "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	api.loginErr = pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid credentials")
	_, err = svc.Login(context.Background(), "a@b.c", "bad")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	assert.Empty(t, sessions.created)

	api.loginErr = nil
	sessions.createErr = session.ErrTokenExpired
	_, err = svc.Login(context.Background(), "a@b.c", "ok")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestLogoutReleasesEveryRegistry(t *testing.T) {
	sessions := &stubSessions{revokeErr: errors.New("redis down")}
	cartViews := &recordingReleaser{}
	drafts := &recordingReleaser{err: errors.New("draft busy")}
	catalogViews := &recordingReleaser{}
	svc := newTestService(t, &stubBackend{}, sessions, cartViews, drafts, catalogViews)

	err := svc.Logout(context.Background(), cred)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logout did not complete cleanly")
	assert.ErrorContains(t, errors.Unwrap(err), "redis down")
	assert.ErrorContains(t, errors.Unwrap(err), "draft busy")

	assert.Equal(t, []string{"gw-token"}, sessions.revoked)
	for _, r := range []*recordingReleaser{cartViews, drafts, catalogViews} {
		assert.Equal(t, []string{"gw-token"}, r.forgotten)
	}
}

func TestLogoutClean(t *testing.T) {
	sessions := &stubSessions{}
	svc := newTestService(t, &stubBackend{}, sessions, &recordingReleaser{})

	require.NoError(t, svc.Logout(context.Background(), cred))
	err := svc.Logout(context.Background(), auth.Anonymous)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestBecomeSellerRefreshesRoles(t *testing.T) {
	api := &stubBackend{seller: &backend.UserProfile{
		ID:            "u1",
		Roles:         []string{"ROLE_BUYER"},
		SellerProfile: &backend.SellerProfile{ShopID: "shop-1", ShopName: "An's"},
	}}
	sessions := &stubSessions{}
	svc := newTestService(t, api, sessions)

	_, err := svc.BecomeSeller(context.Background(), cred, backend.BecomeSellerRequest{ShopName: "An's"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Zero(t, api.sellerHits)

	got, err := svc.BecomeSeller(context.Background(), cred, backend.BecomeSellerRequest{ShopName: " An's ", PhoneNumber: "0901 234 567"})
	require.NoError(t, err)
	assert.Equal(t, "An's", api.lastSeller.ShopName)
	assert.True(t, got.IsSeller)
	assert.Equal(t, []enums.Role{enums.RoleBuyer, enums.RoleSeller}, sessions.roles["gw-token"])
}

func TestUpdateProfilesReloadProfile(t *testing.T) {
	api := &stubBackend{profile: buyerProfile()}
	svc := newTestService(t, api, &stubSessions{})

	got, err := svc.UpdateBuyerProfile(context.Background(), cred, backend.UpdateBuyerProfileRequest{PhoneNumber: "0901234567"})
	require.NoError(t, err)
	assert.Equal(t, "Profile updated", got.Message)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "u1", got.Profile.ID)

	_, err = svc.UpdateSellerProfile(context.Background(), cred, backend.UpdateSellerProfileRequest{PhoneNumber: "12"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSignup(t *testing.T) {
	svc := newTestService(t, &stubBackend{}, &stubSessions{})

	msg, err := svc.Signup(context.Background(), "An", "an@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", msg)

	_, err = svc.Signup(context.Background(), "", "an@example.com", "pw")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
