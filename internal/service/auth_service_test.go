package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"roadside-service/internal/auth"
	"roadside-service/internal/model"
)

type storedProfiles struct {
	*fakeProfiles
}

func (s storedProfiles) LoadProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	return s.GetByID(ctx, userID)
}

func newAuthService() (*AuthService, *fakeUsers, *auth.Revocations) {
	profiles := newFakeProfiles()
	users := newFakeUsers(profiles)
	revocations := auth.NewRevocations()
	svc := NewAuthService(users, storedProfiles{profiles}, auth.NewIssuer("test-secret", time.Hour), revocations, zerolog.Nop())
	svc.hashCost = bcrypt.MinCost
	return svc, users, revocations
}

func TestSignUpAndSignIn(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	session, err := svc.SignUp(ctx, SignUpInput{
		Email:    " Ama@Example.com ",
		Password: "secret123",
		FullName: "Ama Mensah",
		Phone:    "024 123 4567",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, session.Role)
	assert.Equal(t, "ama@example.com", session.User.Email)
	assert.NotEmpty(t, session.Token)

	claims, err := auth.NewParser("test-secret").Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)

	signedIn, err := svc.SignIn(ctx, "AMA@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, signedIn.User.ID)

	_, err = svc.SignIn(ctx, "ama@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = svc.SignIn(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	account, err := svc.Me(ctx, model.Principal{UserID: session.User.ID, Role: model.RoleCustomer})
	require.NoError(t, err)
	assert.Equal(t, "Ama Mensah", account.Profile.FullName)
	assert.Equal(t, "0241234567", *account.Profile.PhoneNumber)
}

func TestSignUpValidation(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()
	valid := SignUpInput{Email: "kofi@example.com", Password: "secret123", FullName: "Kofi"}

	cases := map[string]func(in *SignUpInput){
		"admin role":     func(in *SignUpInput) { in.Role = "admin" },
		"bad email":      func(in *SignUpInput) { in.Email = "not-an-email" },
		"short password": func(in *SignUpInput) { in.Password = "123" },
		"missing name":   func(in *SignUpInput) { in.FullName = "  " },
		"bad phone":      func(in *SignUpInput) { in.Phone = "12" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := svc.SignUp(ctx, in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err := svc.SignUp(ctx, valid)
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, valid)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSignOutRevokesToken(t *testing.T) {
	svc, _, revocations := newAuthService()
	session, err := svc.SignUp(context.Background(), SignUpInput{Email: "yaw@example.com", Password: "secret123", FullName: "Yaw", Role: "provider"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleProvider, session.Role)

	claims, err := auth.NewParser("test-secret").Parse(session.Token)
	require.NoError(t, err)

	svc.SignOut(model.Principal{UserID: claims.UserID, Role: claims.Role, TokenID: claims.ID}, session.ExpiresAt)
	assert.True(t, revocations.IsRevoked(claims.ID))
}

func TestCreateAccountGeneratesPassword(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()
	admin := adminPrincipal()

	_, _, err := svc.CreateAccount(ctx, customerPrincipal(), SignUpInput{Email: "x@example.com", FullName: "X", Role: "provider"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	account, password, err := svc.CreateAccount(ctx, admin, SignUpInput{Email: "efua@example.com", FullName: "Efua", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, account.Role)
	assert.NotEmpty(t, password)

	role, err := users.GetRole(ctx, account.User.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, role)

	_, err = svc.SignIn(ctx, "efua@example.com", password)
	assert.NoError(t, err)

	_, password, err = svc.CreateAccount(ctx, admin, SignUpInput{Email: "abena@example.com", Password: "chosen-pass", FullName: "Abena", Role: "customer"})
	require.NoError(t, err)
	assert.Empty(t, password)
}

func TestDeleteAccount(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()
	admin := adminPrincipal()
	victim := users.addProvider("Kojo", nil, nil)

	assert.ErrorIs(t, svc.DeleteAccount(ctx, admin, admin.UserID.String()), ErrConflict)
	assert.ErrorIs(t, svc.DeleteAccount(ctx, customerPrincipal(), victim.String()), ErrPermissionDenied)
	require.NoError(t, svc.DeleteAccount(ctx, admin, victim.String()))
	assert.ErrorIs(t, svc.DeleteAccount(ctx, admin, victim.String()), ErrNotFound)
	assert.ErrorIs(t, svc.DeleteAccount(ctx, admin, "nope"), ErrInvalidInput)
}
