package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"roadside-service/internal/auth"
	"roadside-service/internal/model"
	"roadside-service/internal/utils"
)

const minPasswordLength = 6

// ProfileLoader returns a user's profile after availability repair.
type ProfileLoader interface {
	LoadProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
}

type AuthService struct {
	users       UserStore
	profiles    ProfileLoader
	issuer      *auth.Issuer
	revocations *auth.Revocations
	hashCost    int
	log         zerolog.Logger
}

func NewAuthService(users UserStore, profiles ProfileLoader, issuer *auth.Issuer, revocations *auth.Revocations, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:       users,
		profiles:    profiles,
		issuer:      issuer,
		revocations: revocations,
		hashCost:    bcrypt.DefaultCost,
		log:         log,
	}
}

type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
	Role      model.Role  `json:"role"`
}

type Account struct {
	User    *model.User    `json:"user"`
	Role    model.Role     `json:"role"`
	Profile *model.Profile `json:"profile"`
}

type SignUpInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
	Role     string
}

// SignUp registers a customer or provider and signs them in.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*Session, error) {
	role := model.Role(strings.TrimSpace(input.Role))
	if role == "" {
		role = model.RoleCustomer
	}
	if role != model.RoleCustomer && role != model.RoleProvider {
		return nil, invalidInput("cannot sign up as %q", input.Role)
	}

	user, err := s.createAccount(ctx, input, role)
	if err != nil {
		return nil, err
	}
	return s.issue(user, role)
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionDenied
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrPermissionDenied
	}

	role, err := s.users.GetRole(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.issue(user, role)
}

// SignOut revokes the caller's token until it would have expired.
func (s *AuthService) SignOut(principal model.Principal, expiresAt time.Time) {
	s.revocations.Revoke(principal.TokenID, expiresAt)
	s.log.Info().Str("user_id", principal.UserID.String()).Msg("signed out")
}

func (s *AuthService) Me(ctx context.Context, principal model.Principal) (*Account, error) {
	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	profile, err := s.profiles.LoadProfile(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	return &Account{User: user, Role: principal.Role, Profile: profile}, nil
}

// CreateAccount is the privileged account creation. An empty password gets
// a generated one, which is returned alongside the account.
func (s *AuthService) CreateAccount(ctx context.Context, principal model.Principal, input SignUpInput) (*Account, string, error) {
	if !principal.IsAdmin() {
		return nil, "", ErrPermissionDenied
	}
	role := model.Role(strings.TrimSpace(input.Role))
	if !role.Valid() {
		return nil, "", invalidInput("unknown role %q", input.Role)
	}

	var generated string
	if input.Password == "" {
		var err error
		if generated, err = newTemporaryPassword(); err != nil {
			return nil, "", err
		}
		input.Password = generated
	}

	user, err := s.createAccount(ctx, input, role)
	if err != nil {
		return nil, "", err
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("role", string(role)).
		Str("admin_id", principal.UserID.String()).
		Msg("account created")

	return &Account{User: user, Role: role}, generated, nil
}

func (s *AuthService) DeleteAccount(ctx context.Context, principal model.Principal, userID string) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	id, err := parseID(userID)
	if err != nil {
		return err
	}
	if id == principal.UserID {
		return conflict("admins cannot delete their own account")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.log.Info().Str("user_id", id.String()).Str("admin_id", principal.UserID.String()).Msg("account deleted")
	return nil
}

func (s *AuthService) createAccount(ctx context.Context, input SignUpInput, role model.Role) (*model.User, error) {
	address, err := mail.ParseAddress(strings.TrimSpace(input.Email))
	if err != nil {
		return nil, invalidInput("malformed email")
	}
	if len(input.Password) < minPasswordLength {
		return nil, invalidInput("password must be at least %d characters", minPasswordLength)
	}
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, invalidInput("full name is required")
	}

	var phone *string
	if strings.TrimSpace(input.Phone) != "" {
		normalized := utils.NormalizePhone(input.Phone)
		if normalized == "" {
			return nil, invalidInput("malformed phone number")
		}
		phone = &normalized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        strings.ToLower(address.Address),
		PasswordHash: string(hash),
	}
	profile := &model.Profile{FullName: fullName, PhoneNumber: phone}

	if err := s.users.CreateAccount(ctx, user, role, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("email already registered")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(user *model.User, role model.Role) (*Session, error) {
	token, claims, err := s.issuer.Issue(user.ID, role)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
		Role:      role,
	}, nil
}
