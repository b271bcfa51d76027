package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/teghlab/otp-lab/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the hashing cost used for new passwords.
const DefaultBcryptCost = 10

// maxPasswordBytes is the bcrypt input limit. Longer passwords are truncated.
const maxPasswordBytes = 72

// Session is the per-request session state the auth flow reads and mutates.
type Session interface {
	VerifiedEmail() string
	SetVerifiedEmail(ctx context.Context, email string) error
	User() *domain.SessionUser
	SetUser(ctx context.Context, user domain.SessionUser) error
	Destroy(ctx context.Context) error
}

// AuthService drives the OTP, registration and login flow.
//
// A session moves from anonymous to email-verified on VerifyOTP, and to
// authenticated on Register or Login. Logout destroys it.
type AuthService struct {
	users      domain.UserRepository
	otps       domain.OTPRepository
	sender     OTPSender
	bcryptCost int
}

// NewAuthService creates a new AuthService. A nil sender falls back to LogSender.
func NewAuthService(users domain.UserRepository, otps domain.OTPRepository, sender OTPSender, bcryptCost int) *AuthService {
	if sender == nil {
		sender = LogSender{}
	}
	return &AuthService{
		users:      users,
		otps:       otps,
		sender:     sender,
		bcryptCost: bcryptCost,
	}
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Address   string
	City      string
	ZipCode   string
}

// Register creates a user for an email the session has verified by OTP and
// signs the session in as that user. Admin status is derived from the email.
// Repeated registrations of the same email create separate users.
func (s *AuthService) Register(ctx context.Context, sess Session, in RegisterInput) (*domain.User, error) {
	verified := sess.VerifiedEmail()
	if verified == "" || verified != in.Email {
		return nil, domain.ErrNotVerified
	}

	hash, err := bcrypt.GenerateFromPassword(passwordBytes(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Address:      in.Address,
		City:         in.City,
		ZipCode:      in.ZipCode,
		IsAdmin:      IsAdminEmail(in.Email),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := sess.SetUser(ctx, sessionUser(user)); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the password of the user registered under email. A wrong
// password or an unknown email reports false without an error.
func (s *AuthService) Login(ctx context.Context, sess Session, email, password string) (bool, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordBytes(password)); err != nil {
		return false, nil
	}

	if err := sess.SetUser(ctx, sessionUser(user)); err != nil {
		return false, err
	}
	return true, nil
}

// Logout destroys the session.
func (s *AuthService) Logout(ctx context.Context, sess Session) error {
	return sess.Destroy(ctx)
}

// CurrentUser returns the signed-in user, or ErrUnauthenticated.
func (s *AuthService) CurrentUser(sess Session) (*domain.SessionUser, error) {
	u := sess.User()
	if u == nil {
		return nil, domain.ErrUnauthenticated
	}
	return u, nil
}

func sessionUser(u *domain.User) domain.SessionUser {
	return domain.SessionUser{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin}
}

// passwordBytes returns the part of password bcrypt sees.
func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
