package application

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-access-control/internal/domain/entity"
	repo "github.com/oksasatya/go-access-control/internal/domain/repository"
	"github.com/oksasatya/go-access-control/pkg/helpers"
)

var (
	loginSuccessTotal = expvar.NewInt("login_success_total")
	loginFailedTotal  = expvar.NewInt("login_failed_total")
)

// Used when the email is unknown so both failure paths pay for one hash comparison.
const timingPassword = "access-control-timing-equalizer"

type Credentials struct {
	Email    string
	Password string
}

// ClientInfo is the request metadata stored with every audit entry.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

type AuthResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      entity.PublicUser `json:"user"`
}

// CheckOutcome tags a CredentialCheck.
type CheckOutcome int

const (
	CredentialsValid CheckOutcome = iota + 1
	CredentialsWrongPassword
	CredentialsUnknownEmail
)

// CredentialCheck is the result of validating credentials against the store.
// User is set for CredentialsValid and CredentialsWrongPassword.
type CredentialCheck struct {
	Outcome CheckOutcome
	User    *entity.User
}

func (c CredentialCheck) Valid() bool { return c.Outcome == CredentialsValid && c.User != nil }

func (c CredentialCheck) auditInput(email string, client ClientInfo) entity.AccessLogInput {
	in := entity.AccessLogInput{IPAddress: client.IPAddress, UserAgent: client.UserAgent, Status: entity.AccessFailed}
	if c.Valid() {
		in.Status = entity.AccessSuccess
	}
	if c.User != nil {
		in.UserID = c.User.ID
	} else {
		in.Email = email
	}
	return in
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	GenerateAccessToken(s helpers.TokenSubject) (string, time.Time, error)
}

// AccessRecorder persists audit entries.
type AccessRecorder interface {
	Record(ctx context.Context, in entity.AccessLogInput) (*entity.AccessLog, error)
}

// LoginNotifier tells a known user about a login attempt on their account.
type LoginNotifier interface {
	NotifyLogin(ctx context.Context, u *entity.User, status entity.AccessStatus, client ClientInfo, at time.Time) error
}

type AuthService struct {
	Users    repo.UserRepository
	Hasher   helpers.PasswordHasher
	Tokens   TokenIssuer
	Audit    AccessRecorder
	Notifier LoginNotifier
	Logger   *logrus.Logger

	dummyHash string
}

func NewAuthService(users repo.UserRepository, hasher helpers.PasswordHasher, tokens TokenIssuer, audit AccessRecorder, logger *logrus.Logger) *AuthService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	dummy, err := hasher.Hash(timingPassword)
	if err != nil {
		logger.WithError(err).Warn("timing hash unavailable")
	}
	return &AuthService{
		Users:     users,
		Hasher:    hasher,
		Tokens:    tokens,
		Audit:     audit,
		Logger:    logger,
		dummyHash: dummy,
	}
}

// WithNotifier enables login alerts. Alerts never change a login result.
func (s *AuthService) WithNotifier(n LoginNotifier) *AuthService {
	s.Notifier = n
	return s
}

// ValidateCredentials resolves credentials without side effects.
// Only storage failures are returned as errors.
// The email is normalized the same way registration stores it.
func (s *AuthService) ValidateCredentials(ctx context.Context, creds Credentials) (CredentialCheck, error) {
	u, err := s.Users.FindByEmail(ctx, NormalizeEmail(creds.Email))
	if errors.Is(err, repo.ErrNotFound) {
		if s.dummyHash != "" {
			s.Hasher.Verify(s.dummyHash, creds.Password)
		}
		return CredentialCheck{Outcome: CredentialsUnknownEmail}, nil
	}
	if err != nil {
		return CredentialCheck{}, err
	}
	if !s.Hasher.Verify(u.PasswordHash, creds.Password) {
		return CredentialCheck{Outcome: CredentialsWrongPassword, User: u}, nil
	}
	return CredentialCheck{Outcome: CredentialsValid, User: u}, nil
}

// Login checks credentials, records exactly one audit entry, then issues a token.
// Both failure causes surface as ErrInvalidCredentials; the audit entry keeps the difference.
// If the audit write fails no token is issued.
func (s *AuthService) Login(ctx context.Context, creds Credentials, client ClientInfo) (*AuthResult, error) {
	check, err := s.ValidateCredentials(ctx, creds)
	if err != nil {
		s.Logger.WithError(err).WithField("ip", client.IPAddress).Error("credential lookup failed")
		return nil, err
	}

	entry, err := s.Audit.Record(ctx, check.auditInput(creds.Email, client))
	if err != nil {
		s.Logger.WithError(err).WithField("ip", client.IPAddress).Error("record access log failed")
		return nil, fmt.Errorf("record access log: %w", err)
	}

	if !check.Valid() {
		loginFailedTotal.Add(1)
		fields := logrus.Fields{"ip": client.IPAddress, "access_log_id": entry.ID}
		if check.User != nil {
			fields["user_id"] = check.User.ID
			s.notify(ctx, check.User, entity.AccessFailed, client, entry.Timestamp)
		}
		s.Logger.WithFields(fields).Warn("login failed")
		return nil, ErrInvalidCredentials
	}

	u := check.User
	token, exp, err := s.Tokens.GenerateAccessToken(helpers.TokenSubject{UserID: u.ID, Email: u.Email, Role: u.Role.String()})
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return nil, fmt.Errorf("issue token: %w", err)
	}

	loginSuccessTotal.Add(1)
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "ip": client.IPAddress}).Info("login succeeded")
	s.notify(ctx, u, entity.AccessSuccess, client, entry.Timestamp)

	return &AuthResult{Token: token, ExpiresAt: exp, User: u.Public()}, nil
}

func (s *AuthService) notify(ctx context.Context, u *entity.User, status entity.AccessStatus, client ClientInfo, at time.Time) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.NotifyLogin(ctx, u, status, client, at); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("login alert not published")
	}
}
