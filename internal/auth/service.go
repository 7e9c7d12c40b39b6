package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tome/internal/audit"
	"tome/internal/rls"
	id "tome/pkg/domain"
	dErrors "tome/pkg/domainerrors"
	"tome/pkg/email"
	"tome/pkg/platform/sentinel"
	"tome/pkg/requestcontext"
)

// Bypass reasons used by this package. Fixed strings so the audit trail is
// greppable.
const (
	reasonRegistration     = "user-registration"
	reasonCredentialLookup = "auth-credential-lookup"
)

// TokenIssuer mints access tokens. Implemented by jwtoken.Service.
type TokenIssuer interface {
	GenerateAccessToken(userID id.UserID, expiresIn time.Duration) (string, error)
}

// Service implements registration, login, and logout.
type Service struct {
	scoper      rls.Scoper
	users       Store
	revocations RevocationList
	tokens      TokenIssuer
	audit       audit.Store
	logger      *slog.Logger
	accessTTL   time.Duration
	lockouts    Lockout
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLockout enables per-identifier login throttling.
func WithLockout(lockouts Lockout) ServiceOption {
	return func(s *Service) { s.lockouts = lockouts }
}

func NewService(scoper rls.Scoper, users Store, revocations RevocationList, tokens TokenIssuer, auditStore audit.Store, logger *slog.Logger, accessTTL time.Duration, opts ...ServiceOption) *Service {
	s := &Service{
		scoper:      scoper,
		users:       users,
		revocations: revocations,
		tokens:      tokens,
		audit:       auditStore,
		logger:      logger,
		accessTTL:   accessTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// RegisterRequest carries the fields needed to create an account.
type RegisterRequest struct {
	Email       string
	DisplayName string
	Password    string
}

func (r RegisterRequest) validate() error {
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return dErrors.New(dErrors.CodeInvalidInput, "a valid email is required")
	}
	if len(r.Password) < 8 {
		return dErrors.New(dErrors.CodeInvalidInput, "password must be at least 8 characters")
	}
	return nil
}

// Register creates a new account. No identity exists yet at this point, so
// the insert runs through the audited bypass path; the registration audit
// event commits in the same transaction as the user row.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	normalized := strings.ToLower(strings.TrimSpace(req.Email))
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = email.DeriveDisplayName(normalized)
	}

	user := &User{
		ID:           id.NewUserID(),
		Email:        normalized,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		CreatedAt:    requestcontext.Now(ctx),
	}

	err = s.scoper.WithoutRLS(ctx, reasonRegistration, func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, user); err != nil {
			return err
		}
		return s.audit.Append(txCtx, audit.Event{
			Kind:   audit.KindUserRegistered,
			UserID: user.ID.String(),
		})
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(dErrors.CodeConflict, "email already registered", err)
		}
		return nil, fmt.Errorf("register user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return user, nil
}

// Login verifies credentials and mints an access token. The email lookup
// cannot be tenant-scoped (the caller has no identity yet), so it runs
// through the audited bypass path. Unknown email and wrong password return
// the same error so login cannot be used to probe for accounts.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	if email == "" || password == "" {
		return "", nil, dErrors.New(dErrors.CodeInvalidInput, "email and password are required")
	}
	identifier := strings.ToLower(strings.TrimSpace(email))

	if s.lockouts != nil {
		locked, err := s.lockouts.IsLocked(ctx, identifier)
		if err != nil {
			return "", nil, fmt.Errorf("check login lockout: %w", err)
		}
		if locked {
			return "", nil, dErrors.New(dErrors.CodeRateLimited, "too many failed login attempts")
		}
	}

	var user *User
	err := s.scoper.WithoutRLS(ctx, reasonCredentialLookup, func(txCtx context.Context) error {
		found, err := s.users.FindByEmail(txCtx, identifier)
		if err != nil {
			return err
		}
		user = found
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil, s.failedLogin(ctx, identifier)
		}
		return "", nil, fmt.Errorf("look up credentials: %w", err)
	}

	// Compare outside the bypass transaction; bcrypt is deliberately slow and
	// must not hold a connection open.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "failed login attempt",
			"user_id", user.ID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return "", nil, s.failedLogin(ctx, identifier)
	}

	if s.lockouts != nil {
		if err := s.lockouts.Clear(ctx, identifier); err != nil {
			s.logger.WarnContext(ctx, "failed to clear login lockout state",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, s.accessTTL)
	if err != nil {
		return "", nil, fmt.Errorf("issue access token: %w", err)
	}
	return token, user, nil
}

// failedLogin records the failure for throttling and returns the uniform
// invalid-credentials error. Unknown email and wrong password converge here
// so the two cases stay indistinguishable.
func (s *Service) failedLogin(ctx context.Context, identifier string) error {
	if s.lockouts != nil {
		if err := s.lockouts.RecordFailure(ctx, identifier); err != nil {
			s.logger.WarnContext(ctx, "failed to record login failure",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
	return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
}

// Logout revokes the presented token by JTI. The revocation entry lives for
// the full access TTL, after which the token is expired anyway.
func (s *Service) Logout(ctx context.Context, jti string) error {
	if jti == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "no token to revoke")
	}
	if err := s.revocations.Revoke(ctx, jti, s.accessTTL); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// CurrentUser returns the profile of the authenticated caller. Runs under the
// caller's own scope; the users policy only exposes the caller's row.
func (s *Service) CurrentUser(ctx context.Context) (*User, error) {
	userID, err := requestcontext.RequireUserID(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnauthorized, "authentication required", err)
	}

	var user *User
	err = s.scoper.WithCurrentUser(ctx, func(txCtx context.Context) error {
		found, err := s.users.FindByID(txCtx, userID)
		if err != nil {
			return err
		}
		user = found
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, fmt.Errorf("load current user: %w", err)
	}
	return user, nil
}
