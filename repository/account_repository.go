package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"fitpro-backend/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

// Session scopes accepted by DeleteSession
const (
	SessionScopeCurrent = "current"
	SessionScopeAll     = "all"
)

const (
	defaultSessionTTL = 365 * 24 * time.Hour

	// Failed credential checks allowed per key before answering 429
	attemptBurst    = 10
	attemptInterval = 6 * time.Second

	// Limiter count that triggers a sweep of fully refilled limiters
	maxLimiters = 1024
	limiterIdle = attemptBurst * attemptInterval
)

var (
	errInvalidCredentials = models.NewRemoteError(models.CodeUnauthenticated, "user_invalid_credentials", "Invalid credentials. Please check the email and password.", nil)
	errNoSession          = models.NewRemoteError(models.CodeUnauthenticated, "general_unauthorized_scope", "User (role: guests) missing scope (account)", nil)
	errTooManyAttempts    = models.NewRemoteError(models.CodeRateLimited, "general_rate_limit_exceeded", "Rate limit for the current endpoint has been exceeded. Please try again after some time.", nil)
)

// AccountRepository is the account and session gateway backed by PostgreSQL.
// It holds the opaque token of the current session; callers never see it.
type AccountRepository struct {
	db         DBTX
	sessionTTL time.Duration

	mu       sync.Mutex
	token    string
	limiters map[string]*attemptLimiter
	now      func() time.Time
}

type attemptLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{
		db:         db,
		sessionTTL: defaultSessionTTL,
		limiters:   make(map[string]*attemptLimiter),
		now:        time.Now,
	}
}

// CreateAccount creates an account with a bcrypt password hash
func (r *AccountRepository) CreateAccount(ctx context.Context, email, password, name string) (*models.Identity, error) {
	email = normalizeEmail(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewRemoteError(models.CodeBadRequest, "password_invalid", "Invalid password", err)
	}

	identity := &models.Identity{ID: uuid.New(), Name: name, Email: email}
	query := `
		INSERT INTO accounts (id, email, name, password_hash)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.db.Exec(ctx, query, identity.ID, identity.Email, identity.Name, string(hash)); err != nil {
		mapped := mapPgError(err, nil)
		var remoteErr *models.RemoteError
		if errors.As(mapped, &remoteErr) && remoteErr.Code == models.CodeConflict {
			return nil, models.NewRemoteError(models.CodeConflict, "user_already_exists", "A user with the same id, email, or phone already exists in this project.", err)
		}
		return nil, mapped
	}

	return identity, nil
}

// CreateSession verifies the credentials and opens a new current session
func (r *AccountRepository) CreateSession(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if !r.allowAttempt("login:" + email) {
		return errTooManyAttempts
	}

	var accountID uuid.UUID
	var hash string
	query := `SELECT id, password_hash FROM accounts WHERE email = $1`
	if err := r.db.QueryRow(ctx, query, email).Scan(&accountID, &hash); err != nil {
		return mapPgError(err, errInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return errInvalidCredentials
	}

	token := uuid.NewString()
	insert := `
		INSERT INTO sessions (token, account_id, expires_at)
		VALUES ($1, $2, $3)`
	if _, err := r.db.Exec(ctx, insert, token, accountID, time.Now().Add(r.sessionTTL)); err != nil {
		return mapPgError(err, nil)
	}

	r.mu.Lock()
	r.token = token
	r.mu.Unlock()
	return nil
}

// GetCurrentIdentity returns the identity behind the current session
func (r *AccountRepository) GetCurrentIdentity(ctx context.Context) (*models.Identity, error) {
	token := r.currentToken()
	if token == "" {
		return nil, errNoSession
	}

	identity := &models.Identity{}
	query := `
		SELECT a.id, a.name, a.email
		FROM sessions s
		JOIN accounts a ON a.id = s.account_id
		WHERE s.token = $1 AND s.expires_at > NOW()`

	err := r.db.QueryRow(ctx, query, token).Scan(&identity.ID, &identity.Name, &identity.Email)
	if err != nil {
		mapped := mapPgError(err, errNoSession)
		if models.KindOf(mapped) == models.KindUnauthenticated {
			r.clearToken(token)
		}
		return nil, mapped
	}

	return identity, nil
}

// DeleteSession deletes the current session, or every session of the
// account for SessionScopeAll. The local token is dropped either way.
func (r *AccountRepository) DeleteSession(ctx context.Context, scope string) error {
	token := r.currentToken()
	if token == "" {
		return errNoSession
	}
	defer r.clearToken(token)

	var query string
	switch scope {
	case SessionScopeCurrent, "":
		query = `DELETE FROM sessions WHERE token = $1`
	case SessionScopeAll:
		query = `
			DELETE FROM sessions
			WHERE account_id = (SELECT account_id FROM sessions WHERE token = $1)`
	default:
		return models.NewRemoteError(models.CodeBadRequest, "general_argument_invalid", "Invalid session scope: "+scope, nil)
	}

	tag, err := r.db.Exec(ctx, query, token)
	if err != nil {
		return mapPgError(err, nil)
	}
	if tag.RowsAffected() == 0 {
		return errNoSession
	}
	return nil
}

// UpdatePassword replaces the password of the current account after
// verifying the old one
func (r *AccountRepository) UpdatePassword(ctx context.Context, newPassword, oldPassword string) error {
	token := r.currentToken()
	if token == "" {
		return errNoSession
	}

	var accountID uuid.UUID
	var hash string
	query := `
		SELECT a.id, a.password_hash
		FROM sessions s
		JOIN accounts a ON a.id = s.account_id
		WHERE s.token = $1 AND s.expires_at > NOW()`
	if err := r.db.QueryRow(ctx, query, token).Scan(&accountID, &hash); err != nil {
		return mapPgError(err, errNoSession)
	}

	if !r.allowAttempt("password:" + accountID.String()) {
		return errTooManyAttempts
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(oldPassword)); err != nil {
		return errInvalidCredentials
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewRemoteError(models.CodeBadRequest, "password_invalid", "Invalid password", err)
	}

	update := `
		UPDATE accounts SET
			password_hash = $2,
			updated_at = NOW()
		WHERE id = $1`
	if _, err := r.db.Exec(ctx, update, accountID, string(newHash)); err != nil {
		return mapPgError(err, nil)
	}
	return nil
}

func (r *AccountRepository) currentToken() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

// clearToken drops the local token if it still is token
func (r *AccountRepository) clearToken(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.token == token {
		r.token = ""
	}
}

func (r *AccountRepository) allowAttempt(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	l, ok := r.limiters[key]
	if !ok {
		if len(r.limiters) >= maxLimiters {
			r.sweepLimiters(now)
		}
		l = &attemptLimiter{limiter: rate.NewLimiter(rate.Every(attemptInterval), attemptBurst)}
		r.limiters[key] = l
	}
	l.lastSeen = now
	return l.limiter.AllowN(now, 1)
}

// sweepLimiters drops limiters idle long enough to have refilled completely.
// Callers hold r.mu.
func (r *AccountRepository) sweepLimiters(now time.Time) {
	for key, l := range r.limiters {
		if now.Sub(l.lastSeen) >= limiterIdle {
			delete(r.limiters, key)
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
