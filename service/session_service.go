package service

import (
	"context"
	"errors"
	"sync"

	"fitpro-backend/models"

	"go.uber.org/zap"
)

// LandingRoute is where the UI goes after login and logout
const LandingRoute = "/"

const minPasswordLength = 8

// AccountGateway is the remote identity and session provider
type AccountGateway interface {
	CreateSession(ctx context.Context, email, password string) error
	GetCurrentIdentity(ctx context.Context) (*models.Identity, error)
	CreateAccount(ctx context.Context, email, password, name string) (*models.Identity, error)
	DeleteSession(ctx context.Context, scope string) error
	UpdatePassword(ctx context.Context, newPassword, oldPassword string) error
}

// SessionStatus represents the authentication state
type SessionStatus string

const (
	StatusUnknown       SessionStatus = "unknown"
	StatusAuthenticated SessionStatus = "authenticated"
	StatusAnonymous     SessionStatus = "anonymous"
)

// SessionState is an immutable snapshot of the session
type SessionState struct {
	Status   SessionStatus    `json:"status"`
	Identity *models.Identity `json:"identity"`
	Busy     bool             `json:"busy"`
}

// SessionService owns the authentication state machine
type SessionService struct {
	accounts AccountGateway
	notifier *Notifier
	logger   *zap.Logger

	mu       sync.Mutex
	status   SessionStatus
	identity *models.Identity
	busy     bool
	subs     map[int]func(SessionState)
	nextSub  int
}

// SessionServiceOption is a functional option for SessionService
type SessionServiceOption func(*SessionService)

// SessionWithAccountGateway sets the account gateway
func SessionWithAccountGateway(gw AccountGateway) SessionServiceOption {
	return func(s *SessionService) {
		s.accounts = gw
	}
}

// SessionWithNotifier sets the notifier errors are surfaced through
func SessionWithNotifier(n *Notifier) SessionServiceOption {
	return func(s *SessionService) {
		s.notifier = n
	}
}

// SessionWithLogger sets the logger
func SessionWithLogger(logger *zap.Logger) SessionServiceOption {
	return func(s *SessionService) {
		s.logger = logger
	}
}

// NewSessionService creates a new session service in the Unknown state
func NewSessionService(opts ...SessionServiceOption) *SessionService {
	s := &SessionService{
		status: StatusUnknown,
		logger: zap.NewNop(),
		subs:   make(map[int]func(SessionState)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult represents the result of a successful login or signup
type LoginResult struct {
	Identity models.Identity
	Redirect string
}

// LogoutResult represents the result of a logout
type LogoutResult struct {
	Redirect string
}

// ChangePasswordRequest represents a request to change the password
type ChangePasswordRequest struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// Initialize resolves the Unknown state from the current remote session.
// A missing session is the expected anonymous case and is not surfaced.
func (s *SessionService) Initialize(ctx context.Context) error {
	if s.accounts == nil {
		return errors.New("account gateway not set")
	}
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	identity, err := s.accounts.GetCurrentIdentity(ctx)
	if err != nil {
		s.setState(StatusAnonymous, nil)
		if models.KindOf(err) == models.KindUnauthenticated {
			return nil
		}
		s.logger.Error("authentication check failed", zap.Error(err))
		s.notifier.Error(models.Message(err))
		return err
	}

	s.setState(StatusAuthenticated, identity)
	return nil
}

// Login creates a session and loads the identity behind it
func (s *SessionService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if s.accounts == nil {
		return nil, errors.New("account gateway not set")
	}
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	identity, err := s.login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Identity: *identity, Redirect: LandingRoute}, nil
}

func (s *SessionService) login(ctx context.Context, email, password string) (*models.Identity, error) {
	if err := s.accounts.CreateSession(ctx, email, password); err != nil {
		return nil, s.loginFailed(err)
	}

	identity, err := s.accounts.GetCurrentIdentity(ctx)
	if err != nil {
		// the new session replaced any previous one and its identity is unknown
		if delErr := s.accounts.DeleteSession(ctx, "current"); delErr != nil {
			s.logger.Warn("failed to delete unresolved session", zap.Error(delErr))
		}
		s.setState(StatusAnonymous, nil)
		return nil, s.loginFailed(err)
	}

	s.setState(StatusAuthenticated, identity)
	s.notifier.Clear()
	s.logger.Info("user logged in", zap.Stringer("user_id", identity.ID))
	return identity, nil
}

func (s *SessionService) loginFailed(err error) error {
	s.mu.Lock()
	resolveUnknown := s.status == StatusUnknown
	s.mu.Unlock()
	if resolveUnknown {
		s.setState(StatusAnonymous, nil)
	}

	s.logger.Warn("login failed", zap.Error(err))
	s.notifier.Error(models.Message(err))
	return err
}

// Signup creates an account and logs into it. When the account is created
// but the login fails, the account still exists and Login may be retried.
func (s *SessionService) Signup(ctx context.Context, email, password, name string) (*LoginResult, error) {
	if s.accounts == nil {
		return nil, errors.New("account gateway not set")
	}
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	if _, err := s.accounts.CreateAccount(ctx, email, password, name); err != nil {
		s.logger.Warn("signup failed", zap.Error(err))
		s.notifier.Error(models.Message(err))
		return nil, err
	}

	identity, err := s.login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Identity: *identity, Redirect: LandingRoute}, nil
}

// Logout deletes the current session. Local state always becomes
// Anonymous, even when the remote delete fails.
func (s *SessionService) Logout(ctx context.Context) (*LogoutResult, error) {
	if s.accounts == nil {
		return nil, errors.New("account gateway not set")
	}
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	err := s.accounts.DeleteSession(ctx, "current")
	s.setState(StatusAnonymous, nil)

	if err != nil {
		s.logger.Warn("logout failed", zap.Error(err))
		s.notifier.Error(models.Message(err))
		return nil, err
	}

	s.notifier.Clear()
	return &LogoutResult{Redirect: LandingRoute}, nil
}

// ChangePassword validates the request locally, then updates the password
func (s *SessionService) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if s.accounts == nil {
		return errors.New("account gateway not set")
	}
	if err := validatePasswordChange(req); err != nil {
		s.notifier.Error(err.Error())
		return err
	}
	if _, ok := s.CurrentIdentity(); !ok {
		return ErrNotAuthenticated
	}
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	if err := s.accounts.UpdatePassword(ctx, req.NewPassword, req.CurrentPassword); err != nil {
		var message string
		switch models.KindOf(err) {
		case models.KindUnauthenticated:
			message = "Current password is incorrect"
		case models.KindRateLimited:
			message = "Too many attempts. Please try again later."
		default:
			message = "Failed to change password: " + models.Message(err)
		}
		s.logger.Warn("password change failed", zap.Error(err))
		s.notifier.Error(message)
		return &models.DisplayError{Message: message, Err: err}
	}

	s.notifier.Success("Password changed successfully!")
	return nil
}

func validatePasswordChange(req ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return &models.ValidationError{Message: "New passwords do not match"}
	}
	if len(req.NewPassword) < minPasswordLength {
		return &models.ValidationError{Message: "Password must be at least 8 characters long"}
	}
	if req.CurrentPassword == "" {
		return &models.ValidationError{Message: "Please enter your current password"}
	}
	return nil
}

// Snapshot returns a copy of the current state
func (s *SessionService) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// CurrentIdentity returns the authenticated identity, if any
func (s *SessionService) CurrentIdentity() (models.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusAuthenticated || s.identity == nil {
		return models.Identity{}, false
	}
	return *s.identity, true
}

// Subscribe registers fn to be called with a snapshot after every state
// change. The returned function removes the subscription.
func (s *SessionService) Subscribe(fn func(SessionState)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *SessionService) snapshotLocked() SessionState {
	state := SessionState{Status: s.status, Busy: s.busy}
	if s.identity != nil {
		identity := *s.identity
		state.Identity = &identity
	}
	return state
}

// begin marks an operation in flight, rejecting overlapping calls
func (s *SessionService) begin() error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrOperationInFlight
	}
	s.busy = true
	s.mu.Unlock()
	s.publish()
	return nil
}

func (s *SessionService) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
	s.publish()
}

func (s *SessionService) setState(status SessionStatus, identity *models.Identity) {
	s.mu.Lock()
	s.status = status
	if identity != nil {
		copied := *identity
		s.identity = &copied
	} else {
		s.identity = nil
	}
	s.mu.Unlock()
	s.publish()
}

// publish notifies subscribers outside the lock
func (s *SessionService) publish() {
	s.mu.Lock()
	state := s.snapshotLocked()
	subs := make([]func(SessionState), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
