package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"remindly/internal/models"
	"remindly/internal/timeutil"
)

var (
	// ErrInvalidCredentials covers a wrong username or password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrSessionLocked means the credential attempt limit was exceeded;
	// the session stays locked until its cookie is discarded.
	ErrSessionLocked = errors.New("too many failed login attempts")
	// ErrInvalidOTP covers a wrong verification code.
	ErrInvalidOTP = errors.New("invalid verification code")
	// ErrOTPExpired means the code outlived its 5-minute window; the
	// session has been reset and the login must start over.
	ErrOTPExpired = errors.New("verification code expired, please log in again")
	// ErrTooManyOTPAttempts means the code attempt limit was exceeded;
	// the session has been reset and the login must start over.
	ErrTooManyOTPAttempts = errors.New("too many verification attempts, please log in again")
	// ErrNotVerified means an OTP operation arrived for a session whose
	// credentials were never accepted (or were reset).
	ErrNotVerified = errors.New("credentials not verified")
	// ErrUnknownSession means the session id maps to nothing.
	ErrUnknownSession = errors.New("unknown session")
)

// OTPSender delivers a login code by email.
type OTPSender interface {
	SendOTP(to, code string) error
}

// Manager owns every login session and drives each one through the
// three-state flow: anonymous, credentials verified (code emailed),
// authenticated. All session state lives here, in memory; a restart logs
// everyone out, which for a single-admin tool is fine.
type Manager struct {
	username   string
	password   string
	adminEmail string
	sender     OTPSender

	mu       sync.Mutex
	sessions map[string]*models.Session

	// now is swappable so expiry behavior is testable.
	now func() time.Time
}

// NewManager wires the login flow against the configured credentials and
// the mail sender.
func NewManager(username, password, adminEmail string, sender OTPSender) *Manager {
	return &Manager{
		username:   username,
		password:   password,
		adminEmail: adminEmail,
		sender:     sender,
		sessions:   make(map[string]*models.Session),
		now:        timeutil.Now,
	}
}

// NewSession creates a fresh anonymous session and returns its id.
// Expired sessions are pruned here, lazily; nothing expires them in the
// background.
func (m *Manager) NewSession() (string, error) {
	id, err := GenerateRandomString(SessionIDLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for sid, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, sid)
		}
	}

	m.sessions[id] = models.NewSession(id, now)
	return id, nil
}

// HasSession reports whether the id maps to a live session.
func (m *Manager) HasSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.live(id)
	return ok
}

// Login runs the credential step. On success the code is generated,
// emailed to the admin address, and stored with its expiry; on a wrong
// guess the bounded attempt counter grows, and once it is exhausted every
// further submission is rejected without touching the mail relay. The
// returned count is the attempts remaining after this call.
func (m *Manager) Login(sessionID, username, password string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.live(sessionID)
	if !ok {
		return 0, ErrUnknownSession
	}
	if s.Locked() {
		return 0, ErrSessionLocked
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(m.password)) == 1
	if !userOK || !passOK {
		s.LoginAttempts++
		remaining := models.MaxLoginAttempts - s.LoginAttempts
		if remaining <= 0 {
			return 0, ErrSessionLocked
		}
		return remaining, ErrInvalidCredentials
	}

	if err := m.issueOTPLocked(s); err != nil {
		return models.MaxLoginAttempts - s.LoginAttempts, err
	}
	return models.MaxLoginAttempts - s.LoginAttempts, nil
}

// ResendOTP re-issues the code for a session that already passed the
// credential step.
func (m *Manager) ResendOTP(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.live(sessionID)
	if !ok {
		return ErrUnknownSession
	}
	if s.State != models.StateCredentialsVerified {
		return ErrNotVerified
	}
	return m.issueOTPLocked(s)
}

// issueOTPLocked generates a code, emails it, and moves the session to
// credentials-verified. A send failure leaves the session state alone so
// the user can simply try again.
func (m *Manager) issueOTPLocked(s *models.Session) error {
	code, err := GenerateOTP()
	if err != nil {
		return err
	}
	if err := m.sender.SendOTP(m.adminEmail, code); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	s.State = models.StateCredentialsVerified
	s.OTPCode = code
	s.OTPExpiry = m.now().Add(models.OTPValidity)
	s.OTPAttempts = 0
	log.Printf("Verification code sent to %s for session %s...", m.adminEmail, s.ID[:8])
	return nil
}

// VerifyOTP runs the code step. Expiry is checked here, lazily: an
// expired code resets the session to anonymous the moment it is next
// used, and three wrong codes do the same. The returned count is the
// code attempts remaining after this call.
func (m *Manager) VerifyOTP(sessionID, code string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.live(sessionID)
	if !ok {
		return 0, ErrUnknownSession
	}
	if s.State != models.StateCredentialsVerified {
		return 0, ErrNotVerified
	}
	if s.OTPExpired(m.now()) {
		s.ResetAuth()
		return 0, ErrOTPExpired
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(s.OTPCode)) != 1 {
		s.OTPAttempts++
		remaining := models.MaxOTPAttempts - s.OTPAttempts
		if remaining <= 0 {
			s.ResetAuth()
			return 0, ErrTooManyOTPAttempts
		}
		return remaining, ErrInvalidOTP
	}

	s.State = models.StateAuthenticated
	s.OTPCode = ""
	s.OTPExpiry = time.Time{}
	log.Printf("Session %s... authenticated", s.ID[:8])
	return 0, nil
}

// Authenticated reports whether the session has completed both steps.
func (m *Manager) Authenticated(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.live(sessionID)
	return ok && s.State == models.StateAuthenticated
}

// State returns the session's current position in the flow.
func (m *Manager) State(sessionID string) (models.AuthState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.live(sessionID)
	if !ok {
		return "", ErrUnknownSession
	}
	return s.State, nil
}

// Logout discards the session entirely, counters included.
func (m *Manager) Logout(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// live fetches a session, dropping it if its cookie lifetime has passed.
// Callers hold m.mu.
func (m *Manager) live(id string) (*models.Session, bool) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if s.Expired(m.now()) {
		delete(m.sessions, id)
		return nil, false
	}
	return s, true
}
