package models

import "time"

// AuthState is where a session sits in the login flow.
type AuthState string

const (
	// StateAnonymous is the initial state: no credentials accepted yet.
	StateAnonymous AuthState = "anonymous"
	// StateCredentialsVerified means the password was accepted and an OTP
	// has been emailed; the session is waiting for the code.
	StateCredentialsVerified AuthState = "credentials_verified"
	// StateAuthenticated is terminal until logout.
	StateAuthenticated AuthState = "authenticated"
)

const (
	// MaxLoginAttempts wrong-credential submissions lock the session.
	MaxLoginAttempts = 5
	// MaxOTPAttempts wrong codes force the session back to anonymous.
	MaxOTPAttempts = 3
	// OTPValidity is the lifetime of an emailed code.
	OTPValidity = 5 * time.Minute
	// SessionDuration is how long a session cookie stays valid.
	SessionDuration = 24 * time.Hour
)

// Session is the explicit per-session authentication context. Every
// handler that touches login state goes through one of these; there is no
// other mutable auth state in the process.
type Session struct {
	ID            string
	State         AuthState
	OTPCode       string
	OTPExpiry     time.Time
	LoginAttempts int
	OTPAttempts   int
	CreatedAt     time.Time
}

// NewSession returns a session in its defined initial state.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		State:     StateAnonymous,
		CreatedAt: now,
	}
}

// ResetAuth drops the session back to anonymous and clears OTP state.
// The wrong-credential counter survives: a locked session stays locked
// until the cookie itself is discarded.
func (s *Session) ResetAuth() {
	s.State = StateAnonymous
	s.OTPCode = ""
	s.OTPExpiry = time.Time{}
	s.OTPAttempts = 0
}

// Locked reports whether the credential attempt limit has been exceeded.
func (s *Session) Locked() bool {
	return s.LoginAttempts >= MaxLoginAttempts
}

// OTPExpired reports whether the emailed code is past its window. Expiry
// is checked lazily on the next interaction; nothing expires sessions in
// the background.
func (s *Session) OTPExpired(now time.Time) bool {
	return s.OTPExpiry.IsZero() || now.After(s.OTPExpiry)
}

// Expired reports whether the session cookie itself has outlived its
// lifetime.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.CreatedAt.Add(SessionDuration))
}
