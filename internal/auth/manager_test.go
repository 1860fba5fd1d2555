package auth

import (
	"errors"
	"sync"
	"testing"
	"time"

	"remindly/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOTPSender struct {
	mu    sync.Mutex
	codes []string
	to    []string
	err   error
}

func (f *fakeOTPSender) SendOTP(to, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.to = append(f.to, to)
	f.codes = append(f.codes, code)
	return nil
}

func (f *fakeOTPSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.codes)
}

func (f *fakeOTPSender) lastCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[len(f.codes)-1]
}

func newTestManager(t *testing.T, sender *fakeOTPSender) (*Manager, string, *time.Time) {
	t.Helper()
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	clock := &now
	m := NewManager("admin", "s3cret", "admin@example.com", sender)
	m.now = func() time.Time { return *clock }
	sessionID, err := m.NewSession()
	require.NoError(t, err)
	return m, sessionID, clock
}

func TestLoginHappyPath(t *testing.T) {
	sender := &fakeOTPSender{}
	m, sid, _ := newTestManager(t, sender)

	_, err := m.Login(sid, "admin", "s3cret")
	require.NoError(t, err)

	state, err := m.State(sid)
	require.NoError(t, err)
	assert.Equal(t, models.StateCredentialsVerified, state)
	assert.False(t, m.Authenticated(sid))

	require.Equal(t, 1, sender.count())
	assert.Equal(t, "admin@example.com", sender.to[0])
	require.Len(t, sender.lastCode(), 6)

	_, err = m.VerifyOTP(sid, sender.lastCode())
	require.NoError(t, err)
	assert.True(t, m.Authenticated(sid))
}

func TestLoginWrongCredentials(t *testing.T) {
	sender := &fakeOTPSender{}
	m, sid, _ := newTestManager(t, sender)

	remaining, err := m.Login(sid, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 4, remaining)

	state, _ := m.State(sid)
	assert.Equal(t, models.StateAnonymous, state)
	assert.Zero(t, sender.count())
}

func TestLoginLockoutAfterFiveAttempts(t *testing.T) {
	sender := &fakeOTPSender{}
	m, sid, _ := newTestManager(t, sender)

	for i := 0; i < 4; i++ {
		_, err := m.Login(sid, "admin", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err := m.Login(sid, "admin", "wrong")
	assert.ErrorIs(t, err, ErrSessionLocked)

	// Even the correct password is rejected now, and the relay is never
	// touched.
	_, err = m.Login(sid, "admin", "s3cret")
	assert.ErrorIs(t, err, ErrSessionLocked)
	assert.Zero(t, sender.count())
}

func TestOTPWrongCodeThreeTimesResets(t *testing.T) {
	sender := &fakeOTPSender{}
	m, sid, _ := newTestManager(t, sender)

	_, err := m.Login(sid, "admin", "s3cret")
	require.NoError(t, err)

	remaining, err := m.VerifyOTP(sid, "000000")
	assert.ErrorIs(t, err, ErrInvalidOTP)
	assert.Equal(t, 2, remaining)

	_, err = m.VerifyOTP(sid, "000000")
	assert.ErrorIs(t, err, ErrInvalidOTP)

	_, err = m.VerifyOTP(sid, "000000")
	assert.ErrorIs(t, err, ErrTooManyOTPAttempts)

	// Forced all the way back to anonymous: a further code submission is
	// out of order, even with the right code.
	state, _ := m.State(sid)
	assert.Equal(t, models.StateAnonymous, state)
	_, err = m.VerifyOTP(sid, sender.lastCode())
	assert.ErrorIs(t, err, ErrNotVerified)
}

func TestOTPExpiryIsLazy(t *testing.T) {
	sender := &fakeOTPSender{}
	m, sid, clock := newTestManager(t, sender)

	_, err := m.Login(sid, "admin", "s3cret")
	require.NoError(t, err)
	code := sender.lastCode()

	// Nothing happens at the expiry instant itself; the session still
	// reads credentials-verified until the next interaction.
	*clock = clock.Add(6 * time.Minute)
	state, _ := m.State(sid)
	assert.Equal(t, models.StateCredentialsVerified, state)

	_, err = m.VerifyOTP(sid, code)
	assert.ErrorIs(t, err, ErrOTPExpired)
	state, _ = m.State(sid)
	assert.Equal(t, models.StateAnonymous, state)
}

func TestOTPWithinWindowStillValid(t *testing.T) {
	sender := &fakeOTPSender{}
	m, sid, clock := newTestManager(t, sender)

	_, err := m.Login(sid, "admin", "s3cret")
	require.NoError(t, err)

	*clock = clock.Add(4 * time.Minute)
	_, err = m.VerifyOTP(sid, sender.lastCode())
	require.NoError(t, err)
	assert.True(t, m.Authenticated(sid))
}

func TestResendOTP(t *testing.T) {
	sender := &fakeOTPSender{}
	m, sid, _ := newTestManager(t, sender)

	err := m.ResendOTP(sid)
	assert.ErrorIs(t, err, ErrNotVerified)

	_, err = m.Login(sid, "admin", "s3cret")
	require.NoError(t, err)
	first := sender.lastCode()

	// Burn two attempts, then resend: the counter starts over and the
	// old code is dead.
	_, _ = m.VerifyOTP(sid, "000000")
	_, _ = m.VerifyOTP(sid, "000000")
	require.NoError(t, m.ResendOTP(sid))
	assert.Equal(t, 2, sender.count())

	if first != sender.lastCode() {
		_, err = m.VerifyOTP(sid, first)
		assert.ErrorIs(t, err, ErrInvalidOTP)
	}
	_, err = m.VerifyOTP(sid, sender.lastCode())
	require.NoError(t, err)
}

func TestOTPSendFailureLeavesStateAlone(t *testing.T) {
	sender := &fakeOTPSender{err: errors.New("relay down")}
	m, sid, _ := newTestManager(t, sender)

	_, err := m.Login(sid, "admin", "s3cret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)

	state, _ := m.State(sid)
	assert.Equal(t, models.StateAnonymous, state)
}

func TestLogoutClearsEverything(t *testing.T) {
	sender := &fakeOTPSender{}
	m, sid, _ := newTestManager(t, sender)

	_, err := m.Login(sid, "admin", "s3cret")
	require.NoError(t, err)
	_, err = m.VerifyOTP(sid, sender.lastCode())
	require.NoError(t, err)
	require.True(t, m.Authenticated(sid))

	m.Logout(sid)
	assert.False(t, m.Authenticated(sid))
	_, err = m.Login(sid, "admin", "s3cret")
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestSessionExpiresAfterCookieLifetime(t *testing.T) {
	sender := &fakeOTPSender{}
	m, sid, clock := newTestManager(t, sender)

	*clock = clock.Add(models.SessionDuration + time.Minute)
	assert.False(t, m.HasSession(sid))
	_, err := m.Login(sid, "admin", "s3cret")
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestGenerateOTPFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, ch := range code {
			assert.True(t, ch >= '0' && ch <= '9')
		}
		seen[code] = true
	}
	// 50 draws from a million values colliding every time would mean the
	// generator is broken.
	assert.Greater(t, len(seen), 1)
}
