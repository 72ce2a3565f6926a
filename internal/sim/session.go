package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"responseops-sim/internal/auth"
	"responseops-sim/internal/config"
)

const sessionTTL = 12 * time.Hour

// ErrUnknownRole is returned when login names a role no configured user holds.
var ErrUnknownRole = errors.New("no user configured for role")

// Login starts a console session for the configured user holding the given
// role. A non-empty name overrides the configured display name. The session
// carries a signed token and survives restarts when a store is attached.
func (s *Simulator) Login(role auth.Role, name string) (auth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var user *config.User
	for i := range s.cfg.Users {
		r, ok := auth.NormalizeRole(s.cfg.Users[i].Role)
		if ok && r == role {
			user = &s.cfg.Users[i]
			break
		}
	}
	if user == nil {
		return auth.Session{}, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	if name == "" {
		name = user.Name
	}
	token, err := auth.IssueToken(name, role, []byte(s.cfg.SessionSecret), sessionTTL)
	if err != nil {
		return auth.Session{}, err
	}
	sess := &auth.Session{
		UserID:     user.ID,
		Name:       name,
		Role:       role,
		Token:      token,
		LoggedInAt: s.now(),
	}
	s.session = sess
	s.recordAPILocked("/auth/login", "POST", 200)
	s.logLocked("auth", fmt.Sprintf("%s logged in as %s.", sess.Name, sess.Role), "", sess.Name)
	s.saveSessionLocked()
	return *sess, nil
}

// Logout ends the session. Any running scenario is canceled so its pending
// steps cannot mutate state on behalf of the departed operator.
func (s *Simulator) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return
	}
	name := s.session.Name
	s.cancelScenarioLocked()
	s.session = nil
	s.logLocked("auth", fmt.Sprintf("%s logged out.", name), "", name)
	if s.store != nil {
		_ = s.store.Remove(sessionKey)
	}
}

// Session returns the active session, if any.
func (s *Simulator) Session() (auth.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return auth.Session{}, false
	}
	return *s.session, true
}

// ValidToken reports whether a presented token matches the active session
// and still verifies against the console secret.
func (s *Simulator) ValidToken(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || token == "" || token != s.session.Token {
		return false
	}
	_, err := auth.ParseToken(token, []byte(s.cfg.SessionSecret))
	return err == nil
}

func (s *Simulator) saveSessionLocked() {
	if s.store == nil || s.session == nil {
		return
	}
	blob, err := json.Marshal(s.session)
	if err != nil {
		return
	}
	_ = s.store.Set(sessionKey, blob)
}

// loadSession restores a persisted session whose token still verifies.
func (s *Simulator) loadSession() {
	if s.store == nil {
		return
	}
	blob, ok := s.store.Get(sessionKey)
	if !ok {
		return
	}
	var sess auth.Session
	if err := json.Unmarshal(blob, &sess); err != nil {
		_ = s.store.Remove(sessionKey)
		return
	}
	if _, err := auth.ParseToken(sess.Token, []byte(s.cfg.SessionSecret)); err != nil {
		_ = s.store.Remove(sessionKey)
		return
	}
	s.session = &sess
}
