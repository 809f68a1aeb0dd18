// Package session tracks browser sessions: a signed cookie holding the
// session id and the logged-in user, and the per-session cart kept in Redis.
package session

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	cookieName = "storefront_session"

	keyID        = "sid"
	keyUserID    = "uid"
	keyRole      = "role"
	keyPermanent = "permanent"
)

// State is the decoded cookie session of one request.
type State struct {
	ID        string
	UserID    int64
	Role      domain.Role
	Permanent bool

	// New is true when the request carried no usable session cookie.
	New bool
}

func (s *State) LoggedIn() bool {
	return s.UserID != 0
}

// Login records u as the session's user.
func (s *State) Login(u *domain.User) {
	s.UserID = u.ID
	s.Role = u.Role
}

func (s *State) Logout() {
	s.UserID = 0
	s.Role = ""
}

type Manager struct {
	store sessions.Store
}

// NewManager builds a cookie session manager signing cookies with secret.
func NewManager(secret []byte, secure bool) *Manager {
	store := sessions.NewCookieStore(secret)
	// codecs must accept cookies as old as a permanent session
	store.MaxAge(int(PermanentTTL.Seconds()))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store}
}

// Load decodes the session cookie of r. A missing or tampered cookie yields
// a fresh state with a new id; Load never fails.
func (m *Manager) Load(r *http.Request) *State {
	sess, err := m.store.Get(r, cookieName)
	if err != nil || sess.IsNew {
		return &State{ID: uuid.NewString(), New: true}
	}

	st := &State{}
	st.ID, _ = sess.Values[keyID].(string)
	st.UserID, _ = sess.Values[keyUserID].(int64)
	role, _ := sess.Values[keyRole].(string)
	st.Role = domain.Role(role)
	st.Permanent, _ = sess.Values[keyPermanent].(bool)
	if st.ID == "" {
		st.ID = uuid.NewString()
		st.New = true
	}
	return st
}

// Save writes st back as the session cookie. Handlers must call it before
// writing the response body.
func (m *Manager) Save(w http.ResponseWriter, r *http.Request, st *State) error {
	sess, _ := m.store.Get(r, cookieName)
	sess.Values[keyID] = st.ID
	sess.Values[keyUserID] = st.UserID
	sess.Values[keyRole] = string(st.Role)
	sess.Values[keyPermanent] = st.Permanent

	opts := *m.options()
	opts.MaxAge = 0
	if st.Permanent {
		opts.MaxAge = int(PermanentTTL.Seconds())
	}
	sess.Options = &opts

	if err := sess.Save(r, w); err != nil {
		return err
	}
	st.New = false
	return nil
}

func (m *Manager) options() *sessions.Options {
	if cs, ok := m.store.(*sessions.CookieStore); ok && cs.Options != nil {
		return cs.Options
	}
	return &sessions.Options{Path: "/", HttpOnly: true}
}

type ctxKey struct{}

func WithState(ctx context.Context, st *State) context.Context {
	return context.WithValue(ctx, ctxKey{}, st)
}

// FromContext returns the session state stored by WithState, or nil.
func FromContext(ctx context.Context) *State {
	st, _ := ctx.Value(ctxKey{}).(*State)
	return st
}
