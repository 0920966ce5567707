// Package session keeps per-visitor checkout state in memory: the address
// form with its controller, and the cart.
package session

import (
	"context"
	"crypto/rand"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/coffee-delivery/internal/address"
	"github.com/dukerupert/coffee-delivery/internal/checkout"
	"github.com/dukerupert/coffee-delivery/internal/form"
	"github.com/dukerupert/coffee-delivery/internal/service"
	"github.com/dukerupert/coffee-delivery/internal/telemetry"
)

// Session is one visitor's checkout state.
type Session struct {
	ID   string
	Cart *service.Cart

	// CSRFToken must accompany every state-changing request of the session.
	CSRFToken string

	mu         sync.Mutex
	form       *form.State
	controller *checkout.AddressController
	lastSeen   time.Time
}

// Checkout returns the address form and the controller driving it.
func (s *Session) Checkout() (*form.State, *checkout.AddressController) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form, s.controller
}

// Store holds sessions keyed by id. Sessions idle for longer than the TTL
// are removed by Sweep.
type Store struct {
	dir    address.Directory
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore creates an empty store. Address controllers of new sessions
// look codes up in dir.
func NewStore(dir address.Directory, ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dir:      dir,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the live session with the given id and marks it as used.
func (st *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	now := st.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ttl > 0 && now.Sub(s.lastSeen) > st.ttl {
		return nil, false
	}
	s.lastSeen = now
	return s, true
}

// GetOrCreate returns the session for id, starting a new one when id is
// unknown or expired. created reports whether a new session was started.
func (st *Store) GetOrCreate(id string) (s *Session, created bool) {
	if s, ok := st.Get(id); ok {
		return s, false
	}
	return st.Create(), true
}

// Create starts a new session with an empty cart and form.
func (st *Store) Create() *Session {
	id := uuid.NewString()
	s := &Session{
		ID:        id,
		Cart:      service.NewCart(),
		CSRFToken: rand.Text(),
		lastSeen:  st.now(),
	}
	s.form, s.controller = st.newCheckout(id)

	st.mu.Lock()
	st.sessions[id] = s
	n := len(st.sessions)
	st.mu.Unlock()

	if telemetry.Checkout != nil {
		telemetry.Checkout.SessionsActive.Set(float64(n))
	}
	st.logger.Debug("session created", "session_id", id)
	return s
}

// ResetCheckout discards the session's address form and starts a fresh
// one. The cart is left alone.
func (st *Store) ResetCheckout(s *Session) {
	f, c := st.newCheckout(s.ID)

	s.mu.Lock()
	old := s.controller
	s.form, s.controller = f, c
	s.mu.Unlock()

	old.Close()
}

func (st *Store) newCheckout(id string) (*form.State, *checkout.AddressController) {
	f := form.NewAddressForm()
	c := checkout.NewAddressController(f, st.dir, st.logger.With("session_id", id))
	return f, c
}

// Delete ends a session.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	n := len(st.sessions)
	st.mu.Unlock()

	if !ok {
		return
	}
	_, c := s.Checkout()
	c.Close()

	if telemetry.Checkout != nil {
		telemetry.Checkout.SessionsActive.Set(float64(n))
	}
}

// Len returns the number of sessions held, expired or not.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep removes sessions idle for longer than the TTL and closes their
// controllers. It has the signature of a worker task.
func (st *Store) Sweep(ctx context.Context) error {
	if st.ttl <= 0 {
		return nil
	}
	now := st.now()

	var expired []*Session
	st.mu.Lock()
	for id, s := range st.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastSeen)
		s.mu.Unlock()
		if idle > st.ttl {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	n := len(st.sessions)
	st.mu.Unlock()

	for _, s := range expired {
		_, c := s.Checkout()
		c.Close()
	}

	if telemetry.Checkout != nil {
		telemetry.Checkout.SessionsActive.Set(float64(n))
		telemetry.Checkout.SessionsExpired.Add(float64(len(expired)))
	}
	if len(expired) > 0 {
		st.logger.Info("expired idle sessions", "count", len(expired), "active", n)
	}
	return nil
}

// Close ends every session. Used on shutdown.
func (st *Store) Close() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, s := range sessions {
		_, c := s.Checkout()
		c.Close()
	}
	if telemetry.Checkout != nil {
		telemetry.Checkout.SessionsActive.Set(0)
	}
}
