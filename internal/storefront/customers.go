package storefront

import (
	"crypto/subtle"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var ErrEmailRegistered = errors.New("e-mail address is already registered")

// Customer is a registered storefront account.
type Customer struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Telephone string
	password  string
}

// CustomerStore keeps accounts in memory, keyed by lower-cased e-mail.
type CustomerStore struct {
	mu        sync.RWMutex
	customers map[string]*Customer
}

func NewCustomerStore() *CustomerStore {
	return &CustomerStore{customers: map[string]*Customer{}}
}

// Register adds a customer and assigns its ID.
func (s *CustomerStore) Register(c Customer, password string) (*Customer, error) {
	key := strings.ToLower(c.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[key]; ok {
		return nil, ErrEmailRegistered
	}
	c.ID = uuid.NewString()
	c.password = password
	s.customers[key] = &c
	return &c, nil
}

func (s *CustomerStore) Exists(email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.customers[strings.ToLower(email)]
	return ok
}

// Authenticate returns the customer matching the credentials.
func (s *CustomerStore) Authenticate(email, password string) (*Customer, bool) {
	s.mu.RLock()
	c, ok := s.customers[strings.ToLower(email)]
	s.mu.RUnlock()
	if !ok || subtle.ConstantTimeCompare([]byte(c.password), []byte(password)) != 1 {
		return nil, false
	}
	return c, true
}

// SessionStore maps session tokens to customer IDs.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Customer
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]*Customer{}}
}

// Start opens a session for c and returns its token.
func (s *SessionStore) Start(c *Customer) string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = c
	return token
}

func (s *SessionStore) Customer(token string) (*Customer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[token]
	return c, ok
}

func (s *SessionStore) End(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}
