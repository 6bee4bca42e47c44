package services

import (
	"errors"
	"log"
	"sort"
	"sync"

	"quizone/models"
)

// EventOnlineUser carries the sorted list of online user ids.
const (
	EventOnlineUser = "onlineUser"
	EventNewMessage = "newMessage"
)

var ErrRegistryClosed = errors.New("presence registry is shut down")

// Connection is one live realtime session. Emit must not block.
type Connection interface {
	ID() string
	Emit(event string, payload any) error
	Close() error
}

type IdentityResolver interface {
	Resolve(token string) (*models.Identity, error)
}

// Registry tracks which user is reachable through which connection. A user has at
// most one registered connection; a reconnect replaces the previous one.
type Registry struct {
	resolver IdentityResolver

	mu     sync.Mutex
	conns  map[string]Connection // every authenticated connection, by connection id
	users  map[string]string     // user id -> connection id
	closed bool
}

func NewRegistry(resolver IdentityResolver) *Registry {
	return &Registry{
		resolver: resolver,
		conns:    make(map[string]Connection),
		users:    make(map[string]string),
	}
}

// Connect authenticates conn with rawToken. An unresolvable token closes the connection
// and registers nothing.
func (r *Registry) Connect(conn Connection, rawToken string) (*models.Identity, error) {
	if rawToken == "" {
		conn.Close()
		return nil, Unauthorized("No token provided")
	}
	ident, err := r.resolver.Resolve(rawToken)
	if err != nil {
		conn.Close()
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		conn.Close()
		return nil, ErrRegistryClosed
	}
	r.conns[conn.ID()] = conn
	r.users[ident.ID] = conn.ID()
	r.broadcastLocked()

	log.Printf("Presence: user %s connected on %s (%d online)", ident.ID, conn.ID(), len(r.users))
	return ident, nil
}

// Disconnect forgets the connection. The owning user goes offline only when connID is
// still their registered connection.
func (r *Registry) Disconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, connID)

	userID := ""
	for uid, cid := range r.users {
		if cid == connID {
			userID = uid
			break
		}
	}
	if userID == "" {
		return
	}
	delete(r.users, userID)
	r.broadcastLocked()

	log.Printf("Presence: user %s disconnected from %s (%d online)", userID, connID, len(r.users))
}

// SendTo emits to the user's registered connection and reports whether it was handed
// off. Delivery is best effort.
func (r *Registry) SendTo(userID, event string, payload any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[r.users[userID]]
	if !ok {
		return false
	}
	if err := conn.Emit(event, payload); err != nil {
		log.Printf("Presence: emit %s to user %s failed: %v", event, userID, err)
		return false
	}
	return true
}

func (r *Registry) Online() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.onlineLocked()
}

func (r *Registry) OnlineCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// Shutdown closes every connection and rejects later connects.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	for id, conn := range r.conns {
		conn.Close()
		delete(r.conns, id)
	}
	r.users = make(map[string]string)
}

func (r *Registry) onlineLocked() []string {
	ids := make([]string, 0, len(r.users))
	for uid := range r.users {
		ids = append(ids, uid)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) broadcastLocked() {
	online := r.onlineLocked()
	for _, conn := range r.conns {
		if err := conn.Emit(EventOnlineUser, online); err != nil {
			log.Printf("Presence: broadcast to %s failed: %v", conn.ID(), err)
		}
	}
}
