// Package session holds the explicitly-owned application context that the
// ledger service and mutation coordinator receive at construction. It
// replaces ambient process-wide state with an owned value and an explicit
// serialize/restore boundary.
package session

import (
	"encoding/json"
	"sync"

	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"
)

// Preferences are the user-scoped settings that survive restarts.
type Preferences struct {
	DefaultTxType    string `json:"default_tx_type,omitempty"`
	DefaultProductID string `json:"default_product_id,omitempty"`
}

type snapshot struct {
	Username    string      `json:"username"`
	Role        string      `json:"role"`
	Preferences Preferences `json:"preferences"`
}

type Context struct {
	mu    sync.RWMutex
	actor domain.Actor
	prefs Preferences
}

func New(actor domain.Actor) *Context {
	return &Context{actor: actor}
}

func (c *Context) Actor() domain.Actor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.actor
}

func (c *Context) SetActor(actor domain.Actor) {
	c.mu.Lock()
	c.actor = actor
	c.mu.Unlock()
}

func (c *Context) Preferences() Preferences {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prefs
}

func (c *Context) SetPreferences(p Preferences) {
	c.mu.Lock()
	c.prefs = p
	c.mu.Unlock()
}

// Snapshot serializes the context for persistence by the embedder.
func (c *Context) Snapshot() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return json.Marshal(snapshot{
		Username:    c.actor.Username,
		Role:        c.actor.Role,
		Preferences: c.prefs,
	})
}

// Restore replaces the context's state from a prior Snapshot.
func (c *Context) Restore(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	c.mu.Lock()
	c.actor = domain.Actor{Username: snap.Username, Role: snap.Role}
	c.prefs = snap.Preferences
	c.mu.Unlock()
	return nil
}
