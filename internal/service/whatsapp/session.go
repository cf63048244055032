package whatsapp

import (
	"sync"

	"github.com/mamadbah2/mandi/internal/domain/models"
)

// Session remembers what a sender last asked about.
type Session struct {
	LastCrop     string
	LastLocation string
}

// SessionManager handles per-sender conversation state.
type SessionManager struct {
	sessions map[string]Session
	mu       sync.RWMutex
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]Session),
	}
}

// GetSession retrieves the current state for a sender.
func (sm *SessionManager) GetSession(sender string) Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[sender]
}

// Remember records the arguments of a command so a bare repeat reuses them.
func (sm *SessionManager) Remember(sender string, cmd models.Command) {
	if len(cmd.Args) == 0 {
		return
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	state := sm.sessions[sender]
	switch cmd.Type {
	case models.CommandPrices:
		state.LastCrop = joinArgs(cmd.Args)
	case models.CommandMarkets:
		state.LastLocation = joinArgs(cmd.Args)
	default:
		return
	}
	sm.sessions[sender] = state
}

// Complete fills in missing arguments from the sender's previous queries.
func (sm *SessionManager) Complete(sender string, cmd models.Command) models.Command {
	if len(cmd.Args) > 0 {
		return cmd
	}

	state := sm.GetSession(sender)
	switch {
	case cmd.Type == models.CommandPrices && state.LastCrop != "":
		cmd.Args = splitArgs(state.LastCrop)
	case cmd.Type == models.CommandMarkets && state.LastLocation != "":
		cmd.Args = splitArgs(state.LastLocation)
	}
	return cmd
}

// ClearSession removes a sender's session.
func (sm *SessionManager) ClearSession(sender string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, sender)
}
