package telegram

import "sync"

// Conversation states for the guided flows (table creation, field editing).
const (
	StateNone        = ""
	StateCreateGame  = "create_game"
	StateCreateName  = "create_name"
	StateCreateMax   = "create_max_players"
	StateCreateDesc  = "create_description"
	StateCreateImage = "create_image"
	StateCreateNum   = "create_num_sessions"
	StateEditValue   = "edit_value"
)

// Draft accumulates the answers of a table creation conversation.
type Draft struct {
	Type        string
	Game        string
	Name        string
	MaxPlayers  int
	Description string
	Image       string
	NumSessions *int
}

type UserState struct {
	State     string
	Draft     *Draft
	TableID   uint   // target of an edit flow
	EditField string // description or max_players
}

type StateManager struct {
	mu    sync.RWMutex
	users map[int64]*UserState
}

func NewStateManager() *StateManager {
	return &StateManager{
		users: make(map[int64]*UserState),
	}
}

func (m *StateManager) Get(userID int64) *UserState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.users[userID]
	if !ok {
		return &UserState{}
	}
	cp := *s
	return &cp
}

func (m *StateManager) Set(userID int64, state *UserState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID] = state
}

func (m *StateManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, userID)
}
