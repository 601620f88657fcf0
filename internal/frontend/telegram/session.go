package telegram

import (
	"sync"

	"github.com/vadimtrunov/marquee/internal/catalog"
)

// sessionManager manages per-chat load trackers and access control.
type sessionManager struct {
	mu       sync.Mutex
	trackers map[int64]*catalog.Tracker
	allowed  map[int64]bool // nil or empty = allow all
}

// newSessionManager creates a session manager.
// If allowedUserIDs is empty, all users are allowed.
func newSessionManager(allowedUserIDs []int64) *sessionManager {
	allowed := make(map[int64]bool, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = true
	}
	return &sessionManager{
		trackers: make(map[int64]*catalog.Tracker),
		allowed:  allowed,
	}
}

// isAllowed checks if a user is authorized to use the bot.
func (sm *sessionManager) isAllowed(userID int64) bool {
	if len(sm.allowed) == 0 {
		return true
	}
	return sm.allowed[userID]
}

// tracker returns the chat's tracker, creating it on first use. A chat
// shows one view at a time, so a new load supersedes the previous one.
func (sm *sessionManager) tracker(chatID int64) *catalog.Tracker {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	t, ok := sm.trackers[chatID]
	if !ok {
		t = &catalog.Tracker{}
		sm.trackers[chatID] = t
	}
	return t
}

// reset cancels the chat's in-flight load and forgets its tracker.
func (sm *sessionManager) reset(chatID int64) {
	sm.mu.Lock()
	t, ok := sm.trackers[chatID]
	delete(sm.trackers, chatID)
	sm.mu.Unlock()
	if ok {
		t.Stop()
	}
}

// stopAll cancels every in-flight load.
func (sm *sessionManager) stopAll() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for id, t := range sm.trackers {
		t.Stop()
		delete(sm.trackers, id)
	}
}
