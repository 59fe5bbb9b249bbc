package live_check

import "sync/atomic"

// ChatSession is the runtime state for one chat. Sessions are created when a
// chat is first seen (startup enumeration or first command) and live for the
// process lifetime.
type ChatSession struct {
	ChatID int64

	// updating guards the reconciliation single-flight: a chat mid-refresh
	// is skipped by the loop and reports locked to forced callers.
	updating int32
}

func newChatSession(chatID int64) *ChatSession {
	return &ChatSession{
		ChatID: chatID,
	}
}

// TryLock acquires the refresh guard. It never blocks; false means a refresh
// is already in flight.
func (s *ChatSession) TryLock() bool {
	return atomic.CompareAndSwapInt32(&s.updating, 0, 1)
}

func (s *ChatSession) Unlock() {
	atomic.StoreInt32(&s.updating, 0)
}

// Updating reports whether a refresh is currently in flight.
func (s *ChatSession) Updating() bool {
	return atomic.LoadInt32(&s.updating) == 1
}
