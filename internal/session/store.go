package session

import "sync"

// View is the screen a chat is looking at.
type View string

const (
	ViewWeek   View = "week"
	ViewWorker View = "worker"
	ViewYear   View = "year"
)

// Session is what one chat has selected. Every call reads the values it
// needs from here explicitly; nothing is kept in globals.
type Session struct {
	WorkplaceID uint
	WeekID      uint
	Year        int
	WorkerID    uint
	WorkerPage  int
	View        View

	// Generation changes whenever the chat navigates. Responses started under
	// an older generation belong to a view that is no longer shown.
	Generation uint64
}

func (s Session) location() Session {
	s.Generation = 0
	return s
}

// Store keeps one Session per chat.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// Get returns a copy of the chat's session, or the zero Session.
func (s *Store) Get(key int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[key]; ok {
		return *sess
	}
	return Session{}
}

// Update applies fn to the chat's session and returns the result. The
// generation is bumped when fn changes what the chat is looking at.
func (s *Store) Update(key int64, fn func(*Session)) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok {
		sess = &Session{}
		s.sessions[key] = sess
	}

	gen := sess.Generation
	before := sess.location()
	fn(sess)
	sess.Generation = gen
	if sess.location() != before {
		sess.Generation++
	}
	return *sess
}

func (s *Store) Generation(key int64) uint64 {
	return s.Get(key).Generation
}
