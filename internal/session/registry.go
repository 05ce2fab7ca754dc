package session

import "sync"

// Registry tracks the running session of each student so a second
// connection cannot start a parallel attempt.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Runner
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Runner)}
}

// Acquire registers r for subjectID. It returns false if the student
// already has a session.
func (reg *Registry) Acquire(subjectID string, r *Runner) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, ok := reg.sessions[subjectID]; ok {
		return false
	}
	reg.sessions[subjectID] = r
	return true
}

// Release removes the entry for subjectID if it still belongs to r.
func (reg *Registry) Release(subjectID string, r *Runner) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if cur, ok := reg.sessions[subjectID]; ok && cur == r {
		delete(reg.sessions, subjectID)
	}
}

// Get returns the running session of subjectID.
func (reg *Registry) Get(subjectID string) (*Runner, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.sessions[subjectID]
	return r, ok
}

// Len reports the number of running sessions.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.sessions)
}
