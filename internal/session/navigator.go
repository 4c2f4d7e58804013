package session

import "sync"

// Navigator moves the view layer between routes.
type Navigator interface {
	Navigate(route string)
}

// RouteRecorder is a Navigator that remembers where it was sent.
type RouteRecorder struct {
	mu      sync.Mutex
	current string
	history []string
}

func (r *RouteRecorder) Navigate(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = route
	r.history = append(r.history, route)
}

// Current is the last route navigated to.
func (r *RouteRecorder) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *RouteRecorder) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}
