package tui

import (
	"sync"

	"github.com/harrylevesque/ecoadmin/internal/admin"
)

var _ admin.Navigator = (*Router)(nil)

// Router is the console's screen stack. Flows call it from command
// goroutines, so it is locked.
type Router struct {
	mu     sync.Mutex
	stack  []string
	params map[string]any
}

// NewRouter starts on screen.
func NewRouter(screen string) *Router {
	return &Router{stack: []string{screen}}
}

// NavigateTo pushes screen. Going to Login or the dashboard resets the stack,
// as a replace would.
func (r *Router) NavigateTo(screen string, params map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch screen {
	case admin.ScreenLogin, admin.ScreenDashboard:
		r.stack = []string{screen}
	default:
		r.stack = append(r.stack, screen)
	}
	r.params = params
}

// GoBack pops the current screen, keeping the root.
func (r *Router) GoBack() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stack) > 1 {
		r.stack = r.stack[:len(r.stack)-1]
	}
	r.params = nil
}

// Current returns the active screen and its params.
func (r *Router) Current() (string, map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stack[len(r.stack)-1], r.params
}
