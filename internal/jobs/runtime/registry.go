package runtime

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Handler runs one verification job type.
type Handler interface {
	Type() string
	Run(ctx *Context) error
}

// Registry maps job types to handlers. Unknown job types fail permanently in
// the executor, so wiring calls Require before any transport starts.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(h Handler) error {
	if h == nil {
		return fmt.Errorf("nil handler")
	}
	t := strings.TrimSpace(h.Type())
	if t == "" {
		return fmt.Errorf("handler Type() is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[t]; exists {
		return fmt.Errorf("handler already registered for job_type=%s", t)
	}
	r.handlers[t] = h
	return nil
}

func (r *Registry) Get(jobType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[jobType]
	return h, ok
}

// Require reports every listed job type that has no handler.
func (r *Registry) Require(jobTypes ...string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var missing []string
	for _, t := range jobTypes {
		if _, ok := r.handlers[t]; !ok {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("no handler for job_type=%s", strings.Join(missing, ","))
	}
	return nil
}

// Types returns the registered job types in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
