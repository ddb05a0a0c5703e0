package services

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/renato0307/duet/internal/adapters/protocol"
	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/ports"
)

// handle is the registry entry of one live process.
// It is owned by the Registry; only the manager's monitor removes it.
type handle struct {
	acp     *protocol.ACPClient
	decoder *protocol.Decoder
	desc    *domain.AgentDescriptor
	exited  chan struct{}
	key     domain.ProcessKey

	mu            sync.Mutex
	info          domain.ProcessInfo
	killRequested bool
	killing       bool
	proc          ports.Process
}

func newHandle(key domain.ProcessKey, desc *domain.AgentDescriptor, info domain.ProcessInfo) *handle {
	info.SessionID = key.SessionID
	info.Role = key.Role
	info.State = domain.ProcessStarting
	return &handle{
		desc:   desc,
		exited: make(chan struct{}),
		info:   info,
		key:    key,
	}
}

// attach binds the launched process and moves the handle to running.
// It reports whether a kill arrived while the process was starting.
func (h *handle) attach(proc ports.Process, startedAt time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.proc = proc
	h.info.PID = proc.PID()
	h.info.Mode = proc.Mode()
	h.info.StartedAt = startedAt
	h.info.State = domain.ProcessRunning
	return h.killRequested
}

func (h *handle) process() (ports.Process, domain.ProcessState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.proc, h.info.State
}

func (h *handle) snapshot() domain.ProcessInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	info := h.info
	info.Args = slices.Clone(h.info.Args)
	return info
}

func (h *handle) markExited() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.info.State = domain.ProcessExited
}

func (h *handle) hasExited() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.info.State == domain.ProcessExited
}

// Registry maps process keys to live handles.
// Every membership change goes through the injected guard.
type Registry struct {
	entries map[domain.ProcessKey]*handle
	mu      sync.Locker
}

// NewRegistry creates an empty registry guarded by a mutex
func NewRegistry() *Registry {
	return NewRegistryWithLocker(&sync.Mutex{})
}

// NewRegistryWithLocker creates an empty registry guarded by the given locker
func NewRegistryWithLocker(l sync.Locker) *Registry {
	return &Registry{
		entries: make(map[domain.ProcessKey]*handle),
		mu:      l,
	}
}

// insert claims the key; it fails if another handle holds it
func (r *Registry) insert(h *handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[h.key]; ok {
		return ports.ErrProcessExists
	}
	r.entries[h.key] = h
	return nil
}

// remove deletes the entry only if it still holds this exact handle
func (r *Registry) remove(h *handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.entries[h.key]; ok && cur == h {
		delete(r.entries, h.key)
		return true
	}
	return false
}

func (r *Registry) lookup(key domain.ProcessKey) (*handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.entries[key]
	return h, ok
}

// lookupSession returns the handles of both roles of a session
func (r *Registry) lookupSession(sessionID string) []*handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*handle
	for _, role := range domain.Roles {
		if h, ok := r.entries[domain.ProcessKey{SessionID: sessionID, Role: role}]; ok {
			out = append(out, h)
		}
	}
	return out
}

func (r *Registry) all() []*handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*handle, 0, len(r.entries))
	for _, h := range r.entries {
		out = append(out, h)
	}
	return out
}

// Len returns the number of registered processes
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Snapshot returns the metadata of every process that has not exited,
// sorted by session id and then role. Exited handles whose output is
// still draining are left out.
func (r *Registry) Snapshot() []domain.ProcessInfo {
	handles := r.all()
	infos := make([]domain.ProcessInfo, 0, len(handles))
	for _, h := range handles {
		if info := h.snapshot(); info.State != domain.ProcessExited {
			infos = append(infos, info)
		}
	}
	slices.SortFunc(infos, func(a, b domain.ProcessInfo) int {
		if c := strings.Compare(a.SessionID, b.SessionID); c != 0 {
			return c
		}
		return strings.Compare(string(a.Role), string(b.Role))
	})
	return infos
}
