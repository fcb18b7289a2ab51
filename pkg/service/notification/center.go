package notification

import (
	"slices"
	"sync"
	"time"

	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
)

// ChangeKind tells subscribers what happened to a notification
type ChangeKind string

const (
	ChangeAdded     ChangeKind = "added"
	ChangeDismissed ChangeKind = "dismissed"
)

// Change is delivered to subscribers for every addition and dismissal
type Change struct {
	Kind         ChangeKind
	Notification model.Notification
}

// Listener receives notification changes
type Listener func(change Change)

// Center holds the active notifications and dismisses timed ones automatically
type Center struct {
	mu              sync.Mutex
	items           []*model.Notification
	timers          map[string]*time.Timer
	defaultDuration time.Duration
	now             func() time.Time

	listenerMu sync.RWMutex
	listeners  map[int]Listener
	nextID     int
}

// Option configures a Center
type Option func(*Center)

// WithDefaultDuration sets the lifetime of notifications that do not set one
func WithDefaultDuration(d time.Duration) Option {
	return func(c *Center) {
		c.defaultDuration = d
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *Center) {
		c.now = now
	}
}

// New creates an empty Center
func New(opts ...Option) *Center {
	c := &Center{
		timers:          make(map[string]*time.Timer),
		defaultDuration: model.DefaultNotificationDuration,
		now:             time.Now,
		listeners:       make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add shows a notification and returns its ID. A nil Duration gets the default lifetime;
// a zero Duration keeps it until Dismiss is called.
func (c *Center) Add(n model.Notification) string {
	if n.ID == "" {
		n.ID = model.NewNotificationID()
	}
	if !n.Type.IsValid() {
		n.Type = types.NotificationInfo
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = c.now().UTC()
	}
	lifetime := c.defaultDuration
	if n.Duration != nil {
		lifetime = *n.Duration
	}
	n.Duration = &lifetime

	c.mu.Lock()
	stored := n
	c.items = append(c.items, &stored)
	if lifetime > 0 {
		id := n.ID
		c.timers[id] = time.AfterFunc(lifetime, func() {
			c.Dismiss(id)
		})
	}
	c.mu.Unlock()

	c.notify(Change{Kind: ChangeAdded, Notification: copyNotification(&stored)})
	return n.ID
}

// Success shows a success notification with the default lifetime
func (c *Center) Success(title, message string) string {
	return c.Add(model.Notification{Type: types.NotificationSuccess, Title: title, Message: message})
}

// Error shows an error notification with the default lifetime
func (c *Center) Error(title, message string) string {
	return c.Add(model.Notification{Type: types.NotificationError, Title: title, Message: message})
}

// Info shows an info notification with the default lifetime
func (c *Center) Info(title, message string) string {
	return c.Add(model.Notification{Type: types.NotificationInfo, Title: title, Message: message})
}

// Warning shows a warning notification with the default lifetime
func (c *Center) Warning(title, message string) string {
	return c.Add(model.Notification{Type: types.NotificationWarning, Title: title, Message: message})
}

// Dismiss removes a notification and reports whether it was present
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	idx := slices.IndexFunc(c.items, func(n *model.Notification) bool { return n.ID == id })
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	removed := c.items[idx]
	c.items = slices.Delete(c.items, idx, idx+1)
	if timer, ok := c.timers[id]; ok {
		timer.Stop()
		delete(c.timers, id)
	}
	c.mu.Unlock()

	c.notify(Change{Kind: ChangeDismissed, Notification: copyNotification(removed)})
	return true
}

// Clear dismisses every notification
func (c *Center) Clear() {
	for _, n := range c.List() {
		c.Dismiss(n.ID)
	}
}

// List returns the active notifications, oldest first
func (c *Center) List() []model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.Notification, len(c.items))
	for i, n := range c.items {
		out[i] = copyNotification(n)
	}
	return out
}

// Subscribe registers fn for changes. The returned function unregisters it.
func (c *Center) Subscribe(fn Listener) func() {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	return func() {
		c.listenerMu.Lock()
		defer c.listenerMu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Center) notify(change Change) {
	c.listenerMu.RLock()
	defer c.listenerMu.RUnlock()
	for _, fn := range c.listeners {
		fn(change)
	}
}

func copyNotification(n *model.Notification) model.Notification {
	cp := *n
	if n.Duration != nil {
		d := *n.Duration
		cp.Duration = &d
	}
	return cp
}
