package network

import (
	"context"
	"sync"
	"time"

	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/async"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
)

// DefaultSettleDelay is how long a connection must stay up before reconnect work starts
const DefaultSettleDelay = time.Second

// ReconnectHandler runs once the connection has settled after an Offline to Online transition
type ReconnectHandler func(ctx context.Context) error

// Listener receives the status after every transition
type Listener func(status model.NetworkStatus)

// Monitor tracks connectivity as reported by the client. It does not probe the network.
type Monitor struct {
	mu          sync.Mutex
	status      model.NetworkStatus
	settleDelay time.Duration
	onReconnect ReconnectHandler
	timer       *time.Timer
	now         func() time.Time

	listenerMu sync.RWMutex
	listeners  map[int]Listener
	nextID     int
}

// Option configures a Monitor
type Option func(*Monitor)

// WithSettleDelay sets the delay between coming online and running the reconnect handler
func WithSettleDelay(d time.Duration) Option {
	return func(m *Monitor) {
		if d >= 0 {
			m.settleDelay = d
		}
	}
}

// WithReconnectHandler sets the handler run after reconnecting
func WithReconnectHandler(h ReconnectHandler) Option {
	return func(m *Monitor) {
		m.onReconnect = h
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// WithInitialOffline starts the monitor in the offline state
func WithInitialOffline() Option {
	return func(m *Monitor) {
		m.status.Online = false
	}
}

// New creates a Monitor that starts online
func New(opts ...Option) *Monitor {
	m := &Monitor{
		status:      model.NetworkStatus{Online: true},
		settleDelay: DefaultSettleDelay,
		now:         time.Now,
		listeners:   make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.status.LastChecked = m.now().UTC()
	return m
}

// OnReconnect replaces the reconnect handler
func (m *Monitor) OnReconnect(h ReconnectHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReconnect = h
}

// SetOnline records that the client is online. On an Offline to Online transition the
// reconnect counter is incremented and the reconnect handler is scheduled after the
// settle delay. Repeated reports only refresh LastChecked.
func (m *Monitor) SetOnline(ctx context.Context) {
	m.mu.Lock()
	now := m.now().UTC()
	m.status.LastChecked = now
	if m.status.Online {
		m.mu.Unlock()
		return
	}

	m.status.Online = true
	m.status.LastOnline = &now
	m.status.ReconnectAttempts++
	attempts := m.status.ReconnectAttempts
	m.scheduleLocked(ctx)
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	logging.From(ctx).Info("network online", "reconnect_attempts", attempts)
	m.notify(snapshot)
}

// SetOffline records that the client is offline and cancels a pending reconnect
func (m *Monitor) SetOffline(ctx context.Context) {
	m.mu.Lock()
	now := m.now().UTC()
	m.status.LastChecked = now
	if !m.status.Online {
		m.mu.Unlock()
		return
	}

	m.status.Online = false
	m.status.LastOffline = &now
	m.stopTimerLocked()
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	logging.From(ctx).Info("network offline")
	m.notify(snapshot)
}

func (m *Monitor) scheduleLocked(ctx context.Context) {
	m.stopTimerLocked()
	if m.onReconnect == nil {
		return
	}

	handler := m.onReconnect
	var timer *time.Timer
	timer = time.AfterFunc(m.settleDelay, func() {
		m.mu.Lock()
		current := m.timer == timer && m.status.Online
		if current {
			m.timer = nil
		}
		m.mu.Unlock()
		if !current {
			return
		}
		async.Dispatch(ctx, handler)
	})
	m.timer = timer
}

func (m *Monitor) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// Stop cancels a pending reconnect
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTimerLocked()
}

// Status returns a copy of the current status
func (m *Monitor) Status() model.NetworkStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// IsOnline reports the current connectivity state
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status.Online
}

func (m *Monitor) snapshotLocked() model.NetworkStatus {
	s := m.status
	if s.LastOnline != nil {
		t := *s.LastOnline
		s.LastOnline = &t
	}
	if s.LastOffline != nil {
		t := *s.LastOffline
		s.LastOffline = &t
	}
	return s
}

// Subscribe registers fn for status transitions. The returned function unregisters it.
func (m *Monitor) Subscribe(fn Listener) func() {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	return func() {
		m.listenerMu.Lock()
		defer m.listenerMu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Monitor) notify(status model.NetworkStatus) {
	m.listenerMu.RLock()
	defer m.listenerMu.RUnlock()
	for _, fn := range m.listeners {
		fn(status)
	}
}
