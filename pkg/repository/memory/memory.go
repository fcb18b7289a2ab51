package memory

import (
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	event *eventRepository
	xp    *xpRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	eventRepo := newEventRepository()
	xpRepo := newXpRepository(eventRepo)

	return &Memory{
		event: eventRepo,
		xp:    xpRepo,
	}
}

func (m *Memory) Event() interfaces.EventRepository {
	return m.event
}

func (m *Memory) Xp() interfaces.XpRepository {
	return m.xp
}

func (m *Memory) Close() error {
	return nil
}
