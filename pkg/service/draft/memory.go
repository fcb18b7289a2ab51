package draft

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
)

type memoryKey struct {
	userID string
	key    types.DraftKey
}

// Memory keeps drafts in process memory
type Memory struct {
	mu     sync.RWMutex
	drafts map[memoryKey]*model.Draft
}

var _ Store = &Memory{}

// NewMemory creates an empty in-memory draft store
func NewMemory() *Memory {
	return &Memory{
		drafts: make(map[memoryKey]*model.Draft),
	}
}

func (m *Memory) Save(ctx context.Context, userID string, key types.DraftKey, data []byte) (*model.Draft, error) {
	if err := validate(userID, key, data); err != nil {
		return nil, err
	}

	d := &model.Draft{
		Key:     key,
		Data:    append([]byte(nil), data...),
		SavedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[memoryKey{userID, key}] = d
	return copyDraft(d), nil
}

func (m *Memory) Load(ctx context.Context, userID string, key types.DraftKey) (*model.Draft, error) {
	if err := validateKey(userID, key); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drafts[memoryKey{userID, key}]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "draft not found", goerr.V("key", key))
	}
	return copyDraft(d), nil
}

func (m *Memory) Delete(ctx context.Context, userID string, key types.DraftKey) error {
	if err := validateKey(userID, key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, memoryKey{userID, key})
	return nil
}

func (m *Memory) Close() error {
	return nil
}

func copyDraft(d *model.Draft) *model.Draft {
	c := *d
	c.Data = append([]byte(nil), d.Data...)
	return &c
}
