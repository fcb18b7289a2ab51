package model

import (
	"encoding/json"
	"time"

	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/types"
)

// Draft is an unfinished form saved locally under a fixed key
type Draft struct {
	Key     types.DraftKey
	Data    json.RawMessage
	SavedAt time.Time
}
