package memory

import "github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/interfaces"

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = interfaces.ErrNotFound
