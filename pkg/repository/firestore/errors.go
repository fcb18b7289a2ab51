package firestore

import "github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/interfaces"

// ErrNotFound is returned when a requested document does not exist
var ErrNotFound = interfaces.ErrNotFound
