package types

// DraftKey names a locally persisted form draft
type DraftKey string

const (
	DraftKeyProfile      DraftKey = "profileDraft"
	DraftKeyEventRequest DraftKey = "eventRequestDraft"
)

// IsValid checks if the draft key is one of the fixed keys
func (k DraftKey) IsValid() bool {
	return k == DraftKeyProfile || k == DraftKeyEventRequest
}

// String returns the string representation of the draft key
func (k DraftKey) String() string {
	return string(k)
}
