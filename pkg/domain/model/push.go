package model

// PushMessage is a notification delivered to users outside the app
type PushMessage struct {
	TargetUserIDs []string          `json:"targetUserIds"`
	Title         string            `json:"title"`
	Body          string            `json:"body"`
	EventURL      string            `json:"eventUrl,omitempty"`
	Data          map[string]string `json:"data,omitempty"`
}
