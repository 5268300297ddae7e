package models

// Well-known keys of the inbound push message data map.
const (
	KeyType         = "type"
	KeyID           = "id"
	KeyTitle        = "title"
	KeyMessage      = "message"
	KeyColor        = "color"
	KeyDeeplink     = "deeplink"
	KeyTemplate     = "template"
	KeyImage        = "image"
	KeyConversation = "conversation"
	KeyLines        = "lines"
	KeyButtons      = "buttons"
)

// PushMessage is the raw external input: a flat string-to-string data map
// as delivered by the push transport. Every value is optional and
// untrusted; absence is an expected state, not an error.
type PushMessage struct {
	TraceID string            `json:"trace_id,omitempty"`
	Data    map[string]string `json:"data"`
}

// Get returns the value for key and whether it was present.
func (m PushMessage) Get(key string) (string, bool) {
	v, ok := m.Data[key]
	return v, ok
}

// GetOr returns the value for key, or fallback when absent.
func (m PushMessage) GetOr(key, fallback string) string {
	if v, ok := m.Data[key]; ok {
		return v
	}
	return fallback
}
