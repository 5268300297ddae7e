package models

// NotificationID identifies one logical notification across its lifecycle
// (display, overwrite, cancel). Stable per message; displays sharing an ID
// overwrite each other at the sink.
type NotificationID int32

// Color is a resolved ARGB color value. It always carries a concrete
// value; token parse failures resolve to a default upstream.
type Color uint32

// ConversationMessage is one entry of a conversation-style notification.
// The sender is modeled purely by display name.
type ConversationMessage struct {
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	Sender    string `json:"sender"`
}

// ButtonSpec is one parsed action-button entry: a label and the deeplink
// it should open.
type ButtonSpec struct {
	Label    string `json:"text"`
	Deeplink string `json:"deeplink"`
}

// ActionHandle is the opaque result of deeplink resolution, attached to a
// notification's tap target or action buttons.
type ActionHandle struct {
	URI string `json:"uri"`
}

// ActionButton is a resolved, clickable action attached to a notification.
type ActionButton struct {
	Label  string       `json:"label"`
	Action ActionHandle `json:"action"`
}

// Bitmap is decoded image data fetched for a large-image notification.
type Bitmap struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// Style is the closed set of visual layouts a notification can use.
// Exactly one variant is attached to a Notification; each carries only the
// data its layout needs.
type Style interface {
	StyleName() string
	isStyle()
}

type DefaultStyle struct{}

type BigTextStyle struct {
	Body string
}

type LargeImageStyle struct {
	Image Bitmap
}

type ConversationStyle struct {
	Messages []ConversationMessage
}

type InboxStyle struct {
	Lines []string
}

func (DefaultStyle) StyleName() string      { return "default" }
func (BigTextStyle) StyleName() string      { return "big_text" }
func (LargeImageStyle) StyleName() string   { return "large_image" }
func (ConversationStyle) StyleName() string { return "conversation" }
func (InboxStyle) StyleName() string        { return "inbox" }

func (DefaultStyle) isStyle()      {}
func (BigTextStyle) isStyle()      {}
func (LargeImageStyle) isStyle()   {}
func (ConversationStyle) isStyle() {}
func (InboxStyle) isStyle()        {}

// Notification is the normalized, template-agnostic description of one
// displayable notification. Constructed fresh per inbound message and
// never mutated after it reaches the sink.
type Notification struct {
	ID            NotificationID
	Title         string
	Body          string
	Color         Color
	Sound         bool
	ContentAction *ActionHandle
	Style         Style
	Actions       []ActionButton
}
