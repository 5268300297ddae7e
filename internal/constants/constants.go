package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	DefaultInputTopic  = "push_messages"
	DefaultOutputTopic = "rendered_notifications"
	DefaultCancelTopic = "notification_cancels"
)

// DefaultNotificationColor is the process-wide fallback used when a color
// token is absent or unparseable. Opaque teal, ARGB.
const DefaultNotificationColor = 0xFF008577

const (
	CacheKeySoundEnabled = "prefs:sound_enabled"
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	MaxImageBytes = 8 << 20
)
