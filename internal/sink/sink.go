// Package sink is the display boundary: everything downstream of a fully
// resolved notification. Displays sharing a notification id overwrite
// each other; cancel removes whatever is currently shown under the id.
package sink

import (
	"context"

	"pushrender/pkg/models"
)

type Sink interface {
	Display(ctx context.Context, n models.Notification) error
	Cancel(ctx context.Context, id models.NotificationID) error
}
