// Package notify carries affected-user sets from catalog/delivery cascades to
// whatever messaging system the deployment uses. The core services only ever
// return user ids; delivery of actual messages happens outside this service.
package notify

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Notifier interface {
	OrdersChanged(ctx context.Context, userIDs []uuid.UUID, reason string)
}

// LogNotifier records the affected users; a real deployment swaps in an
// email-backed implementation.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) OrdersChanged(ctx context.Context, userIDs []uuid.UUID, reason string) {
	if len(userIDs) == 0 {
		return
	}
	log.Info().
		Int("affected_users", len(userIDs)).
		Str("reason", reason).
		Msg("orders changed, notification requested")
}
