// Package content provides the storefront repositories for products,
// content entries and website settings.
package content

import (
	"github.com/AtRiskMedia/storefront-go/internal/domain/events"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
)

// publishChange emits a change event after a committed write. Marshal
// failures are logged; the write itself already succeeded.
func publishChange[T any](pub messaging.Publisher, logger *logging.ChanneledLogger, table events.Table, kind events.Kind, newRow, oldRow *T) {
	if pub == nil {
		return
	}
	evt, err := events.NewChangeEvent(table, kind, newRow, oldRow)
	if err != nil {
		logger.Realtime().Error("Failed to build change event", "error", err.Error(), "table", table, "kind", kind)
		return
	}
	pub.Publish(evt)
}
