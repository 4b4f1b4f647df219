package badges

import (
	"fmt"

	"github.com/habitloop/habitloop/internal/metrics"
	"github.com/habitloop/habitloop/pkg/logger"
)

// AwardStore persists badge awards. Implementations must be idempotent:
// awarding a badge the user already holds is a no-op.
type AwardStore interface {
	HasBadge(userID uint, badgeID string) (bool, error)
	AwardBadge(userID uint, badgeID, name, rarity string) error
}

// Evaluator runs the catalog against pre/post settlement snapshots.
type Evaluator struct {
	catalog []Badge
	log     *logger.Logger
}

// NewEvaluator creates an evaluator over the canonical catalog.
func NewEvaluator(log *logger.Logger) *Evaluator {
	return &Evaluator{catalog: Catalog, log: log}
}

// NewEvaluatorWithCatalog creates an evaluator over a custom rule table
// (useful for testing).
func NewEvaluatorWithCatalog(catalog []Badge, log *logger.Logger) *Evaluator {
	return &Evaluator{catalog: catalog, log: log}
}

// Evaluate checks every badge the user does not yet hold and awards those
// whose predicate passes. Returns the newly awarded badges. The store is a
// parameter so callers can pass a transaction-bound repository and keep
// awards atomic with the rest of the settlement.
func (e *Evaluator) Evaluate(store AwardStore, userID uint, before, after Snapshot) ([]Badge, error) {
	var earned []Badge

	for _, badge := range e.catalog {
		owned, err := store.HasBadge(userID, badge.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check badge %s: %w", badge.ID, err)
		}
		if owned {
			continue
		}

		if !badge.Qualifies(before, after) {
			continue
		}

		if err := store.AwardBadge(userID, badge.ID, badge.Name, badge.Rarity); err != nil {
			return nil, fmt.Errorf("failed to award badge %s: %w", badge.ID, err)
		}

		metrics.RecordBadgeAwarded(badge.ID)
		e.log.Info().
			Uint("user_id", userID).
			Str("badge", badge.ID).
			Msg("Badge awarded")

		earned = append(earned, badge)
	}

	return earned, nil
}
