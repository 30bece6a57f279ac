package services

import (
	"fmt"

	"github.com/b2bquote/rfq-service/internal/models"
)

// ensureRFQTransition проверяет переход RFQ по таблице статусов перед записью.
func ensureRFQTransition(from, to models.RFQStatus) error {
	if !models.CanTransitionRFQ(from, to) {
		return models.NewInvalidState(fmt.Sprintf("rfq cannot move from %s to %s", from, to))
	}
	return nil
}

// ensureOfferTransition проверяет переход предложения по таблице статусов.
func ensureOfferTransition(from, to models.OfferStatus) error {
	if !models.CanTransitionOffer(from, to) {
		return models.NewInvalidState(fmt.Sprintf("offer cannot move from %s to %s", from, to))
	}
	return nil
}
