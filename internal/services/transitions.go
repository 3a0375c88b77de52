package services

import (
	"farmconnect/internal/identity"
	"farmconnect/internal/models"
	"farmconnect/pkg/apperrors"
)

// authorizeParty checks that actor is the order's party for its role:
// the seller for a farmer and the buyer for a consumer.
func authorizeParty(actor identity.Actor, order *models.Order) error {
	switch a := actor.(type) {
	case identity.Farmer:
		if order.SellerID == a.ID {
			return nil
		}
	case identity.Consumer:
		if order.BuyerID == a.ID {
			return nil
		}
	default:
		return apperrors.New(apperrors.CodeForbidden, "invalid role")
	}
	return apperrors.New(apperrors.CodeUnauthorized, "not authorized for this order")
}

// checkTransition reports whether actor may move order to the target status.
// Authorization is checked before legality.
func checkTransition(actor identity.Actor, order *models.Order, to models.OrderStatus) error {
	if err := authorizeParty(actor, order); err != nil {
		return err
	}

	from := order.Status
	allowed := false
	// Terminal states close the seller's cancel path too: a completed order
	// already has a ledger entry and depleted stock that cancelling would not undo.
	if !from.IsTerminal() {
		switch actor.(type) {
		case identity.Farmer:
			switch {
			case from == models.OrderRequested && to == models.OrderAccepted:
				allowed = true
			case from == models.OrderAccepted && to == models.OrderCompleted:
				allowed = true
			case to == models.OrderCancelled:
				allowed = true
			}
		case identity.Consumer:
			allowed = from == models.OrderRequested && to == models.OrderCancelled
		}
	}
	if !allowed {
		return apperrors.Newf(apperrors.CodeInvalidTransition, "cannot move order from %s to %s", from, to).
			WithDetails(map[string]string{"from": string(from), "to": string(to)})
	}
	return nil
}
