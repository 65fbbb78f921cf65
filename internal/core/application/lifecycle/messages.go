package lifecycle

import (
	"fmt"
	"strconv"
	"time"

	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

func offerMessage(o *order.Order, of *offer.Offer) ports.Message {
	return ports.Message{
		Title: "New delivery offer",
		Body: fmt.Sprintf("Pickup %s, %.1f km away. Respond within %s.",
			o.Pickup().Line(), of.DistanceToPickupKm(), of.ExpiresAt().Sub(of.OfferedAt()).Round(time.Second)),
		Data: map[string]string{
			"type":       "offer_created",
			"offer_id":   of.ID().String(),
			"order_id":   o.ID().String(),
			"attempt":    strconv.Itoa(of.Attempt()),
			"expires_at": of.ExpiresAt().UTC().Format(time.RFC3339),
		},
	}
}

func acceptedMessage(o *order.Order, of *offer.Offer) ports.Message {
	return ports.Message{
		Title: "Courier assigned",
		Body:  "A courier accepted your order and is heading to the pickup.",
		Data: map[string]string{
			"type":       "order_accepted",
			"order_id":   o.ID().String(),
			"courier_id": of.CourierID().String(),
			"status":     o.Status().String(),
		},
	}
}

func withdrawnMessage(of *offer.Offer) ports.Message {
	return ports.Message{
		Title: "Offer no longer available",
		Body:  "Another courier took this order.",
		Data: map[string]string{
			"type":     "offer_superseded",
			"offer_id": of.ID().String(),
			"order_id": of.OrderID().String(),
		},
	}
}
