package commands

import (
	"fmt"
	"strconv"

	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

func exhaustedMessage(o *order.Order, attemptsMade int) ports.Message {
	return ports.Message{
		Title: "No courier available",
		Body: fmt.Sprintf("Order %s from %s found no courier after %d attempts.",
			o.ID(), o.Pickup().Line(), attemptsMade),
		Data: map[string]string{
			"type":        "order_exhausted",
			"order_id":    o.ID().String(),
			"customer_id": o.CustomerID().String(),
			"attempts":    strconv.Itoa(attemptsMade),
			"price":       strconv.FormatInt(o.Price(), 10),
			"status":      order.NoCourierAvailable.String(),
		},
	}
}

func orderCancelledMessage(of *offer.Offer) ports.Message {
	return ports.Message{
		Title: "Offer withdrawn",
		Body:  "The customer cancelled this order.",
		Data: map[string]string{
			"type":     "offer_cancelled",
			"offer_id": of.ID().String(),
			"order_id": of.OrderID().String(),
		},
	}
}

func batchAssignedMessage(o *order.Order, b *batch.Batch, sequence int) ports.Message {
	return ports.Message{
		Title: "Courier assigned",
		Body:  fmt.Sprintf("Your order is stop %d of %d on a courier route.", sequence, b.Size()),
		Data: map[string]string{
			"type":       "order_accepted",
			"order_id":   o.ID().String(),
			"courier_id": b.CourierID().String(),
			"batch_id":   b.ID().String(),
			"sequence":   strconv.Itoa(sequence),
			"status":     order.Accepted.String(),
		},
	}
}

func batchWithdrawnMessage(of *offer.Offer) ports.Message {
	return ports.Message{
		Title: "Offer no longer available",
		Body:  "The order was assigned as part of a batch.",
		Data: map[string]string{
			"type":     "offer_superseded",
			"offer_id": of.ID().String(),
			"order_id": of.OrderID().String(),
		},
	}
}
