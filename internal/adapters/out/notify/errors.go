// Package notify delivers dispatch notifications: push messages to couriers and
// customers through Firebase Cloud Messaging, e-mail to operators through SES.
package notify

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
)

var ErrDeliveryFailed = errors.New("notification not delivered")

// DeliveryError reports a message a channel could not hand over. Callers log it
// and carry on.
type DeliveryError struct {
	Channel string
	UserID  kernel.UUID
	Cause   error
}

func NewDeliveryError(channel string, userID kernel.UUID, cause error) *DeliveryError {
	return &DeliveryError{
		Channel: channel,
		UserID:  userID,
		Cause:   cause,
	}
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s: %s to %s: %v", ErrDeliveryFailed, e.Channel, e.UserID.String(), e.Cause)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is.
func (e *DeliveryError) Unwrap() []error {
	return []error{ErrDeliveryFailed, e.Cause}
}
