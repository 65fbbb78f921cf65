package kernel

import (
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrUUIDIsNotConstructed indicates that a UUID was not initialized through one of the constructors.
var ErrUUIDIsNotConstructed = errs.NewValueIsRequiredError(
	"UUID must be created via NewUUID, UUIDFromString, or UUIDFromBytes")

// UUID identifies orders, offers, couriers, batches and operators.
// The zero value is invalid; use NewUUID, UUIDFromString or UUIDFromBytes.
//
// Example:
//
//	offerID := kernel.NewUUID()
//	orderID, err := kernel.UUIDFromString(c.Param("orderId"))
//	if err != nil {
//	    return err
//	}
type UUID struct {
	id uuid.UUID
}

// NewUUID generates a new random (version 4) identifier.
func NewUUID() UUID {
	return UUID{
		id: uuid.New(),
	}
}

// UUIDFromString parses the canonical, braced, urn or hyphen-less text form.
func UUIDFromString(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, errs.NewValueIsInvalidErrorWithCause("uuid", fmt.Errorf("invalid UUID format: %w", err))
	}

	parsed := UUID{id: id}
	if err = parsed.Validate(); err != nil {
		return UUID{}, err
	}
	return parsed, nil
}

// UUIDFromBytes restores an identifier from its 16 raw bytes, as stored by the repositories.
func UUIDFromBytes(b []byte) (UUID, error) {
	id, err := uuid.FromBytes(b)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid UUID format: %w", err)
	}
	newID := UUID{id: id}
	if err = newID.Validate(); err != nil {
		return UUID{}, err
	}

	return newID, nil
}

func (u UUID) String() string {
	return u.id.String()
}

// Bytes returns the underlying google/uuid value used by DTOs.
func (u UUID) Bytes() uuid.UUID {
	return u.id
}

func (u UUID) IsEqual(other UUID) bool {
	return u.id == other.id
}

// Compare orders identifiers by their text form. Used to break ranking ties deterministically.
func (u UUID) Compare(other UUID) int {
	return strings.Compare(u.id.String(), other.id.String())
}

// Validate rejects the nil identifier.
func (u UUID) Validate() error {
	if u.id == uuid.Nil {
		return ErrUUIDIsNotConstructed
	}
	return nil
}
