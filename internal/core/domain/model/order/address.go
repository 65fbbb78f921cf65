package order

import (
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError(
	"address must be created via NewAddress constructor")

// Address is a geocoded pickup or dropoff point with its human-readable line.
type Address struct {
	location kernel.Location
	line     string
	guard    guard.ConstructorGuard
}

func NewAddress(location kernel.Location, line string) (Address, error) {
	if err := location.Validate(); err != nil {
		return Address{}, err
	}

	return Address{
		location: location,
		line:     strings.TrimSpace(line),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

func (a Address) Location() kernel.Location {
	return a.location
}

func (a Address) Line() string {
	return a.line
}
