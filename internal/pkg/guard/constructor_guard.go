// Package guard detects domain objects that were created as zero values instead
// of through their constructors.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded in value objects, entities and commands. Only
// NewConstructorGuard produces a guard that validates, so a struct literal
// or a zero value of the embedding type is rejected.
//
//	type Offer struct {
//	    id    kernel.UUID
//	    guard guard.ConstructorGuard
//	}
//
//	func (o *Offer) Validate() error {
//	    return o.guard.Validate(ErrOfferIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when nil)
// if the guard was not created by NewConstructorGuard.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
