// Package shared holds the pieces common to the master data domains:
// customers, suppliers, items and tax codes.
package shared

import "errors"

// Sentinel errors the master data repositories and services return. Handlers
// map them to problem responses; the document and draft services also match
// on ErrNotFound when resolving a party.
var (
	ErrNotFound      = errors.New("master data record not found")
	ErrDuplicate     = errors.New("code already in use")
	ErrValidation    = errors.New("master data validation failed")
	ErrInvalidID     = errors.New("identifier must be a positive integer")
	ErrRequiredField = errors.New("required field missing")
)
