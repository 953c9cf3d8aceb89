package models

import "errors"

// Error taxonomy shared by services and controllers. Services wrap these with
// context via fmt.Errorf("%w: ..."); controllers branch on errors.Is.
var (
	// ErrNotFound: a referenced entity id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrIllegalState: an operation was attempted outside its legal state.
	ErrIllegalState = errors.New("illegal state")
	// ErrConflict: a uniqueness constraint rejected a duplicate row.
	ErrConflict = errors.New("conflict")
)
