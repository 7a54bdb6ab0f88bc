package entity

import "errors"

var (
	ErrIdentityMismatch = errors.New("entity identities differ")
)
