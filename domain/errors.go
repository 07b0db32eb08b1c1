package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrDuplicateName      = errors.New("name already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrInvalidToken       = errors.New("token is not valid")
	ErrTokenExpired       = errors.New("token has expired")
	ErrNilQueryInput      = errors.New("query options is nil")
)
