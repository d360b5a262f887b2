package ttldict

import "errors"

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrEmpty       = errors.New("dict is empty")
)
