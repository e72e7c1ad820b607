package access

import "errors"

var (
	ErrUnauthenticated = errors.New("access: caller is not authenticated")
	ErrForbidden       = errors.New("access: operation not permitted")
)
