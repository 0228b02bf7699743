package domain

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrRetrievalFailed = errors.New("ticket retrieval failed")
)

// IsKnown reports whether err wraps one of the domain sentinels.
func IsKnown(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrTicketNotFound) ||
		errors.Is(err, ErrRetrievalFailed)
}
