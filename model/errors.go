package model

import "errors"

// Failure kinds surfaced by the client and the photo store. Callers match them
// with errors.Is; KindOf gives the discriminant for display.
var (
	ErrNetwork      = errors.New("network failure")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failure")
	ErrServer       = errors.New("server failure")
)

// Kind discriminates failures.
type Kind int

const (
	KindNone Kind = iota
	KindNetwork
	KindUnauthorized
	KindNotFound
	KindValidation
	KindServer
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindNetwork:
		return "NetworkFailure"
	case KindUnauthorized:
		return "Unauthorized"
	case KindNotFound:
		return "NotFound"
	case KindValidation:
		return "ValidationFailure"
	case KindServer:
		return "ServerFailure"
	default:
		return "Unknown"
	}
}

// KindOf maps err onto its failure kind. A nil error is KindNone.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrServer):
		return KindServer
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	default:
		return KindUnknown
	}
}
