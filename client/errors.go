package client

import "github.com/photostream/photostream/model"

// Re-export the failure kinds so SDK callers compare against the client
// package alone.
var (
	ErrNetwork      = model.ErrNetwork
	ErrUnauthorized = model.ErrUnauthorized
	ErrNotFound     = model.ErrNotFound
	ErrValidation   = model.ErrValidation
	ErrServer       = model.ErrServer
)

// KindOf reports the failure kind of err.
func KindOf(err error) model.Kind { return model.KindOf(err) }
