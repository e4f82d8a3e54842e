package service

import "errors"

// Sentinel kinds for service errors. Store lookups that miss surface
// repository.ErrNotFound unchanged.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrBackpressure    = errors.New("progression queue is full")
	ErrBatchNotFound   = errors.New("progression batch not found")
	ErrInvalidArgument = errors.New("invalid argument")
)
