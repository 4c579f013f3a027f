package mmap

import "errors"

// Advice is a hint about how a mapped range will be read.
type Advice int

const (
	// AdviceNormal leaves the kernel default in place.
	AdviceNormal Advice = iota
	// AdviceSequential suits blobs that are read front to back once.
	AdviceSequential
	// AdviceRandom suits bit tables probed one lookup at a time.
	AdviceRandom
	// AdviceWillNeed asks for the range to be paged in ahead of use.
	AdviceWillNeed
)

var (
	// ErrClosed is returned by every accessor after Close.
	ErrClosed = errors.New("mmap: mapping closed")
	// ErrTooLarge is returned when a file does not fit the address space.
	ErrTooLarge = errors.New("mmap: file too large to map")
	// ErrOutOfBounds is returned for ranges outside the mapping.
	ErrOutOfBounds = errors.New("mmap: range out of bounds")
	// ErrInvalidOffset is returned for negative read offsets.
	ErrInvalidOffset = errors.New("mmap: negative offset")
)

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	advice Advice
}

// WithAdvice applies advice to the whole mapping right after it is created.
func WithAdvice(a Advice) Option {
	return func(o *openOptions) {
		o.advice = a
	}
}
