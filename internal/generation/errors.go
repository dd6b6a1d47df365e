package generation

import (
	"errors"
	"fmt"

	"voxelworld/internal/world"
)

var (
	// ErrSynthesisFailure is matched by every error that rejects a generation
	// future.
	ErrSynthesisFailure = errors.New("synthesis failure")
	// ErrLookupInconsistency reports a resolved future whose chunk is not the
	// one held by the cache.
	ErrLookupInconsistency = errors.New("chunk lookup inconsistency")
)

// SynthesisError carries the key whose generation failed and the cause.
type SynthesisError struct {
	Key world.ChunkKey
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("chunk %s: %v: %v", e.Key, ErrSynthesisFailure, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

func (e *SynthesisError) Is(target error) bool {
	return target == ErrSynthesisFailure
}
