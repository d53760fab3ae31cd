package client

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument means the caller misconfigured the creator, retrying
	// without changing the configuration will not help
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyPresent is returned by MasterService implementations when the
	// target name is already taken. TableCreator.Create swallows it, creation
	// is idempotent from the caller's perspective.
	ErrAlreadyPresent = errors.New("already present")

	// ErrTimeout means the operation deadline elapsed during one of the
	// blocking steps, the caller may retry with a fresh deadline
	ErrTimeout = errors.New("timeout")
)

// timeoutOr reclassifies deadline expiry as ErrTimeout, anything else passes
// through unchanged
func timeoutOr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, err)
	}
	return err
}

// deadlineGuard fails fast before a blocking call when the deadline already
// elapsed, so an expired context never reaches the network
func deadlineGuard(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return timeoutOr(err)
	}
	return nil
}
