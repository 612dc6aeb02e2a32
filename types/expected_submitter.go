package types

import (
	"context"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// Submitter finds the next batch of pending work, commits it to the base
// chain and drives the commitment transaction to confirmation.
// The implementation owns batch construction and encoding entirely; callers
// only schedule it.
type Submitter interface {
	// SubmitNextBatch submits the next pending batch and blocks until the
	// transaction is durably confirmed. A nil receipt with a nil error means
	// there was no pending work to submit.
	SubmitNextBatch(ctx context.Context) (*ethtypes.Receipt, error)
}
