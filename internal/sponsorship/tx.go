package sponsorship

import (
	"context"
	"sync"
	"time"

	dErrors "amparo/pkg/domain-errors"
)

// defaultTxTimeout bounds how long a ledger transaction may run.
const defaultTxTimeout = 5 * time.Second

// inMemoryTx serializes ledger transactions behind one mutex. Coarse, but it
// gives the in-memory stores the same atomic check-then-act window a database
// transaction gives the postgres stores.
type inMemoryTx struct {
	mu      sync.Mutex
	timeout time.Duration
}

// NewInMemoryTx returns a StoreTx for in-memory wiring and tests.
func NewInMemoryTx() StoreTx {
	return &inMemoryTx{}
}

func (t *inMemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}
