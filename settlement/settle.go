// Package settlement follows submitted invoke transactions until the node
// reports a receipt for them.
package settlement

import (
	"context"
	"time"

	"github.com/KSimonJNR/paystream/clients"
	"github.com/KSimonJNR/paystream/types"
	"github.com/KSimonJNR/paystream/utils"
)

// Waiter waits for a transaction receipt.
type Waiter interface {
	Wait(ctx context.Context, hash string) (*types.TransactionReceipt, error)
}

var _ Waiter = (*Tracker)(nil)

// Tracker polls a node for receipts.
type Tracker struct {
	node     clients.Node
	timeout  time.Duration
	interval time.Duration
}

// NewTracker creates a tracker. A zero timeout waits until ctx is done.
func NewTracker(node clients.Node, timeout, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = clients.DefaultPollInterval
	}
	return &Tracker{
		node:     node,
		timeout:  timeout,
		interval: interval,
	}
}

// Wait blocks until hash has a receipt. A reverted transaction is still a
// receipt; callers check Reverted.
func (t *Tracker) Wait(ctx context.Context, hash string) (*types.TransactionReceipt, error) {
	if err := utils.ValidateTransactionHash(hash); err != nil {
		return nil, err
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	return clients.WaitForReceipt(ctx, t.node, hash, t.interval)
}

// Result is the outcome of waiting for one transaction.
type Result struct {
	Hash    string
	Receipt *types.TransactionReceipt
	Err     error
}

// BatchWait waits for several transactions concurrently. Results keep the
// order of hashes; individual failures are recorded in the result.
func (t *Tracker) BatchWait(ctx context.Context, hashes []string) ([]Result, error) {
	results := make([]Result, len(hashes))

	type waitResult struct {
		index   int
		receipt *types.TransactionReceipt
		err     error
	}

	resultChan := make(chan waitResult, len(hashes))

	for i, hash := range hashes {
		go func(index int, hash string) {
			receipt, err := t.Wait(ctx, hash)
			resultChan <- waitResult{
				index:   index,
				receipt: receipt,
				err:     err,
			}
		}(i, hash)
	}

	for i := 0; i < len(hashes); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-resultChan:
			results[res.index] = Result{
				Hash:    hashes[res.index],
				Receipt: res.receipt,
				Err:     res.err,
			}
		}
	}

	return results, nil
}
