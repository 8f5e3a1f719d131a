// Package clients talks to the collaborators a paystream session depends on:
// a Starknet node for reads and receipts, and a wallet that signs and submits
// invoke transactions.
package clients

import (
	"context"
	"net/http"

	"github.com/KSimonJNR/paystream/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// Node is a Starknet JSON-RPC endpoint.
type Node interface {
	Call(ctx context.Context, call types.FunctionCall) ([]string, error)
	ChainID(ctx context.Context) (string, error)
	TransactionReceipt(ctx context.Context, hash string) (*types.TransactionReceipt, error)
	Close()
}

// Wallet holds the user's account and signs on their behalf.
type Wallet interface {
	RequestAccounts(ctx context.Context) ([]string, error)
	ChainID(ctx context.Context) (string, error)
	AddInvokeTransaction(ctx context.Context, calls ...types.FunctionCall) (*types.InvokeResult, error)
	Close()
}

func dial(ctx context.Context, url string, headers map[string]string) (*rpc.Client, error) {
	var opts []rpc.ClientOption
	if len(headers) > 0 {
		h := make(http.Header, len(headers))
		for k, v := range headers {
			h.Set(k, v)
		}
		opts = append(opts, rpc.WithHeaders(h))
	}
	return rpc.DialOptions(ctx, url, opts...)
}
