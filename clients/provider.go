package clients

import (
	"context"

	"github.com/KSimonJNR/paystream/contract"
	"github.com/KSimonJNR/paystream/types"
)

var _ contract.Transport = (*Provider)(nil)

// Provider routes reads to the node and writes to the wallet.
type Provider struct {
	node   Node
	wallet Wallet
}

func NewProvider(node Node, wallet Wallet) *Provider {
	return &Provider{node: node, wallet: wallet}
}

func (p *Provider) Invoke(ctx context.Context, calls ...types.FunctionCall) (*types.InvokeResult, error) {
	return p.wallet.AddInvokeTransaction(ctx, calls...)
}

func (p *Provider) Call(ctx context.Context, call types.FunctionCall) ([]string, error) {
	return p.node.Call(ctx, call)
}
