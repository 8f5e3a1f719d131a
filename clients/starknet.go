package clients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KSimonJNR/paystream/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// CodeTxnHashNotFound is the Starknet JSON-RPC error for an unknown hash.
const CodeTxnHashNotFound = 29

const (
	blockLatest         = "latest"
	DefaultPollInterval = 2 * time.Second
)

var _ Node = (*StarknetClient)(nil)

// StarknetClient reads from a Starknet node.
type StarknetClient struct {
	url    string
	client *rpc.Client
}

type nodeCall struct {
	ContractAddress    string   `json:"contract_address"`
	EntryPointSelector string   `json:"entry_point_selector"`
	Calldata           []string `json:"calldata"`
}

func NewStarknetClient(ctx context.Context, url string, headers map[string]string) (*StarknetClient, error) {
	client, err := dial(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Starknet RPC: %w", err)
	}

	return NewStarknetClientFromRPC(url, client), nil
}

// NewStarknetClientFromRPC wraps an already connected rpc client.
func NewStarknetClientFromRPC(url string, client *rpc.Client) *StarknetClient {
	return &StarknetClient{url: url, client: client}
}

// Call implements Node. It runs the call against the latest block.
func (s *StarknetClient) Call(ctx context.Context, call types.FunctionCall) ([]string, error) {
	req := nodeCall{
		ContractAddress:    call.ContractAddress,
		EntryPointSelector: call.Selector,
		Calldata:           call.Calldata,
	}
	if req.Calldata == nil {
		req.Calldata = []string{}
	}

	var result []string
	if err := s.client.CallContext(ctx, &result, "starknet_call", req, blockLatest); err != nil {
		return nil, err
	}
	return result, nil
}

// ChainID implements Node.
func (s *StarknetClient) ChainID(ctx context.Context) (string, error) {
	var id string
	if err := s.client.CallContext(ctx, &id, "starknet_chainId"); err != nil {
		return "", err
	}
	return id, nil
}

// TransactionReceipt implements Node.
func (s *StarknetClient) TransactionReceipt(ctx context.Context, hash string) (*types.TransactionReceipt, error) {
	var receipt types.TransactionReceipt
	if err := s.client.CallContext(ctx, &receipt, "starknet_getTransactionReceipt", hash); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// Close implements Node.
func (s *StarknetClient) Close() {
	s.client.Close()
}

// WaitForReceipt polls node until the transaction has a receipt. A node that
// does not know the hash yet is polled again; every other error ends the wait.
func WaitForReceipt(ctx context.Context, node Node, hash string, interval time.Duration) (*types.TransactionReceipt, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := node.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// IsNotFound reports whether err is the node saying it does not know the
// transaction hash.
func IsNotFound(err error) bool {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode() == CodeTxnHashNotFound
	}
	return false
}
