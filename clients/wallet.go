package clients

import (
	"context"
	"fmt"

	"github.com/KSimonJNR/paystream/types"
	"github.com/ethereum/go-ethereum/rpc"
)

var _ Wallet = (*WalletClient)(nil)

// WalletClient forwards requests to a wallet speaking the Starknet wallet
// JSON-RPC methods. The wallet signs; this client never sees a key.
type WalletClient struct {
	url    string
	client *rpc.Client
}

type walletCall struct {
	ContractAddress string   `json:"contract_address"`
	EntryPoint      string   `json:"entry_point"`
	Calldata        []string `json:"calldata"`
}

type addInvokeParams struct {
	Calls []walletCall `json:"calls"`
}

func NewWalletClient(ctx context.Context, url string, headers map[string]string) (*WalletClient, error) {
	client, err := dial(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to wallet: %w", err)
	}

	return NewWalletClientFromRPC(url, client), nil
}

func NewWalletClientFromRPC(url string, client *rpc.Client) *WalletClient {
	return &WalletClient{url: url, client: client}
}

// RequestAccounts implements Wallet.
func (w *WalletClient) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := w.client.CallContext(ctx, &accounts, "wallet_requestAccounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// ChainID implements Wallet.
func (w *WalletClient) ChainID(ctx context.Context) (string, error) {
	var id string
	if err := w.client.CallContext(ctx, &id, "wallet_requestChainId"); err != nil {
		return "", err
	}
	return id, nil
}

// AddInvokeTransaction implements Wallet. All calls go out in one multicall.
func (w *WalletClient) AddInvokeTransaction(ctx context.Context, calls ...types.FunctionCall) (*types.InvokeResult, error) {
	params := addInvokeParams{Calls: make([]walletCall, len(calls))}
	for i, c := range calls {
		params.Calls[i] = walletCall{
			ContractAddress: c.ContractAddress,
			EntryPoint:      c.EntryPoint,
			Calldata:        c.Calldata,
		}
		if params.Calls[i].Calldata == nil {
			params.Calls[i].Calldata = []string{}
		}
	}

	var result types.InvokeResult
	if err := w.client.CallContext(ctx, &result, "wallet_addInvokeTransaction", params); err != nil {
		return nil, err
	}
	return &result, nil
}

// Close implements Wallet.
func (w *WalletClient) Close() {
	w.client.Close()
}
