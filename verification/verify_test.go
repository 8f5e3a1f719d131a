package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/KSimonJNR/paystream/types"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	chainID string
	err     error
}

func (f *fakeNode) Call(context.Context, types.FunctionCall) ([]string, error) { return nil, nil }
func (f *fakeNode) ChainID(context.Context) (string, error)                   { return f.chainID, f.err }
func (f *fakeNode) Close()                                                    {}
func (f *fakeNode) TransactionReceipt(context.Context, string) (*types.TransactionReceipt, error) {
	return nil, nil
}

type fakeWallet struct {
	accounts []string
	chainID  string
	err      error
}

func (f *fakeWallet) RequestAccounts(context.Context) ([]string, error) { return f.accounts, f.err }
func (f *fakeWallet) ChainID(context.Context) (string, error)           { return f.chainID, nil }
func (f *fakeWallet) Close()                                            {}
func (f *fakeWallet) AddInvokeTransaction(context.Context, ...types.FunctionCall) (*types.InvokeResult, error) {
	return nil, nil
}

func TestMatchesChainID(t *testing.T) {
	require.True(t, MatchesChainID(types.NetworkSepolia, "0x534e5f5345504f4c4941"))
	require.True(t, MatchesChainID(types.NetworkSepolia, "0x00534e5f5345504f4c4941"))
	require.True(t, MatchesChainID(types.NetworkSepolia, "SN_SEPOLIA"))
	require.True(t, MatchesChainID(types.NetworkDevnet, "SN_SEPOLIA"))
	require.True(t, MatchesChainID(types.NetworkMainnet, "0x534e5f4d41494e"))

	require.False(t, MatchesChainID(types.NetworkMainnet, "0x534e5f5345504f4c4941"))
	require.False(t, MatchesChainID(types.NetworkMainnet, ""))
	require.False(t, MatchesChainID(types.Network("ropsten"), "0x1"))
}

func TestVerifyNode(t *testing.T) {
	v := NewNetworkVerifier(types.NetworkSepolia, 0)

	require.NoError(t, v.VerifyNode(context.Background(), &fakeNode{chainID: types.NetworkSepolia.ChainID()}))

	err := v.VerifyNode(context.Background(), &fakeNode{chainID: types.NetworkMainnet.ChainID()})
	require.ErrorIs(t, err, &types.Error{Code: types.ErrNetworkMismatch})

	boom := errors.New("dial tcp: refused")
	require.Same(t, boom, v.VerifyNode(context.Background(), &fakeNode{err: boom}))
}

func TestVerifyWallet(t *testing.T) {
	v := NewNetworkVerifier(types.NetworkMainnet, 0)
	ctx := context.Background()

	account, err := v.VerifyWallet(ctx, &fakeWallet{accounts: []string{"0x0ABC"}, chainID: "SN_MAIN"})
	require.NoError(t, err)
	require.Equal(t, "0xabc", account)

	_, err = v.VerifyWallet(ctx, &fakeWallet{chainID: "SN_MAIN"})
	require.ErrorIs(t, err, &types.Error{Code: types.ErrNoAccount})

	_, err = v.VerifyWallet(ctx, &fakeWallet{accounts: []string{"0x1"}, chainID: "SN_SEPOLIA"})
	require.ErrorIs(t, err, &types.Error{Code: types.ErrNetworkMismatch})

	boom := errors.New("user rejected")
	_, err = v.VerifyWallet(ctx, &fakeWallet{err: boom})
	require.Same(t, boom, err)
}
