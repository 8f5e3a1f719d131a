package paystream

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/KSimonJNR/paystream/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const (
	testAccount   = "0xabc"
	testPaystream = "0x1234"
	testToken     = "0x5678"
)

type notFoundError struct{}

func (notFoundError) Error() string  { return "Transaction hash not found" }
func (notFoundError) ErrorCode() int { return 29 }

type fakeNode struct {
	mu sync.Mutex

	chainID  string
	result   []string
	callErr  error
	calls    []types.FunctionCall
	receipts map[string]*types.TransactionReceipt
	closed   bool
}

func (n *fakeNode) Call(_ context.Context, call types.FunctionCall) ([]string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, call)
	if n.callErr != nil {
		return nil, n.callErr
	}
	return n.result, nil
}

func (n *fakeNode) ChainID(context.Context) (string, error) {
	return n.chainID, nil
}

func (n *fakeNode) TransactionReceipt(_ context.Context, hash string) (*types.TransactionReceipt, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if r, ok := n.receipts[hash]; ok {
		return r, nil
	}
	return nil, notFoundError{}
}

func (n *fakeNode) Close() {
	n.closed = true
}

type fakeWallet struct {
	mu sync.Mutex

	accounts  []string
	chainID   string
	accErr    error
	invokeErr error
	block     bool
	invoked   [][]types.FunctionCall
	closed    bool
}

func (w *fakeWallet) RequestAccounts(context.Context) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.accounts, w.accErr
}

func (w *fakeWallet) ChainID(context.Context) (string, error) {
	return w.chainID, nil
}

func (w *fakeWallet) AddInvokeTransaction(ctx context.Context, calls ...types.FunctionCall) (*types.InvokeResult, error) {
	if w.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.invokeErr != nil {
		return nil, w.invokeErr
	}
	w.invoked = append(w.invoked, calls)
	return &types.InvokeResult{TransactionHash: "0xfeed"}, nil
}

func (w *fakeWallet) Close() {
	w.closed = true
}

func (w *fakeWallet) setAccounts(accounts ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.accounts = accounts
}

func (w *fakeWallet) lastInvoke(t *testing.T) types.FunctionCall {
	t.Helper()
	w.mu.Lock()
	defer w.mu.Unlock()
	require.NotEmpty(t, w.invoked)
	last := w.invoked[len(w.invoked)-1]
	require.Len(t, last, 1)
	return last[0]
}

func testConfig() *types.Config {
	return &types.Config{
		Network:   types.NetworkSepolia,
		NodeURL:   "http://127.0.0.1:5050/rpc",
		WalletURL: "http://127.0.0.1:5051",
		Deployment: types.Deployment{
			types.ContractPaystream: testPaystream,
			types.ContractMockERC20: testToken,
		},
		Decimals:     18,
		PollInterval: time.Millisecond,
	}
}

func newFakes() (*fakeNode, *fakeWallet) {
	node := &fakeNode{
		chainID:  types.NetworkSepolia.ChainID(),
		receipts: map[string]*types.TransactionReceipt{},
	}
	wallet := &fakeWallet{
		accounts: []string{"0x0ABC"},
		chainID:  types.NetworkSepolia.ChainID(),
	}
	return node, wallet
}

func newTestPaystream(t *testing.T, cfg *types.Config, node *fakeNode, wallet *fakeWallet, opts ...Option) *Paystream {
	t.Helper()
	opts = append([]Option{WithNode(node), WithWallet(wallet)}, opts...)
	p, err := New(context.Background(), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Network = "ropsten"

	_, err := New(context.Background(), cfg)
	require.ErrorIs(t, err, &types.Error{Code: types.ErrConfigError})

	_, err = New(context.Background(), nil)
	require.ErrorIs(t, err, &types.Error{Code: types.ErrConfigError})
}

func TestConnect(t *testing.T) {
	node, wallet := newFakes()
	p := newTestPaystream(t, testConfig(), node, wallet)

	s, err := p.Connect(context.Background())
	require.NoError(t, err)
	require.Equal(t, testAccount, s.Account())
	require.Equal(t, types.NetworkSepolia, s.Network())
	require.Equal(t, 18, s.Decimals())
	require.NotEmpty(t, s.ID())
	require.True(t, s.Valid())
}

func TestConnectErrors(t *testing.T) {
	type TC struct {
		name  string
		setup func(*fakeNode, *fakeWallet)
		code  string
	}

	tcs := []TC{
		{
			name:  "no account",
			setup: func(_ *fakeNode, w *fakeWallet) { w.accounts = nil },
			code:  types.ErrNoAccount,
		},
		{
			name:  "wallet on another network",
			setup: func(_ *fakeNode, w *fakeWallet) { w.chainID = types.NetworkMainnet.ChainID() },
			code:  types.ErrNetworkMismatch,
		},
		{
			name:  "node on another network",
			setup: func(n *fakeNode, _ *fakeWallet) { n.chainID = "SN_MAIN" },
			code:  types.ErrNetworkMismatch,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			node, wallet := newFakes()
			tc.setup(node, wallet)
			p := newTestPaystream(t, testConfig(), node, wallet)

			_, err := p.Connect(context.Background())
			require.ErrorIs(t, err, &types.Error{Code: tc.code})
		})
	}
}

func TestConnectRequiresPaystream(t *testing.T) {
	cfg := testConfig()
	cfg.Deployment = types.Deployment{types.ContractMockERC20: testToken}
	node, wallet := newFakes()
	p := newTestPaystream(t, cfg, node, wallet)

	_, err := p.Connect(context.Background())
	require.ErrorIs(t, err, &types.Error{Code: types.ErrUnknownContract})
}

func TestWaitForTransaction(t *testing.T) {
	node, wallet := newFakes()
	p := newTestPaystream(t, testConfig(), node, wallet)

	node.mu.Lock()
	node.receipts["0xfeed"] = &types.TransactionReceipt{
		TransactionHash: "0xfeed",
		ExecutionStatus: types.ExecutionReverted,
		RevertReason:    "stream does not exist",
	}
	node.mu.Unlock()

	receipt, err := p.WaitForTransaction(context.Background(), "0xfeed")
	require.NoError(t, err)
	require.True(t, receipt.Reverted())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = p.WaitForTransaction(ctx, "0xbeef")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMetricsFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.EnableMetrics = true
	reg := prometheus.NewRegistry()

	node, wallet := newFakes()
	p := newTestPaystream(t, cfg, node, wallet, WithRegisterer(reg))

	s, err := p.Connect(context.Background())
	require.NoError(t, err)

	_, err = s.Cancel(context.Background(), "1")
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "paystream_events_total", "paystream_latency_seconds")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestClose(t *testing.T) {
	node, wallet := newFakes()
	p, err := New(context.Background(), testConfig(), WithNode(node), WithWallet(wallet))
	require.NoError(t, err)

	p.Close()
	require.True(t, node.closed)
	require.True(t, wallet.closed)
	require.Equal(t, testConfig().Deployment, p.Config().Deployment)
}
