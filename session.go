package paystream

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/KSimonJNR/paystream/amount"
	"github.com/KSimonJNR/paystream/clients"
	"github.com/KSimonJNR/paystream/contract"
	"github.com/KSimonJNR/paystream/logger"
	"github.com/KSimonJNR/paystream/metrics"
	"github.com/KSimonJNR/paystream/types"
	"github.com/KSimonJNR/paystream/utils"
	"github.com/google/uuid"
)

// Contract entry points.
const (
	MethodCreateStream = "create_stream"
	MethodWithdraw     = "withdraw_from_stream"
	MethodCancel       = "cancel_stream"
	MethodBalanceOf    = "balance_of"
	MethodApprove      = "approve"
	MethodMint         = "mint"
)

// Session is a connected wallet account bound to the deployed contracts.
// It stays valid until Close is called or Refresh sees a different account.
// A Session is safe for concurrent use; actions are independent of each other.
type Session struct {
	id      string
	account string
	network types.Network

	paystream contract.Invoker
	token     contract.Invoker // nil when the deployment has no mock token
	spender   string

	decimals int
	timeout  time.Duration
	wallet   clients.Wallet
	logger   logger.Logger
	metrics  metrics.Recorder

	mu     sync.RWMutex
	closed bool
}

func newActionID() string {
	return uuid.NewString()
}

func (s *Session) ID() string {
	return s.id
}

// Account is the wallet address the session acts for.
func (s *Session) Account() string {
	return s.account
}

func (s *Session) Network() types.Network {
	return s.network
}

// Decimals is the token precision used to scale amounts.
func (s *Session) Decimals() int {
	return s.decimals
}

// Valid reports whether the session can still be used.
func (s *Session) Valid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed
}

// CreateStream opens a stream paying params.Deposit of the token to the
// recipient between StartTime and StopTime.
func (s *Session) CreateStream(ctx context.Context, params types.StreamParams) (*types.InvokeResult, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if err := utils.ValidateStreamParams(&params); err != nil {
		return nil, err
	}

	deposit, err := s.limbs(params.Deposit)
	if err != nil {
		return nil, err
	}

	return s.invoke(ctx, s.paystream, types.ContractPaystream, MethodCreateStream,
		params.Recipient, deposit, params.StartTime, params.StopTime, params.TokenAddress)
}

// Withdraw takes amount out of a stream the account is the recipient of.
func (s *Session) Withdraw(ctx context.Context, streamID, value string) (*types.InvokeResult, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	limbs, err := s.limbs(value)
	if err != nil {
		return nil, err
	}

	return s.invoke(ctx, s.paystream, types.ContractPaystream, MethodWithdraw, streamID, limbs)
}

func (s *Session) Cancel(ctx context.Context, streamID string) (*types.InvokeResult, error) {
	return s.invoke(ctx, s.paystream, types.ContractPaystream, MethodCancel, streamID)
}

// BalanceOf reads the balance user holds in a stream. An empty user means
// the session account.
func (s *Session) BalanceOf(ctx context.Context, streamID, user string) (*types.Balance, error) {
	if user == "" {
		user = s.account
	}

	var out []*big.Int
	err := s.do(ctx, types.ContractPaystream, MethodBalanceOf, func(ctx context.Context) error {
		var err error
		out, err = s.paystream.Call(ctx, MethodBalanceOf, streamID, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, &types.Error{
			Code:    types.ErrInvalidArgument,
			Message: "balance_of returned no value",
		}
	}

	return &types.Balance{
		Raw:       out[0],
		Formatted: amount.FormatAmount(out[0], s.decimals),
		Decimals:  s.decimals,
	}, nil
}

// Approve lets spender move value of the mock token on the account's
// behalf. An empty spender means the paystream contract.
func (s *Session) Approve(ctx context.Context, value, spender string) (*types.InvokeResult, error) {
	if err := s.requireToken(); err != nil {
		return nil, err
	}
	if spender == "" {
		spender = s.spender
	}

	limbs, err := s.limbs(value)
	if err != nil {
		return nil, err
	}

	return s.invoke(ctx, s.token, types.ContractMockERC20, MethodApprove, spender, limbs)
}

// Mint creates value of the mock token for to.
func (s *Session) Mint(ctx context.Context, to, value string) (*types.InvokeResult, error) {
	if err := s.requireToken(); err != nil {
		return nil, err
	}

	limbs, err := s.limbs(value)
	if err != nil {
		return nil, err
	}

	return s.invoke(ctx, s.token, types.ContractMockERC20, MethodMint, to, limbs)
}

// Refresh asks the wallet for its current account. The session is
// invalidated when the account changed or the wallet no longer exposes one.
// Wallet errors are returned as they are and leave the session untouched.
func (s *Session) Refresh(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	accounts, err := s.wallet.RequestAccounts(ctx)
	if err != nil {
		return err
	}

	if len(accounts) == 0 || accounts[0] == "" {
		s.invalidate("account disconnected")
		return &types.Error{
			Code:    types.ErrNoAccount,
			Message: "wallet returned no account",
		}
	}

	current, err := contract.NormalizeAddress(accounts[0])
	if err != nil || current != s.account {
		s.invalidate("account changed")
		return &types.Error{
			Code:    types.ErrAccountChanged,
			Message: fmt.Sprintf("wallet account changed from %s to %s", s.account, accounts[0]),
			Data:    map[string]string{"previous": s.account, "current": accounts[0]},
		}
	}

	return nil
}

// Close invalidates the session. Later actions fail with SESSION_CLOSED.
func (s *Session) Close() {
	s.invalidate("closed")
}

func (s *Session) invalidate(reason string) {
	s.mu.Lock()
	already := s.closed
	s.closed = true
	s.mu.Unlock()

	if !already {
		s.logger.Info("session invalidated", map[string]any{
			"session_id": s.id,
			"account":    s.account,
			"reason":     reason,
		})
	}
}

func (s *Session) check() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &types.Error{
			Code:    types.ErrSessionClosed,
			Message: "session is closed",
		}
	}
	return nil
}

func (s *Session) requireToken() error {
	if err := s.check(); err != nil {
		return err
	}
	if s.token == nil {
		return &types.Error{
			Code:    types.ErrUnknownContract,
			Message: fmt.Sprintf("contract %q is not in the deployment", types.ContractMockERC20),
		}
	}
	return nil
}

func (s *Session) limbs(value string) (amount.U256, error) {
	scaled, err := amount.ParseAmount(value, s.decimals)
	if err != nil {
		return amount.U256{}, err
	}
	return amount.ToTwoLimbs(scaled)
}

func (s *Session) invoke(ctx context.Context, target contract.Invoker, name, method string, args ...any) (*types.InvokeResult, error) {
	var res *types.InvokeResult
	err := s.do(ctx, name, method, func(ctx context.Context) error {
		var err error
		res, err = target.Invoke(ctx, method, args...)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("transaction submitted", map[string]any{
		"method":  method,
		"tx_hash": res.TransactionHash,
	})
	return res, nil
}

// do runs one action with its own id, timeout, log lines and metrics. The
// error from fn is returned unchanged.
func (s *Session) do(ctx context.Context, name, method string, fn func(context.Context) error) error {
	if err := s.check(); err != nil {
		return err
	}

	fields := map[string]any{
		"action_id":  newActionID(),
		"session_id": s.id,
		"method":     method,
		"contract":   name,
		"account":    s.account,
	}
	labels := map[string]string{
		metrics.LabelMethod:   method,
		metrics.LabelContract: name,
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.logger.Debug("action started", fields)

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	s.metrics.ObserveLatency("action", elapsed, labels)

	fields["elapsed_ms"] = elapsed.Milliseconds()
	if err != nil {
		s.metrics.IncCounter("action_error", labels)
		fields["error"] = err
		s.logger.Error("action failed", fields)
		return err
	}

	s.metrics.IncCounter("action_success", labels)
	s.logger.Info("action succeeded", fields)
	return nil
}

func (s *Session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
