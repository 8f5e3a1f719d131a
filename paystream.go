// Package paystream is a client for the Paystream Starknet contract. It
// creates, withdraws from and cancels payment streams, reads stream balances
// and manages the token allowance the stream pays in.
package paystream

import (
	"context"
	"fmt"
	"time"

	"github.com/KSimonJNR/paystream/clients"
	"github.com/KSimonJNR/paystream/contract"
	"github.com/KSimonJNR/paystream/logger"
	"github.com/KSimonJNR/paystream/metrics"
	"github.com/KSimonJNR/paystream/settlement"
	"github.com/KSimonJNR/paystream/types"
	"github.com/KSimonJNR/paystream/utils"
	"github.com/KSimonJNR/paystream/verification"
	"github.com/prometheus/client_golang/prometheus"
)

const Version = "0.1.0"

// Paystream holds the configuration and collaborators sessions are built from.
type Paystream struct {
	config *types.Config
	abis   map[string]*contract.ABI

	node   clients.Node
	wallet clients.Wallet

	logger     logger.Logger
	metrics    metrics.Recorder
	registerer prometheus.Registerer
	timeout    time.Duration

	verifier *verification.NetworkVerifier
	tracker  *settlement.Tracker
}

// New validates config, loads the contract ABIs and connects to the node and
// wallet unless they were supplied as options.
func New(ctx context.Context, config *types.Config, opts ...Option) (*Paystream, error) {
	if err := utils.ValidateConfig(config); err != nil {
		return nil, err
	}

	p := &Paystream{
		config:  config,
		timeout: utils.DefaultTimeout,
	}
	if config.DefaultTimeout > 0 {
		p.timeout = config.DefaultTimeout
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = logger.NoopLogger{}
		if config.LogLevel != "" {
			p.logger = logger.NewZapLogger(config.LogLevel)
		}
	}

	if p.metrics == nil {
		p.metrics = metrics.NoopRecorder{}
		if config.EnableMetrics {
			rec, err := metrics.NewPrometheusRecorder(p.registerer)
			if err != nil {
				return nil, fmt.Errorf("failed to register metrics: %w", err)
			}
			p.metrics = rec
		}
	}

	abis, err := contract.LoadABIs(config.ABIDir, config.Deployment)
	if err != nil {
		return nil, err
	}
	p.abis = abis

	if err := p.dial(ctx); err != nil {
		p.Close()
		return nil, err
	}

	p.verifier = verification.NewNetworkVerifier(config.Network, p.timeout)
	p.tracker = settlement.NewTracker(p.node, 0, config.PollInterval)

	p.logger.Debug("paystream ready", map[string]any{
		"network":   config.Network.String(),
		"node_url":  config.NodeURL,
		"contracts": len(abis),
	})

	return p, nil
}

func (p *Paystream) dial(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if p.node == nil {
		node, err := clients.NewStarknetClient(ctx, p.config.NodeURL, p.config.Headers)
		if err != nil {
			return err
		}
		p.node = node
	}

	if p.wallet == nil {
		wallet, err := clients.NewWalletClient(ctx, p.config.WalletURL, p.config.Headers)
		if err != nil {
			return err
		}
		p.wallet = wallet
	}

	return nil
}

// Connect asks the wallet for its account, checks that node and wallet are
// on the configured network and binds the deployed contracts. It is the only
// way to obtain a Session.
func (p *Paystream) Connect(ctx context.Context) (*Session, error) {
	if err := p.verifier.VerifyNode(ctx, p.node); err != nil {
		return nil, err
	}

	account, err := p.verifier.VerifyWallet(ctx, p.wallet)
	if err != nil {
		return nil, err
	}

	provider := clients.NewProvider(p.node, p.wallet)

	ps, err := p.bind(types.ContractPaystream, provider)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:        newActionID(),
		account:   account,
		network:   p.config.Network,
		paystream: ps,
		spender:   ps.Address(),
		decimals:  p.config.Decimals,
		timeout:   p.timeout,
		wallet:    p.wallet,
		logger:    p.logger,
		metrics:   p.metrics,
	}

	// The mock token is only needed for approve and mint.
	if _, ok := p.config.Deployment[types.ContractMockERC20]; ok {
		token, err := p.bind(types.ContractMockERC20, provider)
		if err != nil {
			return nil, err
		}
		s.token = token
	}

	p.logger.Info("wallet connected", map[string]any{
		"session_id": s.id,
		"account":    account,
		"network":    p.config.Network.String(),
	})

	return s, nil
}

func (p *Paystream) bind(name string, transport contract.Transport) (*contract.Contract, error) {
	addr, err := p.config.Deployment.Address(name)
	if err != nil {
		return nil, err
	}

	abi, ok := p.abis[name]
	if !ok {
		return nil, &types.Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("no ABI loaded for %s", name),
		}
	}

	return contract.New(name, addr, abi, transport)
}

// WaitForTransaction polls the node until hash has a receipt or ctx is done.
func (p *Paystream) WaitForTransaction(ctx context.Context, hash string) (*types.TransactionReceipt, error) {
	start := time.Now()
	receipt, err := p.tracker.Wait(ctx, hash)
	p.metrics.ObserveLatency("receipt", time.Since(start), nil)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"tx_hash":          hash,
		"execution_status": receipt.ExecutionStatus,
		"finality_status":  receipt.FinalityStatus,
	}
	if receipt.Reverted() {
		fields["revert_reason"] = receipt.RevertReason
		p.logger.Warn("transaction reverted", fields)
	} else {
		p.logger.Info("transaction accepted", fields)
	}

	return receipt, nil
}

// Config returns the validated configuration.
func (p *Paystream) Config() *types.Config {
	return p.config
}

// Close closes the node and wallet connections.
func (p *Paystream) Close() {
	if p.node != nil {
		p.node.Close()
	}
	if p.wallet != nil {
		p.wallet.Close()
	}
}
