// Package verification checks that the node and wallet a session is about to
// use agree with the configured network.
package verification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KSimonJNR/paystream/clients"
	"github.com/KSimonJNR/paystream/contract"
	"github.com/KSimonJNR/paystream/types"
)

// NetworkVerifier compares reported chain ids against a network.
type NetworkVerifier struct {
	network types.Network
	timeout time.Duration
}

func NewNetworkVerifier(network types.Network, timeout time.Duration) *NetworkVerifier {
	return &NetworkVerifier{network: network, timeout: timeout}
}

// VerifyNode checks the chain id served by node.
func (v *NetworkVerifier) VerifyNode(ctx context.Context, node clients.Node) error {
	ctx, cancel := v.withTimeout(ctx)
	defer cancel()

	id, err := node.ChainID(ctx)
	if err != nil {
		return err
	}
	return v.check("node", id)
}

// VerifyWallet returns the wallet's selected account after checking the
// wallet is on the configured network.
func (v *NetworkVerifier) VerifyWallet(ctx context.Context, wallet clients.Wallet) (string, error) {
	ctx, cancel := v.withTimeout(ctx)
	defer cancel()

	accounts, err := wallet.RequestAccounts(ctx)
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 || accounts[0] == "" {
		return "", &types.Error{
			Code:    types.ErrNoAccount,
			Message: "wallet returned no account",
		}
	}

	account, err := contract.NormalizeAddress(accounts[0])
	if err != nil {
		return "", fmt.Errorf("wallet account: %w", err)
	}

	id, err := wallet.ChainID(ctx)
	if err != nil {
		return "", err
	}
	if err := v.check("wallet", id); err != nil {
		return "", err
	}

	return account, nil
}

// MatchesChainID reports whether id names network. Wallets report either the
// felt or the short string.
func MatchesChainID(network types.Network, id string) bool {
	id = strings.TrimSpace(id)
	if id == "" || !network.IsValid() {
		return false
	}
	if id == network.ChainName() {
		return true
	}

	got, err := contract.ParseFelt(id)
	if err != nil {
		return false
	}
	want, _ := contract.ParseFelt(network.ChainID())
	return got.Cmp(want) == 0
}

func (v *NetworkVerifier) check(who, id string) error {
	if MatchesChainID(v.network, id) {
		return nil
	}
	return &types.Error{
		Code:    types.ErrNetworkMismatch,
		Message: fmt.Sprintf("%s is on chain %s, expected %s (%s)", who, id, v.network, v.network.ChainName()),
		Data:    map[string]string{"expected": v.network.ChainID(), "actual": id},
	}
}

func (v *NetworkVerifier) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if v.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, v.timeout)
}
