// paystream is the command line client for the Paystream contract.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KSimonJNR/paystream"
	"github.com/KSimonJNR/paystream/logger"
	"github.com/KSimonJNR/paystream/types"
	"github.com/KSimonJNR/paystream/utils"
	"github.com/urfave/cli/v2"
)

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "TOML configuration file",
		EnvVars: []string{"PAYSTREAM_CONFIG"},
	}
	networkFlag = &cli.StringFlag{
		Name:    "network",
		Usage:   "Starknet network (mainnet, sepolia, goerli, devnet)",
		Value:   string(types.NetworkSepolia),
		EnvVars: []string{"PAYSTREAM_NETWORK"},
	}
	nodeURLFlag = &cli.StringFlag{
		Name:    "node-url",
		Usage:   "Starknet JSON-RPC endpoint",
		EnvVars: []string{"PAYSTREAM_NODE_URL"},
	}
	walletURLFlag = &cli.StringFlag{
		Name:    "wallet-url",
		Usage:   "wallet JSON-RPC endpoint that signs transactions",
		EnvVars: []string{"PAYSTREAM_WALLET_URL"},
	}
	deploymentFlag = &cli.StringFlag{
		Name:    "deployment",
		Usage:   "deployment descriptor mapping contract names to addresses",
		Value:   utils.DefaultDeploymentFile,
		EnvVars: []string{"PAYSTREAM_DEPLOYMENT"},
	}
	abiDirFlag = &cli.StringFlag{
		Name:    "abi-dir",
		Usage:   "directory with <Name>.json ABI files (builtin ABIs when empty)",
		EnvVars: []string{"PAYSTREAM_ABI_DIR"},
	}
	decimalsFlag = &cli.IntFlag{
		Name:    "decimals",
		Usage:   "token decimals used to scale amounts",
		Value:   18,
		EnvVars: []string{"PAYSTREAM_DECIMALS"},
	}
	timeoutFlag = &cli.DurationFlag{
		Name:    "timeout",
		Usage:   "timeout of a single contract action",
		Value:   utils.DefaultTimeout,
		EnvVars: []string{"PAYSTREAM_TIMEOUT"},
	}
	pollIntervalFlag = &cli.DurationFlag{
		Name:    "poll-interval",
		Usage:   "receipt polling interval",
		EnvVars: []string{"PAYSTREAM_POLL_INTERVAL"},
	}
	logLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Usage:   "log level (debug, info, warn, error); logging is off when empty",
		EnvVars: []string{"PAYSTREAM_LOG_LEVEL"},
	}
	waitFlag = &cli.BoolFlag{
		Name:    "wait",
		Usage:   "wait for the transaction receipt after submitting",
		EnvVars: []string{"PAYSTREAM_WAIT"},
	}
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		notifyError(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "paystream",
		Usage:   "create and manage Paystream payment streams on Starknet",
		Version: paystream.Version,
		Flags: []cli.Flag{
			configFlag,
			networkFlag,
			nodeURLFlag,
			walletURLFlag,
			deploymentFlag,
			abiDirFlag,
			decimalsFlag,
			timeoutFlag,
			pollIntervalFlag,
			logLevelFlag,
			waitFlag,
		},
		Commands: []*cli.Command{
			{
				Name:   "account",
				Usage:  "connect the wallet and show the account",
				Action: accountAction,
			},
			{
				Name:      "create",
				Usage:     "create a stream",
				ArgsUsage: "<recipient> <deposit> <start> <stop> [token]",
				Action:    createAction,
			},
			{
				Name:      "withdraw",
				Usage:     "withdraw from a stream",
				ArgsUsage: "<stream_id> <amount>",
				Action:    withdrawAction,
			},
			{
				Name:      "cancel",
				Usage:     "cancel a stream",
				ArgsUsage: "<stream_id>",
				Action:    cancelAction,
			},
			{
				Name:      "balance",
				Usage:     "show the balance of a user in a stream",
				ArgsUsage: "<stream_id> [user]",
				Action:    balanceAction,
			},
			{
				Name:      "approve",
				Usage:     "approve the token allowance (spender defaults to the paystream contract)",
				ArgsUsage: "<amount> [spender]",
				Action:    approveAction,
			},
			{
				Name:      "mint",
				Usage:     "mint mock tokens",
				ArgsUsage: "<to> <amount>",
				Action:    mintAction,
			},
			{
				Name:      "receipt",
				Usage:     "wait for a transaction receipt",
				ArgsUsage: "<tx_hash>",
				Action:    receiptAction,
			},
		},
	}
}

// client builds the facade from the resolved configuration.
func client(ctx *cli.Context) (*paystream.Paystream, error) {
	cfg, err := resolveConfig(ctx)
	if err != nil {
		return nil, err
	}

	var opts []paystream.Option
	if cfg.LogLevel != "" {
		opts = append(opts, paystream.WithLogger(logger.NewZapLogger(cfg.LogLevel)))
	}

	return paystream.New(ctx.Context, cfg, opts...)
}

// withSession runs fn on a freshly connected session. Interrupts cancel the
// running action.
func withSession(ctx *cli.Context, fn func(context.Context, *paystream.Paystream, *paystream.Session) error) error {
	c, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := client(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	s, err := p.Connect(c)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(c, p, s)
}

func requireArgs(ctx *cli.Context, lo, hi int) error {
	n := ctx.NArg()
	if n < lo || n > hi {
		return &types.Error{
			Code:    types.ErrInvalidArgument,
			Message: fmt.Sprintf("usage: paystream %s %s", ctx.Command.Name, ctx.Command.ArgsUsage),
		}
	}
	return nil
}

func accountAction(ctx *cli.Context) error {
	return withSession(ctx, func(_ context.Context, _ *paystream.Paystream, s *paystream.Session) error {
		notifySuccess(ctx.App.Writer, "Wallet connected!")
		printField(ctx.App.Writer, "Account", s.Account())
		printField(ctx.App.Writer, "Network", s.Network())
		return nil
	})
}

func createAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 4, 5); err != nil {
		return err
	}

	start, err := utils.ParseTimestamp(ctx.Args().Get(2))
	if err != nil {
		return err
	}
	stop, err := utils.ParseTimestamp(ctx.Args().Get(3))
	if err != nil {
		return err
	}

	params := types.StreamParams{
		Recipient:    ctx.Args().Get(0),
		Deposit:      ctx.Args().Get(1),
		StartTime:    start,
		StopTime:     stop,
		TokenAddress: ctx.Args().Get(4),
	}

	return withSession(ctx, func(c context.Context, p *paystream.Paystream, s *paystream.Session) error {
		if params.TokenAddress == "" {
			token, err := p.Config().Deployment.Address(types.ContractMockERC20)
			if err != nil {
				return err
			}
			params.TokenAddress = token
		}

		res, err := s.CreateStream(c, params)
		if err != nil {
			return err
		}
		return submitted(c, ctx, p, "Stream created!", res)
	})
}

func withdrawAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 2, 2); err != nil {
		return err
	}

	return withSession(ctx, func(c context.Context, p *paystream.Paystream, s *paystream.Session) error {
		res, err := s.Withdraw(c, ctx.Args().Get(0), ctx.Args().Get(1))
		if err != nil {
			return err
		}
		return submitted(c, ctx, p, "Withdraw successful!", res)
	})
}

func cancelAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 1, 1); err != nil {
		return err
	}

	return withSession(ctx, func(c context.Context, p *paystream.Paystream, s *paystream.Session) error {
		res, err := s.Cancel(c, ctx.Args().Get(0))
		if err != nil {
			return err
		}
		return submitted(c, ctx, p, "Stream cancelled!", res)
	})
}

func balanceAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 1, 2); err != nil {
		return err
	}

	return withSession(ctx, func(c context.Context, _ *paystream.Paystream, s *paystream.Session) error {
		bal, err := s.BalanceOf(c, ctx.Args().Get(0), ctx.Args().Get(1))
		if err != nil {
			return err
		}
		notifySuccess(ctx.App.Writer, "Balance checked!")
		printField(ctx.App.Writer, "Balance", bal.Formatted)
		printField(ctx.App.Writer, "Raw", bal.Raw)
		return nil
	})
}

func approveAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 1, 2); err != nil {
		return err
	}

	return withSession(ctx, func(c context.Context, p *paystream.Paystream, s *paystream.Session) error {
		res, err := s.Approve(c, ctx.Args().Get(0), ctx.Args().Get(1))
		if err != nil {
			return err
		}
		return submitted(c, ctx, p, "Approve submitted!", res)
	})
}

func mintAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 2, 2); err != nil {
		return err
	}

	return withSession(ctx, func(c context.Context, p *paystream.Paystream, s *paystream.Session) error {
		res, err := s.Mint(c, ctx.Args().Get(0), ctx.Args().Get(1))
		if err != nil {
			return err
		}
		return submitted(c, ctx, p, "Mint submitted!", res)
	})
}

func receiptAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 1, 1); err != nil {
		return err
	}

	p, err := client(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	c, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	receipt, err := p.WaitForTransaction(c, ctx.Args().Get(0))
	if err != nil {
		return err
	}
	return printReceipt(ctx, receipt)
}

// submitted prints the transaction hash and, with --wait, its receipt.
func submitted(c context.Context, ctx *cli.Context, p *paystream.Paystream, msg string, res *types.InvokeResult) error {
	notifySuccess(ctx.App.Writer, "%s Tx: %s", msg, res.TransactionHash)

	if !ctx.Bool(waitFlag.Name) {
		return nil
	}

	receipt, err := p.WaitForTransaction(c, res.TransactionHash)
	if err != nil {
		return err
	}
	return printReceipt(ctx, receipt)
}

func printReceipt(ctx *cli.Context, r *types.TransactionReceipt) error {
	w := ctx.App.Writer
	printField(w, "Tx", r.TransactionHash)
	printField(w, "Execution", r.ExecutionStatus)
	printField(w, "Finality", r.FinalityStatus)
	if r.BlockNumber > 0 {
		printField(w, "Block", r.BlockNumber)
	}

	if r.Reverted() {
		return &types.Error{
			Code:    types.ErrTransactionReverted,
			Message: fmt.Sprintf("transaction reverted: %s", r.RevertReason),
			Data:    r,
		}
	}
	return nil
}
