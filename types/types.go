package types

import (
	"fmt"
	"math/big"
	"time"
)

// Network represents supported Starknet networks
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkSepolia Network = "sepolia" // testnet
	NetworkGoerli  Network = "goerli"  // testnet, retired
	NetworkDevnet  Network = "devnet"
)

// Starknet chain ids are the ASCII bytes of these names encoded as a felt.
const (
	chainNameMainnet = "SN_MAIN"
	chainNameSepolia = "SN_SEPOLIA"
	chainNameGoerli  = "SN_GOERLI"
)

// ChainName returns the short string the network uses as its chain id.
// Local devnets report the Sepolia chain id.
func (n Network) ChainName() string {
	switch n {
	case NetworkMainnet:
		return chainNameMainnet
	case NetworkGoerli:
		return chainNameGoerli
	case NetworkSepolia, NetworkDevnet:
		return chainNameSepolia
	default:
		return ""
	}
}

// ChainID returns the chain id felt as it is reported by starknet_chainId.
func (n Network) ChainID() string {
	name := n.ChainName()
	if name == "" {
		return ""
	}
	return "0x" + new(big.Int).SetBytes([]byte(name)).Text(16)
}

func (n Network) IsValid() bool {
	return n.ChainName() != ""
}

func (n Network) IsTestnet() bool {
	return n == NetworkSepolia || n == NetworkGoerli || n == NetworkDevnet
}

func (n Network) String() string {
	return string(n)
}

// Logical contract names used in deployment descriptors.
const (
	ContractPaystream = "paystream"
	ContractMockERC20 = "mock_erc20"
)

// Deployment maps logical contract names to on-chain addresses.
type Deployment map[string]string

// Address returns the deployed address of the named contract.
func (d Deployment) Address(name string) (string, error) {
	addr, ok := d[name]
	if !ok || addr == "" {
		return "", &Error{
			Code:    ErrUnknownContract,
			Message: fmt.Sprintf("contract %q is not in the deployment", name),
		}
	}
	return addr, nil
}

// StreamParams describes a new payment stream as entered by a user.
type StreamParams struct {
	Recipient string `json:"recipient" validate:"required,felt"`

	// Deposit is the human decimal amount, scaled by the token decimals.
	Deposit string `json:"deposit" validate:"required"`

	// StartTime and StopTime are unix seconds.
	StartTime uint64 `json:"start_time" validate:"required"`
	StopTime  uint64 `json:"stop_time" validate:"required,gtfield=StartTime"`

	TokenAddress string `json:"token_address" validate:"required,felt"`
}

// FunctionCall is a single contract entry point invocation.
type FunctionCall struct {
	ContractAddress string   `json:"contract_address"`
	EntryPoint      string   `json:"entry_point"`
	Selector        string   `json:"entry_point_selector"`
	Calldata        []string `json:"calldata"`
}

// InvokeResult is returned by the wallet once a transaction was submitted.
type InvokeResult struct {
	TransactionHash string `json:"transaction_hash"`
}

// Transaction statuses as reported in receipts.
const (
	ExecutionSucceeded = "SUCCEEDED"
	ExecutionReverted  = "REVERTED"
)

// TransactionReceipt carries the subset of a Starknet receipt the client shows.
type TransactionReceipt struct {
	TransactionHash string `json:"transaction_hash"`
	ExecutionStatus string `json:"execution_status"`
	FinalityStatus  string `json:"finality_status"`
	RevertReason    string `json:"revert_reason,omitempty"`
	BlockNumber     uint64 `json:"block_number,omitempty"`
}

func (r *TransactionReceipt) Reverted() bool {
	return r.ExecutionStatus == ExecutionReverted
}

// Balance is a token amount read from a contract.
type Balance struct {
	Raw       *big.Int `json:"raw"`
	Formatted string   `json:"formatted"`
	Decimals  int      `json:"decimals"`
}

// Config contains global configuration for the paystream client
type Config struct {
	Network    Network    `json:"network" validate:"required,network"`
	NodeURL    string     `json:"nodeUrl" validate:"required,url"`
	WalletURL  string     `json:"walletUrl" validate:"required,url"`
	Deployment Deployment `json:"deployment" validate:"required,min=1,dive,required,felt"`

	// ABIDir holds <Name>.json ABI files. Builtin ABIs are used when empty.
	ABIDir string `json:"abiDir,omitempty"`

	// Decimals of the stream token.
	Decimals int `json:"decimals" validate:"gte=0,lte=255"`

	DefaultTimeout time.Duration     `json:"defaultTimeout,omitempty"`
	PollInterval   time.Duration     `json:"pollInterval,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"`
	LogLevel       string            `json:"logLevel,omitempty" validate:"omitempty,oneof=debug info warn error"`
	EnableMetrics  bool              `json:"enableMetrics,omitempty"`
}

// Error types
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Common error codes
const (
	ErrEmptyInput          = "EMPTY_INPUT"
	ErrNotANumber          = "NOT_A_NUMBER"
	ErrTooManyDecimals     = "TOO_MANY_DECIMALS"
	ErrInvalidDecimals     = "INVALID_DECIMALS"
	ErrAmountOutOfRange    = "AMOUNT_OUT_OF_RANGE"
	ErrInvalidArgument     = "INVALID_ARGUMENT"
	ErrUnknownContract     = "UNKNOWN_CONTRACT"
	ErrUnknownMethod       = "UNKNOWN_METHOD"
	ErrUnsupportedType     = "UNSUPPORTED_TYPE"
	ErrSessionClosed       = "SESSION_CLOSED"
	ErrAccountChanged      = "ACCOUNT_CHANGED"
	ErrNetworkMismatch     = "NETWORK_MISMATCH"
	ErrNoAccount           = "NO_ACCOUNT"
	ErrConfigError         = "CONFIG_ERROR"
	ErrTransactionReverted = "TRANSACTION_REVERTED"
)
