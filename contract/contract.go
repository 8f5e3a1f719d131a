// Package contract binds deployed Starknet contracts to their ABI and turns
// method calls with Go arguments into wire level function calls.
package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/KSimonJNR/paystream/types"
)

// Invoker is the narrow view of a deployed contract the session works with.
type Invoker interface {
	// Invoke submits a state changing call and returns the transaction hash.
	Invoke(ctx context.Context, method string, args ...any) (*types.InvokeResult, error)

	// Call runs a read-only entry point and returns its decoded outputs.
	Call(ctx context.Context, method string, args ...any) ([]*big.Int, error)
}

// Transport carries encoded function calls to the network.
type Transport interface {
	Invoke(ctx context.Context, calls ...types.FunctionCall) (*types.InvokeResult, error)
	Call(ctx context.Context, call types.FunctionCall) ([]string, error)
}

var _ Invoker = (*Contract)(nil)

// Contract is a deployed contract bound to its ABI.
type Contract struct {
	name      string
	address   string
	abi       *ABI
	transport Transport
}

// New binds address and abi. The address is normalized to its minimal hex form.
func New(name, address string, abi *ABI, transport Transport) (*Contract, error) {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return nil, fmt.Errorf("contract %s: %w", name, err)
	}

	return &Contract{
		name:      name,
		address:   addr,
		abi:       abi,
		transport: transport,
	}, nil
}

func (c *Contract) Name() string {
	return c.name
}

func (c *Contract) Address() string {
	return c.address
}

// FunctionCall encodes a method call without sending it.
func (c *Contract) FunctionCall(method string, args ...any) (*Function, types.FunctionCall, error) {
	fn, err := c.abi.Function(method)
	if err != nil {
		return nil, types.FunctionCall{}, err
	}

	felts, err := EncodeCalldata(fn, args...)
	if err != nil {
		return nil, types.FunctionCall{}, err
	}

	calldata := make([]string, len(felts))
	for i, f := range felts {
		calldata[i] = FormatFelt(f)
	}

	return fn, types.FunctionCall{
		ContractAddress: c.address,
		EntryPoint:      method,
		Selector:        SelectorHex(method),
		Calldata:        calldata,
	}, nil
}

// Invoke implements Invoker.
func (c *Contract) Invoke(ctx context.Context, method string, args ...any) (*types.InvokeResult, error) {
	_, call, err := c.FunctionCall(method, args...)
	if err != nil {
		return nil, err
	}

	return c.transport.Invoke(ctx, call)
}

// Call implements Invoker.
func (c *Contract) Call(ctx context.Context, method string, args ...any) ([]*big.Int, error) {
	fn, call, err := c.FunctionCall(method, args...)
	if err != nil {
		return nil, err
	}

	if !fn.IsView() {
		return nil, &types.Error{
			Code:    types.ErrInvalidArgument,
			Message: fmt.Sprintf("%s is not a view function", method),
		}
	}

	result, err := c.transport.Call(ctx, call)
	if err != nil {
		return nil, err
	}

	felts := make([]*big.Int, len(result))
	for i, r := range result {
		f, err := ParseFelt(r)
		if err != nil {
			return nil, fmt.Errorf("%s result %d: %w", method, i, err)
		}
		felts[i] = f
	}

	return DecodeOutputs(fn, felts)
}
