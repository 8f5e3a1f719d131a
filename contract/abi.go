package contract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/KSimonJNR/paystream/types"
)

// Type names as they appear in Cairo 1 and Cairo 0 ABIs.
const (
	TypeU256       = "core::integer::u256"
	TypeU256Cairo0 = "Uint256"
	TypeFelt       = "core::felt252"
	TypeFeltCairo0 = "felt"
	TypeAddress    = "core::starknet::contract_address::ContractAddress"
	TypeClassHash  = "core::starknet::class_hash::ClassHash"
	TypeBool       = "core::bool"
	TypeU8         = "core::integer::u8"
	TypeU16        = "core::integer::u16"
	TypeU32        = "core::integer::u32"
	TypeU64        = "core::integer::u64"
	TypeU128       = "core::integer::u128"
)

// StateMutableView marks read-only functions.
const StateMutableView = "view"

// Param is a named, typed function input or output.
type Param struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type"`
}

// Function is a contract entry point from an ABI.
type Function struct {
	Name            string  `json:"name"`
	Inputs          []Param `json:"inputs"`
	Outputs         []Param `json:"outputs"`
	StateMutability string  `json:"state_mutability,omitempty"`

	// Cairo 0 marks views with a stateMutability field.
	LegacyMutability string `json:"stateMutability,omitempty"`
}

// IsView reports whether the function only reads state.
func (f *Function) IsView() bool {
	return f.StateMutability == StateMutableView || f.LegacyMutability == StateMutableView
}

// ABI is the parsed interface description of one contract.
type ABI struct {
	Functions map[string]*Function
}

type abiEntry struct {
	Type string `json:"type"`
	Name string `json:"name"`

	Inputs           []Param `json:"inputs"`
	Outputs          []Param `json:"outputs"`
	StateMutability  string  `json:"state_mutability"`
	LegacyMutability string  `json:"stateMutability"`

	Items []abiEntry `json:"items"`
}

// ParseABI parses a Starknet ABI. Both a bare entry array and an
// artifact object holding the array under "abi" are accepted.
func ParseABI(data []byte) (*ABI, error) {
	data = bytes.TrimSpace(data)

	var entries []abiEntry
	if len(data) > 0 && data[0] == '{' {
		var artifact struct {
			ABI json.RawMessage `json:"abi"`
		}
		if err := json.Unmarshal(data, &artifact); err != nil {
			return nil, configError("failed to parse abi artifact: %v", err)
		}
		if len(artifact.ABI) == 0 {
			return nil, configError("abi artifact has no abi field")
		}
		data = artifact.ABI

		// some toolchains store the abi as a JSON string
		var inner string
		if err := json.Unmarshal(data, &inner); err == nil {
			data = []byte(inner)
		}
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, configError("failed to parse abi: %v", err)
	}

	abi := &ABI{
		Functions: make(map[string]*Function),
	}
	abi.add(entries)

	return abi, nil
}

func (a *ABI) add(entries []abiEntry) {
	for _, e := range entries {
		switch e.Type {
		case "function":
			a.Functions[e.Name] = &Function{
				Name:             e.Name,
				Inputs:           e.Inputs,
				Outputs:          e.Outputs,
				StateMutability:  e.StateMutability,
				LegacyMutability: e.LegacyMutability,
			}
		case "interface":
			a.add(e.Items)
		}
	}
}

// Function looks up an entry point by name.
func (a *ABI) Function(name string) (*Function, error) {
	fn, ok := a.Functions[name]
	if !ok {
		return nil, &types.Error{
			Code:    types.ErrUnknownMethod,
			Message: fmt.Sprintf("method %q is not in the abi", name),
		}
	}
	return fn, nil
}

// typeKind classifies an ABI type for calldata encoding.
type typeKind int

const (
	kindUnsupported typeKind = iota
	kindFelt
	kindU256
	kindBool
	kindUint
)

func classify(t string) (typeKind, int) {
	switch t {
	case TypeU256, TypeU256Cairo0:
		return kindU256, 256
	case TypeFelt, TypeFeltCairo0, TypeAddress, TypeClassHash:
		return kindFelt, 0
	case TypeBool:
		return kindBool, 1
	case TypeU8:
		return kindUint, 8
	case TypeU16:
		return kindUint, 16
	case TypeU32:
		return kindUint, 32
	case TypeU64:
		return kindUint, 64
	case TypeU128:
		return kindUint, 128
	}

	// structs, enums, arrays and Cairo 0 pointers are never sent by this client
	return kindUnsupported, 0
}

func configError(format string, args ...any) error {
	return &types.Error{
		Code:    types.ErrConfigError,
		Message: fmt.Sprintf(format, args...),
	}
}
