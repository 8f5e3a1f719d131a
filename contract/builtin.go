package contract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KSimonJNR/paystream/types"
)

// ABI names, matching the abi/<Name>.json files shipped with the contracts.
const (
	ABIPaystream = "Paystream"
	ABIMockERC20 = "MockERC20"
)

// ABINames maps logical deployment names to ABI names.
var ABINames = map[string]string{
	types.ContractPaystream: ABIPaystream,
	types.ContractMockERC20: ABIMockERC20,
}

const paystreamABI = `
[
  {
    "type": "impl",
    "name": "PaystreamImpl",
    "interface_name": "paystream::IPaystream"
  },
  {
    "type": "struct",
    "name": "core::integer::u256",
    "members": [
      { "name": "low", "type": "core::integer::u128" },
      { "name": "high", "type": "core::integer::u128" }
    ]
  },
  {
    "type": "interface",
    "name": "paystream::IPaystream",
    "items": [
      {
        "type": "function",
        "name": "create_stream",
        "inputs": [
          { "name": "recipient", "type": "core::starknet::contract_address::ContractAddress" },
          { "name": "deposit", "type": "core::integer::u256" },
          { "name": "start_time", "type": "core::integer::u64" },
          { "name": "stop_time", "type": "core::integer::u64" },
          { "name": "token_address", "type": "core::starknet::contract_address::ContractAddress" }
        ],
        "outputs": [ { "type": "core::integer::u256" } ],
        "state_mutability": "external"
      },
      {
        "type": "function",
        "name": "withdraw_from_stream",
        "inputs": [
          { "name": "stream_id", "type": "core::integer::u256" },
          { "name": "amount", "type": "core::integer::u256" }
        ],
        "outputs": [],
        "state_mutability": "external"
      },
      {
        "type": "function",
        "name": "cancel_stream",
        "inputs": [
          { "name": "stream_id", "type": "core::integer::u256" }
        ],
        "outputs": [],
        "state_mutability": "external"
      },
      {
        "type": "function",
        "name": "balance_of",
        "inputs": [
          { "name": "stream_id", "type": "core::integer::u256" },
          { "name": "user", "type": "core::starknet::contract_address::ContractAddress" }
        ],
        "outputs": [ { "type": "core::integer::u256" } ],
        "state_mutability": "view"
      }
    ]
  }
]
`

const mockERC20ABI = `
[
  {
    "type": "function",
    "name": "mint",
    "inputs": [
      { "name": "to", "type": "core::starknet::contract_address::ContractAddress" },
      { "name": "amount", "type": "core::integer::u256" }
    ],
    "outputs": [],
    "state_mutability": "external"
  },
  {
    "type": "function",
    "name": "approve",
    "inputs": [
      { "name": "spender", "type": "core::starknet::contract_address::ContractAddress" },
      { "name": "amount", "type": "core::integer::u256" }
    ],
    "outputs": [ { "type": "core::bool" } ],
    "state_mutability": "external"
  }
]
`

var builtinABIs = map[string]string{
	ABIPaystream: paystreamABI,
	ABIMockERC20: mockERC20ABI,
}

// Builtin returns one of the embedded ABIs.
func Builtin(name string) (*ABI, error) {
	raw, ok := builtinABIs[name]
	if !ok {
		return nil, configError("no builtin abi named %q", name)
	}
	return ParseABI([]byte(raw))
}

// LoadABI reads dir/<name>.json. An empty dir selects the builtin ABI.
func LoadABI(dir, name string) (*ABI, error) {
	if dir == "" {
		return Builtin(name)
	}

	data, err := os.ReadFile(filepath.Join(dir, name+".json"))
	if err != nil {
		return nil, configError("failed to read abi %s: %v", name, err)
	}

	abi, err := ParseABI(data)
	if err != nil {
		return nil, fmt.Errorf("abi %s: %w", name, err)
	}
	return abi, nil
}

// LoadABIs loads the ABI of every known contract present in the deployment.
func LoadABIs(dir string, deployment types.Deployment) (map[string]*ABI, error) {
	abis := make(map[string]*ABI, len(deployment))
	for contractName := range deployment {
		abiName, ok := ABINames[contractName]
		if !ok {
			continue
		}

		abi, err := LoadABI(dir, abiName)
		if err != nil {
			return nil, err
		}
		abis[contractName] = abi
	}
	return abis, nil
}
