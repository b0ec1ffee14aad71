package chain

import (
	"math"
	"math/big"

	"github.com/crytic/arbiter/logging"
	"github.com/crytic/arbiter/oracle"
	"github.com/crytic/arbiter/oracle/config"
	"github.com/crytic/arbiter/oracle/seed"
	"github.com/crytic/arbiter/oracle/valuegeneration"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// CheatCodeAddress is the address the arbitrary value cheat code contract is installed at.
var CheatCodeAddress = common.HexToAddress(config.DefaultCheatCodeAddress)

// bitsArgument converts a bit length argument to an int, rejecting values the generator could never accept.
func bitsArgument(bits *big.Int) (int, error) {
	if bits.Sign() <= 0 || bits.Cmp(big.NewInt(valuegeneration.MaxBitLength)) > 0 {
		return 0, errors.Wrapf(valuegeneration.ErrInvalidWidth, "bit length %v is outside [1, %d]", bits, valuegeneration.MaxBitLength)
	}
	return int(bits.Int64()), nil
}

// lengthArgument converts a byte length argument to an int, rejecting values that do not fit one.
func lengthArgument(length *big.Int) (int, error) {
	if !length.IsInt64() || length.Int64() > math.MaxInt {
		return 0, errors.Wrapf(valuegeneration.ErrInvalidLength, "length %v is too large", length)
	}
	return int(length.Int64()), nil
}

// NewCheatCodeContract obtains a CheatCodeContract exposing the oracle's arbitrary storage and value generation to
// contracts under test. The contract is installed at CheatCodeAddress.
// Returns the precompiled contract, or an error if one occurs.
func NewCheatCodeContract(o *oracle.Oracle) (*CheatCodeContract, error) {
	contract := newCheatCodeContract(CheatCodeAddress, logging.GlobalLogger.NewSubLogger("module", logging.CHAIN_SERVICE))
	overlay := o.Storage()
	generator := o.Generator()

	// Define some basic ABI argument types
	typeAddress, err := abi.NewType("address", "", nil)
	if err != nil {
		return nil, err
	}
	typeBytes, err := abi.NewType("bytes", "", nil)
	if err != nil {
		return nil, err
	}
	typeBytes32, err := abi.NewType("bytes32", "", nil)
	if err != nil {
		return nil, err
	}
	typeUint256, err := abi.NewType("uint256", "", nil)
	if err != nil {
		return nil, err
	}
	typeInt256, err := abi.NewType("int256", "", nil)
	if err != nil {
		return nil, err
	}
	typeBool, err := abi.NewType("bool", "", nil)
	if err != nil {
		return nil, err
	}

	// SetArbitraryStorage: Makes unset storage of an account read as generated values
	contract.addMethod(
		"setArbitraryStorage", abi.Arguments{{Type: typeAddress}}, abi.Arguments{},
		func(_ common.Address, inputs []any) ([]any, error) {
			overlay.EnableArbitrary(inputs[0].(common.Address))
			return nil, nil
		},
	)

	// CopyStorage: Copies the storage of one account to another
	contract.addMethod(
		"copyStorage", abi.Arguments{{Type: typeAddress}, {Type: typeAddress}}, abi.Arguments{},
		func(_ common.Address, inputs []any) ([]any, error) {
			return nil, overlay.CopyStorage(inputs[0].(common.Address), inputs[1].(common.Address))
		},
	)

	// Load: Loads a storage slot value from a given account.
	contract.addMethod(
		"load", abi.Arguments{{Type: typeAddress}, {Type: typeBytes32}}, abi.Arguments{{Type: typeBytes32}},
		func(_ common.Address, inputs []any) ([]any, error) {
			account := inputs[0].(common.Address)
			slot := common.Hash(inputs[1].([32]byte))
			return []any{overlay.Read(account, slot)}, nil
		},
	)

	// Store: Sets a storage slot value for a given account.
	contract.addMethod(
		"store", abi.Arguments{{Type: typeAddress}, {Type: typeBytes32}, {Type: typeBytes32}}, abi.Arguments{},
		func(_ common.Address, inputs []any) ([]any, error) {
			account := inputs[0].(common.Address)
			slot := common.Hash(inputs[1].([32]byte))
			value := common.Hash(inputs[2].([32]byte))
			overlay.Write(account, slot, value)
			return nil, nil
		},
	)

	// RandomUint: Returns an arbitrary uint256
	contract.addMethod(
		"randomUint", abi.Arguments{}, abi.Arguments{{Type: typeUint256}},
		func(_ common.Address, _ []any) ([]any, error) {
			value, err := generator.UnsignedOfWidth(valuegeneration.MaxByteWidth)
			if err != nil {
				return nil, err
			}
			return []any{value.ToBig()}, nil
		},
	)

	// RandomUint: Returns an arbitrary uint256 within [min, max]
	contract.addMethod(
		"randomUint", abi.Arguments{{Type: typeUint256}, {Type: typeUint256}}, abi.Arguments{{Type: typeUint256}},
		func(_ common.Address, inputs []any) ([]any, error) {
			value, err := generator.Range(inputs[0].(*big.Int), inputs[1].(*big.Int))
			if err != nil {
				return nil, err
			}
			return []any{value}, nil
		},
	)

	// RandomUint: Returns an arbitrary unsigned integer of the given bit length
	contract.addMethod(
		"randomUint", abi.Arguments{{Type: typeUint256}}, abi.Arguments{{Type: typeUint256}},
		func(_ common.Address, inputs []any) ([]any, error) {
			bits, err := bitsArgument(inputs[0].(*big.Int))
			if err != nil {
				return nil, err
			}
			value, err := generator.UnsignedOfBits(bits)
			if err != nil {
				return nil, err
			}
			return []any{value.ToBig()}, nil
		},
	)

	// RandomInt: Returns an arbitrary int256
	contract.addMethod(
		"randomInt", abi.Arguments{}, abi.Arguments{{Type: typeInt256}},
		func(_ common.Address, _ []any) ([]any, error) {
			value, err := generator.SignedOfWidth(valuegeneration.MaxByteWidth)
			if err != nil {
				return nil, err
			}
			return []any{value}, nil
		},
	)

	// RandomInt: Returns an arbitrary signed integer of the given bit length
	contract.addMethod(
		"randomInt", abi.Arguments{{Type: typeUint256}}, abi.Arguments{{Type: typeInt256}},
		func(_ common.Address, inputs []any) ([]any, error) {
			bits, err := bitsArgument(inputs[0].(*big.Int))
			if err != nil {
				return nil, err
			}
			value, err := generator.SignedOfBits(bits)
			if err != nil {
				return nil, err
			}
			return []any{value}, nil
		},
	)

	// RandomAddress: Returns an arbitrary address other than the caller and the cheat code contract
	contract.addMethod(
		"randomAddress", abi.Arguments{}, abi.Arguments{{Type: typeAddress}},
		func(caller common.Address, _ []any) ([]any, error) {
			addr, err := generator.Address(caller, contract.address)
			if err != nil {
				return nil, err
			}
			return []any{addr}, nil
		},
	)

	// RandomBool: Returns an arbitrary bool
	contract.addMethod(
		"randomBool", abi.Arguments{}, abi.Arguments{{Type: typeBool}},
		func(_ common.Address, _ []any) ([]any, error) {
			return []any{generator.Bool()}, nil
		},
	)

	// RandomBytes: Returns the given number of arbitrary bytes
	contract.addMethod(
		"randomBytes", abi.Arguments{{Type: typeUint256}}, abi.Arguments{{Type: typeBytes}},
		func(_ common.Address, inputs []any) ([]any, error) {
			length, err := lengthArgument(inputs[0].(*big.Int))
			if err != nil {
				return nil, err
			}
			b, err := generator.Bytes(length)
			if err != nil {
				return nil, err
			}
			return []any{b}, nil
		},
	)

	// SetSeed: Reseeds the oracle
	contract.addMethod(
		"setSeed", abi.Arguments{{Type: typeUint256}}, abi.Arguments{},
		func(_ common.Address, inputs []any) ([]any, error) {
			o.Reseed(seed.Seed(common.BigToHash(inputs[0].(*big.Int))))
			return nil, nil
		},
	)

	return contract, nil
}
