package chain

import (
	"math/big"
	"testing"

	"github.com/crytic/arbiter/oracle"
	"github.com/crytic/arbiter/oracle/config"
	"github.com/crytic/arbiter/oracle/seed"
	"github.com/crytic/arbiter/utils"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCaller is the account used as the caller of cheat code invocations in tests.
var testCaller = common.HexToAddress("0x7FA9385bE102ac3EAc297483Dd6233D62b3e1496")

// newTestCheatCodeContract creates a cheat code contract over a fresh default-seeded oracle.
func newTestCheatCodeContract(t *testing.T) (*CheatCodeContract, *oracle.Oracle) {
	cfg := config.GetDefaultProjectConfig().Oracle
	o, err := oracle.New(&cfg, nil)
	require.NoError(t, err)
	contract, err := NewCheatCodeContract(o)
	require.NoError(t, err)
	return contract, o
}

// callCheatCode packs a call to the method with the given signature, runs it and returns the raw result.
func callCheatCode(t *testing.T, contract *CheatCodeContract, signature string, args ...any) (abi.Method, []byte, error) {
	method, ok := contract.Method(signature)
	require.True(t, ok, "no method %s", signature)
	packed, err := method.Inputs.Pack(args...)
	require.NoError(t, err)
	output, err := contract.Run(testCaller, append(append([]byte{}, method.ID...), packed...))
	return method, output, err
}

// mustCallCheatCode calls a cheat code that must succeed and returns its unpacked outputs.
func mustCallCheatCode(t *testing.T, contract *CheatCodeContract, signature string, args ...any) []any {
	method, output, err := callCheatCode(t, contract, signature, args...)
	require.NoError(t, err, signature)
	values, err := method.Outputs.Unpack(output)
	require.NoError(t, err, signature)
	return values
}

// TestCheatCodeMethods verifies every cheat code is registered, including all overloads.
func TestCheatCodeMethods(t *testing.T) {
	contract, _ := newTestCheatCodeContract(t)
	assert.Equal(t, CheatCodeAddress, contract.Address())

	var signatures []string
	for _, method := range contract.Methods() {
		signatures = append(signatures, method.Sig)
	}
	assert.Equal(t, []string{
		"copyStorage(address,address)",
		"load(address,bytes32)",
		"randomAddress()",
		"randomBool()",
		"randomBytes(uint256)",
		"randomInt()",
		"randomInt(uint256)",
		"randomUint()",
		"randomUint(uint256)",
		"randomUint(uint256,uint256)",
		"setArbitraryStorage(address)",
		"setSeed(uint256)",
		"store(address,bytes32,bytes32)",
	}, signatures)
	assert.Zero(t, contract.RequiredGas(nil))
}

// TestArbitraryStorageCheatCodes verifies the enable, load and store round trip on slot 55 of the first deployment.
func TestArbitraryStorageCheatCodes(t *testing.T) {
	contract, o := newTestCheatCodeContract(t)
	target := common.HexToAddress("0x5615dEB798BB3E4dFa0139dFa1b3D433Cc23b72f")
	slot := common.BigToHash(big.NewInt(55))

	// Before enabling, unset storage reads as zero
	values := mustCallCheatCode(t, contract, "load(address,bytes32)", target, slot)
	assert.Equal(t, [32]byte{}, values[0])

	mustCallCheatCode(t, contract, "setArbitraryStorage(address)", target)
	assert.True(t, o.Storage().IsArbitrary(target))

	first := mustCallCheatCode(t, contract, "load(address,bytes32)", target, slot)[0].([32]byte)
	second := mustCallCheatCode(t, contract, "load(address,bytes32)", target, slot)[0].([32]byte)
	assert.Equal(t, first, second)
	assert.NotEqual(t, [32]byte{}, first)

	written := common.HexToHash("0x2a")
	mustCallCheatCode(t, contract, "store(address,bytes32,bytes32)", target, slot, written)
	values = mustCallCheatCode(t, contract, "load(address,bytes32)", target, slot)
	assert.Equal(t, [32]byte(written), values[0])

	// The regression slot reads the pinned word
	values = mustCallCheatCode(t, contract, "load(address,bytes32)", target, common.BigToHash(big.NewInt(11)))
	assert.Equal(t, [32]byte(common.HexToHash("0x9c5efdd3b39d8cef12c18a699cd1d1351d10ec2ddbb4db004c4ff7feb3c30989")), values[0])
}

// TestCopyStorageCheatCode verifies copies succeed into plain accounts and revert into arbitrary ones.
func TestCopyStorageCheatCode(t *testing.T) {
	contract, o := newTestCheatCodeContract(t)
	source := common.HexToAddress("0x01")
	target := common.HexToAddress("0x02")
	mustCallCheatCode(t, contract, "setArbitraryStorage(address)", source)

	mustCallCheatCode(t, contract, "copyStorage(address,address)", source, target)
	slot := common.HexToHash("0x07")
	assert.Equal(t, o.Storage().Read(source, slot), o.Storage().Read(target, slot))

	_, output, err := callCheatCode(t, contract, "copyStorage(address,address)", target, source)
	assert.ErrorIs(t, err, vm.ErrExecutionReverted)
	reason, unpackErr := abi.UnpackRevert(output)
	require.NoError(t, unpackErr)
	assert.Contains(t, reason, "copyStorage")
	assert.Contains(t, reason, "arbitrary storage")
}

// TestRandomUintCheatCodes verifies the three randomUint overloads honor their bounds.
func TestRandomUintCheatCodes(t *testing.T) {
	contract, _ := newTestCheatCodeContract(t)

	// The first full-width draw of the default seed is the first draw-stream block
	values := mustCallCheatCode(t, contract, "randomUint()")
	assert.Equal(t, "0xf315a6c5b96aae425afd5b5e53cd24541683cbc963a714b694b66e39ebce9670", "0x"+values[0].(*big.Int).Text(16))

	for i := 0; i < 50; i++ {
		value := mustCallCheatCode(t, contract, "randomUint(uint256,uint256)", big.NewInt(10), big.NewInt(20))[0].(*big.Int)
		assert.True(t, value.Cmp(big.NewInt(10)) >= 0 && value.Cmp(big.NewInt(20)) <= 0)

		value = mustCallCheatCode(t, contract, "randomUint(uint256)", big.NewInt(12))[0].(*big.Int)
		assert.Less(t, value.Int64(), int64(1<<12))
	}

	// Inverted ranges and invalid bit lengths revert
	_, output, err := callCheatCode(t, contract, "randomUint(uint256,uint256)", big.NewInt(101), big.NewInt(100))
	assert.ErrorIs(t, err, vm.ErrExecutionReverted)
	reason, unpackErr := abi.UnpackRevert(output)
	require.NoError(t, unpackErr)
	assert.Contains(t, reason, "invalid range")

	for _, bits := range []int64{0, 257} {
		_, _, err = callCheatCode(t, contract, "randomUint(uint256)", big.NewInt(bits))
		assert.ErrorIs(t, err, vm.ErrExecutionReverted)
	}
}

// TestRandomIntCheatCodes verifies signed draws stay within their two's complement range.
func TestRandomIntCheatCodes(t *testing.T) {
	contract, _ := newTestCheatCodeContract(t)
	min, max := utils.GetIntegerConstraints(true, 256)
	min8, max8 := utils.GetIntegerConstraints(true, 8)
	for i := 0; i < 50; i++ {
		value := mustCallCheatCode(t, contract, "randomInt()")[0].(*big.Int)
		assert.True(t, value.Cmp(min) >= 0 && value.Cmp(max) <= 0)

		value = mustCallCheatCode(t, contract, "randomInt(uint256)", big.NewInt(8))[0].(*big.Int)
		assert.True(t, value.Cmp(min8) >= 0 && value.Cmp(max8) <= 0)
	}
}

// TestRandomAddressCheatCode verifies generated addresses exclude the caller and the cheat code contract.
func TestRandomAddressCheatCode(t *testing.T) {
	contract, _ := newTestCheatCodeContract(t)
	for i := 0; i < 20; i++ {
		addr := mustCallCheatCode(t, contract, "randomAddress()")[0].(common.Address)
		assert.NotEqual(t, testCaller, addr)
		assert.NotEqual(t, CheatCodeAddress, addr)
	}
}

// TestRandomBoolAndBytesCheatCodes verifies bool and byte draws, including length validation.
func TestRandomBoolAndBytesCheatCodes(t *testing.T) {
	contract, _ := newTestCheatCodeContract(t)
	seen := map[bool]bool{}
	for i := 0; i < 64; i++ {
		seen[mustCallCheatCode(t, contract, "randomBool()")[0].(bool)] = true
	}
	assert.Len(t, seen, 2)

	first := mustCallCheatCode(t, contract, "randomBytes(uint256)", big.NewInt(10))[0].([]byte)
	second := mustCallCheatCode(t, contract, "randomBytes(uint256)", big.NewInt(10))[0].([]byte)
	assert.Len(t, first, 10)
	assert.NotEqual(t, first, second)

	_, _, err := callCheatCode(t, contract, "randomBytes(uint256)", new(big.Int).Lsh(big.NewInt(1), 200))
	assert.ErrorIs(t, err, vm.ErrExecutionReverted)
}

// TestSetSeedCheatCode verifies reseeding through the contract replays draws.
func TestSetSeedCheatCode(t *testing.T) {
	contract, o := newTestCheatCodeContract(t)
	mustCallCheatCode(t, contract, "setSeed(uint256)", big.NewInt(7))
	assert.Equal(t, seed.Seed(common.BigToHash(big.NewInt(7))), o.Seeds().CurrentSeed())

	first := mustCallCheatCode(t, contract, "randomUint()")[0].(*big.Int)
	mustCallCheatCode(t, contract, "setSeed(uint256)", big.NewInt(7))
	replay := mustCallCheatCode(t, contract, "randomUint()")[0].(*big.Int)
	assert.Equal(t, first, replay)
}

// TestUnknownSelector verifies short input and unknown selectors revert without data.
func TestUnknownSelector(t *testing.T) {
	contract, _ := newTestCheatCodeContract(t)
	output, err := contract.Run(testCaller, []byte{0x01, 0x02})
	assert.ErrorIs(t, err, vm.ErrExecutionReverted)
	assert.Empty(t, output)

	output, err = contract.Run(testCaller, []byte{0xde, 0xad, 0xbe, 0xef})
	assert.ErrorIs(t, err, vm.ErrExecutionReverted)
	assert.Empty(t, output)

	// Truncated arguments revert rather than panic
	method, ok := contract.Method("load(address,bytes32)")
	require.True(t, ok)
	_, err = contract.Run(testCaller, append(append([]byte{}, method.ID...), 0x01))
	assert.ErrorIs(t, err, vm.ErrExecutionReverted)
}

// TestStorageTracingHooks verifies contract storage writes are recorded as explicit overlay writes.
func TestStorageTracingHooks(t *testing.T) {
	_, o := newTestCheatCodeContract(t)
	addr := common.HexToAddress("0xabc")
	slot := common.HexToHash("0x01")
	o.Storage().EnableArbitrary(addr)

	hooks := NewStorageTracingHooks(o.Storage())
	generated := o.Storage().Read(addr, slot)
	hooks.OnStorageChange(addr, slot, generated, common.Hash{})

	assert.Equal(t, common.Hash{}, o.Storage().Read(addr, slot))
	entry, ok := o.Storage().Entry(addr, slot)
	require.True(t, ok)
	assert.Equal(t, "explicit", entry.Origin.String())
}
