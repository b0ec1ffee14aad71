package chain

import (
	"encoding/binary"
	"strings"

	"github.com/crytic/arbiter/logging"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"golang.org/x/exp/slices"
)

// cheatCodeMethodHandler describes a function which handles callback for a given contract method. It takes the
// address of the caller, as well as unpacked input values.
// Returns unpacked output values, or an error which is surfaced to the caller as a revert.
type cheatCodeMethodHandler func(caller common.Address, inputs []any) ([]any, error)

// CheatCodeContract defines a struct which represents a pre-compiled contract with various methods that is
// meant to act as a contract.
type CheatCodeContract struct {
	// address defines the address the cheat code contract should be installed at.
	address common.Address

	// methodInfo describes a table of methodId (function selectors) to cheat code methods. This acts as a switch table
	// for different methods in the contract.
	methodInfo map[uint32]*cheatCodeMethod

	// logger describes the logger used to report reverted cheat code calls.
	logger *logging.Logger
}

// cheatCodeMethod defines the method information for a given precompiledContract.
type cheatCodeMethod struct {
	// method is the ABI method definition used to pack and unpack both input and output arguments.
	method abi.Method

	// handler represents the method handler to call with the unpacked input arguments
	handler cheatCodeMethodHandler
}

// newCheatCodeContract returns a new CheatCodeContract installed at the provided address, with no methods.
func newCheatCodeContract(address common.Address, logger *logging.Logger) *CheatCodeContract {
	return &CheatCodeContract{
		address:    address,
		methodInfo: make(map[uint32]*cheatCodeMethod),
		logger:     logger,
	}
}

// addMethod adds a new method to the precompiled contract. Overloads share a name and are told apart by their
// inputs, since the selector is derived from the full signature.
func (c *CheatCodeContract) addMethod(name string, inputs abi.Arguments, outputs abi.Arguments, handler cheatCodeMethodHandler) {
	// Verify a method name was provided
	if name == "" {
		panic("could not add method to precompiled cheatcode contract, empty method name provided")
	}

	// Verify a method handler was provided
	if handler == nil {
		panic("could not add method to precompiled cheatcode contract, nil method handler provided")
	}

	// Set the method information in our method lookup
	method := abi.NewMethod(name, name, abi.Function, "external", false, false, inputs, outputs)
	methodId := binary.LittleEndian.Uint32(method.ID)
	if _, exists := c.methodInfo[methodId]; exists {
		panic("could not add method to precompiled cheatcode contract, duplicate selector for " + method.Sig)
	}
	c.methodInfo[methodId] = &cheatCodeMethod{
		method:  method,
		handler: handler,
	}
}

// Address returns the address the contract is installed at.
func (c *CheatCodeContract) Address() common.Address {
	return c.address
}

// Method returns the ABI definition of the method with the provided signature, e.g. "randomUint(uint256)".
func (c *CheatCodeContract) Method(signature string) (abi.Method, bool) {
	for _, info := range c.methodInfo {
		if info.method.Sig == signature {
			return info.method, true
		}
	}
	return abi.Method{}, false
}

// Methods returns the ABI definitions of every method of the contract, ordered by signature.
func (c *CheatCodeContract) Methods() []abi.Method {
	methods := make([]abi.Method, 0, len(c.methodInfo))
	for _, info := range c.methodInfo {
		methods = append(methods, info.method)
	}
	slices.SortFunc(methods, func(a, b abi.Method) int {
		return strings.Compare(a.Sig, b.Sig)
	})
	return methods
}

// RequiredGas determines the amount of gas necessary to execute the pre-compile with the given input data.
// Returns the gas cost.
func (c *CheatCodeContract) RequiredGas(input []byte) uint64 {
	return 0
}

// Run executes the given pre-compile on behalf of caller with the provided input data.
// Returns the output data from execution. Unknown selectors, malformed input and failed requests return
// vm.ErrExecutionReverted, along with an Error(string) revert reason when one is available.
func (c *CheatCodeContract) Run(caller common.Address, input []byte) ([]byte, error) {
	// Calling any method should require at least a signature
	if len(input) < 4 {
		return []byte{}, vm.ErrExecutionReverted
	}

	// Obtain the method identifier as a uint32
	methodId := binary.LittleEndian.Uint32(input[:4])

	// Ensure we have a method definition that matches our selector.
	methodInfo, methodInfoExists := c.methodInfo[methodId]
	if !methodInfoExists {
		return []byte{}, vm.ErrExecutionReverted
	}

	// This call is targeting a valid method, unpack its arguments
	inputValues, err := methodInfo.method.Inputs.Unpack(input[4:])
	if err != nil {
		return c.revert(methodInfo.method, err)
	}

	// Call the registered method handler.
	outputValues, err := methodInfo.handler(caller, inputValues)
	if err != nil {
		return c.revert(methodInfo.method, err)
	}

	// Return our packed output data.
	output, err := methodInfo.method.Outputs.Pack(outputValues...)
	if err != nil {
		return c.revert(methodInfo.method, err)
	}
	return output, nil
}

// revert logs a failed call and returns its revert data alongside vm.ErrExecutionReverted.
func (c *CheatCodeContract) revert(method abi.Method, err error) ([]byte, error) {
	reason := method.RawName + ": " + err.Error()
	c.logger.Debug("Cheat code call reverted: ", reason)
	return packRevertReason(reason), vm.ErrExecutionReverted
}
