package chain

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// revertReasonSelector is the selector of Error(string), the standard revert reason encoding.
var revertReasonSelector = crypto.Keccak256([]byte("Error(string)"))[:4]

// revertReasonArguments describes the single string argument of Error(string).
var revertReasonArguments = func() abi.Arguments {
	typeString, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Type: typeString}}
}()

// packRevertReason encodes the message as Error(string) revert data, which abi.UnpackRevert decodes.
func packRevertReason(message string) []byte {
	packed, err := revertReasonArguments.Pack(message)
	if err != nil {
		return []byte{}
	}
	return append(append([]byte{}, revertReasonSelector...), packed...)
}
