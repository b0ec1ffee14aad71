package utils

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// HexStringToAddress converts a hex string (with or without the "0x" prefix) to a common.Address. Returns the parsed
// address, or an error if the string is not hex or is longer than an address.
func HexStringToAddress(s string) (*common.Address, error) {
	// Remove the 0x prefix and left pad odd-length input so it decodes
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(trimmed)%2 == 1 {
		trimmed = "0" + trimmed
	}
	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse address '%s'", s)
	}
	if len(b) > common.AddressLength {
		return nil, errors.Errorf("could not parse address '%s': value exceeds %d bytes", s, common.AddressLength)
	}

	// Parse the bytes as an address and return them.
	address := common.BytesToAddress(b)
	return &address, nil
}

// HexStringsToAddresses converts hex strings (with or without the "0x" prefix) to common.Address objects. Returns the
// parsed addresses, or an error if one occurs during conversion.
func HexStringsToAddresses(addressHexStrings []string) ([]common.Address, error) {
	addresses := make([]common.Address, len(addressHexStrings))
	for i, s := range addressHexStrings {
		addr, err := HexStringToAddress(s)
		if err != nil {
			return nil, err
		}
		addresses[i] = *addr
	}
	return addresses, nil
}
