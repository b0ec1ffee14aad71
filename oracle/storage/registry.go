package storage

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/exp/slices"
)

// Registry is the set of addresses whose unset storage slots resolve to generated values instead of zero. Membership
// is monotonic: there is no way to remove an address once enabled.
type Registry struct {
	// addresses holds the enabled addresses.
	addresses map[common.Address]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		addresses: make(map[common.Address]struct{}),
	}
}

// Enable places the address in arbitrary mode. Enabling an already enabled address is a no-op.
// Returns true if the address was newly enabled.
func (r *Registry) Enable(addr common.Address) bool {
	if _, exists := r.addresses[addr]; exists {
		return false
	}
	r.addresses[addr] = struct{}{}
	return true
}

// IsEnabled indicates whether the address is in arbitrary mode.
func (r *Registry) IsEnabled(addr common.Address) bool {
	_, exists := r.addresses[addr]
	return exists
}

// Len returns the number of enabled addresses.
func (r *Registry) Len() int {
	return len(r.addresses)
}

// Addresses returns the enabled addresses in ascending byte order.
func (r *Registry) Addresses() []common.Address {
	addresses := make([]common.Address, 0, len(r.addresses))
	for addr := range r.addresses {
		addresses = append(addresses, addr)
	}
	slices.SortFunc(addresses, func(a, b common.Address) int {
		return bytes.Compare(a[:], b[:])
	})
	return addresses
}
