package chain

import (
	"github.com/crytic/arbiter/oracle/storage"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/tracing"
)

// NewStorageTracingHooks returns execution hooks that record every storage write performed by contract code as an
// explicit overlay write, so values set by contracts are never replaced by generated ones.
func NewStorageTracingHooks(overlay *storage.Overlay) *tracing.Hooks {
	return &tracing.Hooks{
		OnStorageChange: func(addr common.Address, slot common.Hash, prev common.Hash, new common.Hash) {
			overlay.Write(addr, slot, new)
		},
	}
}
