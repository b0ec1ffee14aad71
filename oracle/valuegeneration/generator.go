// Package valuegeneration provides the bounded value generator: width-bounded integers, uniform ranges, addresses,
// byte sequences and keyed storage words, all derived deterministically from a seed.Manager.
package valuegeneration

import (
	"math/big"

	"github.com/crytic/arbiter/oracle/seed"
	"github.com/crytic/arbiter/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const (
	// MinByteWidth is the smallest byte width accepted by the width-bounded integer requests.
	MinByteWidth = 1
	// MaxByteWidth is the largest byte width accepted by the width-bounded integer requests.
	MaxByteWidth = 32
	// MaxBitLength is the largest bit length accepted by the bit-bounded integer requests.
	MaxBitLength = 256
)

// GeneratorConfig defines the limits a Generator enforces.
type GeneratorConfig struct {
	// MaxAddressAttempts is the number of candidates Address draws before failing with ErrGenerationExhausted.
	MaxAddressAttempts int

	// MaxBytesLength is the largest length Bytes accepts.
	MaxBytesLength int

	// ExcludedAddresses are never returned by Address, in addition to the per-call exclusions (e.g. the harness
	// controller / cheat code address).
	ExcludedAddresses []common.Address
}

// DefaultGeneratorConfig returns the default generator limits.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		MaxAddressAttempts: 256,
		MaxBytesLength:     1 << 20,
		ExcludedAddresses:  []common.Address{},
	}
}

// Generator produces arbitrary values. All randomness comes from the seed.Manager: non-keyed requests consume the
// manager's draw stream, so two identical requests generally differ, while KeyedWord is a pure function of the seed
// and the key. The Generator holds no state of its own aside from its configuration.
type Generator struct {
	// seeds provides the seed and draw stream all values are derived from.
	seeds *seed.Manager

	// config describes the limits enforced by the generator.
	config GeneratorConfig
}

// NewGenerator creates a Generator drawing from the provided seed manager. Non-positive limits in the config take
// their DefaultGeneratorConfig values, so a zero-value GeneratorConfig behaves like the default one.
func NewGenerator(seeds *seed.Manager, config GeneratorConfig) *Generator {
	defaults := DefaultGeneratorConfig()
	if config.MaxAddressAttempts <= 0 {
		config.MaxAddressAttempts = defaults.MaxAddressAttempts
	}
	if config.MaxBytesLength <= 0 {
		config.MaxBytesLength = defaults.MaxBytesLength
	}
	return &Generator{
		seeds:  seeds,
		config: config,
	}
}

// Seeds returns the seed manager the generator draws from.
func (g *Generator) Seeds() *seed.Manager {
	return g.seeds
}

// Config returns the limits enforced by the generator.
func (g *Generator) Config() GeneratorConfig {
	return g.config
}

// drawBits returns a uniformly distributed non-negative integer below 2^bits. It reads ceil(bits/8) bytes from the
// draw stream and clears the excess high bits of the leading byte.
func (g *Generator) drawBits(bits int) *big.Int {
	buf := make([]byte, (bits+7)/8)
	_, _ = g.seeds.Read(buf)
	if excess := len(buf)*8 - bits; excess > 0 {
		buf[0] &= 0xFF >> excess
	}
	return new(big.Int).SetBytes(buf)
}

// validateWidth checks a byte width and returns the equivalent bit length.
func validateWidth(n int) (int, error) {
	if n < MinByteWidth || n > MaxByteWidth {
		return 0, errors.Wrapf(ErrInvalidWidth, "byte width %d is outside [%d, %d]", n, MinByteWidth, MaxByteWidth)
	}
	return n * 8, nil
}

// validateBits checks a bit length.
func validateBits(bits int) error {
	if bits < 1 || bits > MaxBitLength {
		return errors.Wrapf(ErrInvalidWidth, "bit length %d is outside [1, %d]", bits, MaxBitLength)
	}
	return nil
}

// UnsignedOfWidth returns a value uniformly distributed over [0, 2^(8n) - 1]. A width of 32 covers the full uint256
// range. Returns ErrInvalidWidth if n is outside [1, 32].
func (g *Generator) UnsignedOfWidth(n int) (*uint256.Int, error) {
	bits, err := validateWidth(n)
	if err != nil {
		return nil, err
	}
	return g.UnsignedOfBits(bits)
}

// UnsignedOfBits returns a value uniformly distributed over [0, 2^bits - 1]. Returns ErrInvalidWidth if bits is
// outside [1, 256].
func (g *Generator) UnsignedOfBits(bits int) (*uint256.Int, error) {
	if err := validateBits(bits); err != nil {
		return nil, err
	}
	value, _ := uint256.FromBig(g.drawBits(bits))
	return value, nil
}

// SignedOfWidth returns a value uniformly distributed over [-2^(8n-1), 2^(8n-1) - 1], the two's complement range of
// an n-byte signed integer. Returns ErrInvalidWidth if n is outside [1, 32].
func (g *Generator) SignedOfWidth(n int) (*big.Int, error) {
	bits, err := validateWidth(n)
	if err != nil {
		return nil, err
	}
	return g.SignedOfBits(bits)
}

// SignedOfBits returns a value uniformly distributed over [-2^(bits-1), 2^(bits-1) - 1]. Returns ErrInvalidWidth if
// bits is outside [1, 256].
func (g *Generator) SignedOfBits(bits int) (*big.Int, error) {
	if err := validateBits(bits); err != nil {
		return nil, err
	}
	// A uniform unsigned draw reinterpreted as two's complement is uniform over the signed range.
	return utils.ConstrainIntegerToBitLength(g.drawBits(bits), true, bits), nil
}

// Range returns a value uniformly distributed over the closed interval [min, max]. Bounds may be negative. Candidates
// are drawn with the bit length of the span and rejected when they fall outside it, so no value is favored.
// Returns ErrInvalidRange if min > max or either bound is nil.
func (g *Generator) Range(min *big.Int, max *big.Int) (*big.Int, error) {
	if min == nil || max == nil {
		return nil, errors.Wrap(ErrInvalidRange, "range bounds must not be nil")
	}
	if min.Cmp(max) > 0 {
		return nil, errors.Wrapf(ErrInvalidRange, "minimum %v exceeds maximum %v", min, max)
	}

	// The number of values in the interval is span + 1. A single-valued interval needs no draw.
	span := new(big.Int).Sub(max, min)
	if span.Sign() == 0 {
		return new(big.Int).Set(min), nil
	}

	// Every candidate is below 2^bits and span < 2^bits, so each draw is accepted with probability above 1/2.
	bits := span.BitLen()
	for {
		candidate := g.drawBits(bits)
		if candidate.Cmp(span) <= 0 {
			return candidate.Add(candidate, min), nil
		}
	}
}

// Address returns a freshly drawn 20-byte address that is neither in the provided exclusion list nor in the
// generator's configured exclusions. Candidates are drawn until one qualifies, up to MaxAddressAttempts.
// Returns ErrGenerationExhausted if every attempt produced an excluded address.
func (g *Generator) Address(exclude ...common.Address) (common.Address, error) {
	excluded := make(map[common.Address]struct{}, len(exclude)+len(g.config.ExcludedAddresses))
	for _, addr := range g.config.ExcludedAddresses {
		excluded[addr] = struct{}{}
	}
	for _, addr := range exclude {
		excluded[addr] = struct{}{}
	}

	var buf [common.AddressLength]byte
	for attempt := 0; attempt < g.config.MaxAddressAttempts; attempt++ {
		_, _ = g.seeds.Read(buf[:])
		candidate := common.Address(buf)
		if _, isExcluded := excluded[candidate]; !isExcluded {
			return candidate, nil
		}
	}
	return common.Address{}, errors.Wrapf(ErrGenerationExhausted, "no address outside the %d excluded address(es) after %d attempt(s)", len(excluded), g.config.MaxAddressAttempts)
}

// Bytes returns a newly allocated buffer of exactly length independently drawn bytes. Buffers are never shared
// between calls. Returns ErrInvalidLength if length is negative or exceeds MaxBytesLength.
func (g *Generator) Bytes(length int) ([]byte, error) {
	if length < 0 {
		return nil, errors.Wrapf(ErrInvalidLength, "length %d is negative", length)
	}
	if length > g.config.MaxBytesLength {
		return nil, errors.Wrapf(ErrInvalidLength, "length %d exceeds the maximum of %d", length, g.config.MaxBytesLength)
	}
	buf := make([]byte, length)
	_, _ = g.seeds.Read(buf)
	return buf, nil
}

// Bool returns a uniformly drawn boolean.
func (g *Generator) Bool() bool {
	var buf [1]byte
	_, _ = g.seeds.Read(buf[:])
	return buf[0]&1 == 1
}

// KeyedWord returns a 256-bit word that is a pure function of the active seed and the key. The draw stream is not
// consumed, so the same key yields the same word however many other requests were served in between, until the next
// reseed.
func (g *Generator) KeyedWord(key []byte) common.Hash {
	return g.seeds.Keyed(key)
}
