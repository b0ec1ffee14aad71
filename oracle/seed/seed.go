// Package seed holds the deterministic seed that every arbitrary value is derived from. A Manager owns one active
// seed and the counter of the non-keyed draw stream; keyed derivations depend on the seed and the key only.
package seed

import (
	"encoding/binary"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

// Seed is an opaque 256-bit value from which all generation is derived.
type Seed [32]byte

// DefaultSeed is the process-wide constant seed used when no seed is configured: keccak256("arbiter.default-seed").
// Generated values under this seed are stable across runs and processes.
var DefaultSeed = Seed(common.HexToHash("0xa415eab413cde8fa5e752dbc0cfbc8e3c4e55e4ab5381c34115c4ea87e42414a"))

// ErrInvalidSeed indicates a seed string could not be parsed into a Seed.
var ErrInvalidSeed = errors.New("invalid seed")

// Domain separation tags prefixed to the seed before hashing. Keyed derivations and draw-stream blocks never share a
// preimage layout, so a key can never reproduce a draw block.
const (
	keyedDomain byte = 0x01
	drawDomain  byte = 0x02
	forkDomain  byte = 0x03
)

// Hash returns the seed as a common.Hash.
func (s Seed) Hash() common.Hash {
	return common.Hash(s)
}

// String returns the 0x-prefixed hex representation of the seed. This is the form accepted by ParseSeed and the one
// recorded in run logs.
func (s Seed) String() string {
	return hexutil.Encode(s[:])
}

// ParseSeed parses a seed from either a 0x-prefixed hex string of at most 32 bytes (left-padded with zeros) or a
// decimal integer in [0, 2^256).
// Returns the parsed seed, or ErrInvalidSeed wrapped with context.
func ParseSeed(s string) (Seed, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Seed{}, errors.Wrap(ErrInvalidSeed, "empty seed string")
	}

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := s[2:]
		if len(digits)%2 == 1 {
			digits = "0" + digits
		}
		b, err := hexutil.Decode("0x" + digits)
		if err != nil {
			return Seed{}, errors.Wrapf(ErrInvalidSeed, "could not decode hex seed %q: %v", s, err)
		}
		if len(b) > len(Seed{}) {
			return Seed{}, errors.Wrapf(ErrInvalidSeed, "hex seed %q exceeds 32 bytes", s)
		}
		return Seed(common.BytesToHash(b)), nil
	}

	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Seed{}, errors.Wrapf(ErrInvalidSeed, "seed %q is neither 0x-prefixed hex nor a decimal integer", s)
	}
	if n.Sign() < 0 || n.BitLen() > 256 {
		return Seed{}, errors.Wrapf(ErrInvalidSeed, "decimal seed %q is out of the uint256 range", s)
	}
	return Seed(common.BigToHash(n)), nil
}

// keccak256 hashes the concatenation of the provided byte slices.
func keccak256(data ...[]byte) common.Hash {
	hasher := sha3.NewLegacyKeccak256()
	for _, b := range data {
		hasher.Write(b)
	}
	var h common.Hash
	hasher.Sum(h[:0])
	return h
}

// Manager owns the active seed and the monotonic counter of the non-keyed draw stream. It is not safe for concurrent
// use; parallel test cases should each Fork their own Manager.
type Manager struct {
	// seed is the active seed. Only Reseed mutates it.
	seed Seed

	// counter is the index of the next draw-stream block.
	counter uint64
}

// NewManager creates a Manager with the provided initial seed.
func NewManager(s Seed) *Manager {
	return &Manager{seed: s}
}

// NewDefaultManager creates a Manager using DefaultSeed.
func NewDefaultManager() *Manager {
	return NewManager(DefaultSeed)
}

// CurrentSeed returns the active seed.
func (m *Manager) CurrentSeed() Seed {
	return m.seed
}

// Reseed replaces the active seed and restarts the draw stream. Values already derived from the previous seed are
// unaffected; only subsequent requests observe the new seed.
func (m *Manager) Reseed(s Seed) {
	m.seed = s
	m.counter = 0
}

// Draws returns the number of draw-stream blocks consumed since construction or the last Reseed.
func (m *Manager) Draws() uint64 {
	return m.counter
}

// Keyed derives a 256-bit word from the active seed and the provided key. The result depends only on (seed, key):
// repeated calls with the same key return the same word regardless of how many draws happened in between.
func (m *Manager) Keyed(key []byte) common.Hash {
	return keccak256(m.seed[:], []byte{keyedDomain}, key)
}

// nextBlock returns the next 32-byte block of the draw stream and advances the counter.
func (m *Manager) nextBlock() common.Hash {
	var index [8]byte
	binary.BigEndian.PutUint64(index[:], m.counter)
	m.counter++
	return keccak256(m.seed[:], []byte{drawDomain}, index[:])
}

// Read fills p with bytes from the draw stream, implementing io.Reader. Every call starts on a fresh block and
// consumes ceil(len(p)/32) blocks, so the bytes handed to one caller are never handed to another. It never fails.
func (m *Manager) Read(p []byte) (int, error) {
	for offset := 0; offset < len(p); {
		block := m.nextBlock()
		offset += copy(p[offset:], block[:])
	}
	return len(p), nil
}

// Fork creates an independent Manager whose seed is derived from this manager's active seed and the provided label.
// The child's draws do not advance the parent's stream, and the same (seed, label) pair always yields the same child.
func (m *Manager) Fork(label string) *Manager {
	return NewManager(Seed(keccak256(m.seed[:], []byte{forkDomain}, []byte(label))))
}
