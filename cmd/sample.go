package cmd

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/crytic/arbiter/oracle"
	"github.com/crytic/arbiter/oracle/storage"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

// sampleKinds lists the kinds of values the sample command can draw.
var sampleKinds = []string{"uint", "int", "range", "address", "bytes", "bool", "word"}

// sampleCmd represents the command provider for sample
var sampleCmd = &cobra.Command{
	Use:   "sample " + strings.Join(sampleKinds, "|"),
	Short: "Draws arbitrary values from a seed",
	Long: `Draws arbitrary values from a seed. The same seed and flags always print the same values.

Kinds:
  uint     unsigned integer of --width bytes (or --bits bits)
  int      signed integer of --width bytes (or --bits bits)
  range    integer uniformly drawn from [--min, --max]
  address  address other than the --exclude addresses
  bytes    --length arbitrary bytes
  bool     arbitrary boolean
  word     keyed word for --key, or the arbitrary storage value of --address at --slot`,
	ValidArgs:     sampleKinds,
	Args:          cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:          cmdRunSample,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Add flags to sample command
	err := addSampleFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the sample command", err)
	}

	// Add the sample command and its associated flags to the root command
	rootCmd.AddCommand(sampleCmd)
}

// sampleOptions describes the parameters of a sample request.
type sampleOptions struct {
	// Count is the number of values to draw.
	Count int
	// Width is the byte width of uint and int draws.
	Width int
	// Bits is the bit length of uint and int draws. If non-zero, it takes precedence over Width.
	Bits int
	// Min and Max bound range draws.
	Min, Max *big.Int
	// Length is the length of bytes draws.
	Length int
	// Exclude lists addresses address draws never return.
	Exclude []common.Address
	// Key is the key of word draws.
	Key []byte
	// Address, if set, makes word draws return the arbitrary storage value of this address at Slot.
	Address *common.Address
	// Slot is the storage slot of word draws for Address.
	Slot common.Hash
}

// cmdRunSample executes the sample CLI command
func cmdRunSample(cmd *cobra.Command, args []string) error {
	projectConfig, err := loadProjectConfig(cmd)
	if err != nil {
		return commandError("sample", err)
	}
	closeLogs, err := setupGlobalLogger(projectConfig.Logging)
	if err != nil {
		return commandError("sample", err)
	}
	defer closeLogs()

	opts, err := sampleOptionsFromFlags(cmd, args[0])
	if err != nil {
		return commandError("sample", err)
	}

	o, err := oracle.New(&projectConfig.Oracle, nil)
	if err != nil {
		return commandError("sample", err)
	}

	// Journal the run, if a journal is configured
	label, err := cmd.Flags().GetString("label")
	if err != nil {
		return commandError("sample", err)
	}
	closeJournal, err := startJournaledRun(o, label)
	if err != nil {
		return commandError("sample", err)
	}
	defer closeJournal()

	if err = runSample(cmd.OutOrStdout(), o, args[0], opts); err != nil {
		return commandError("sample", err)
	}
	return nil
}

// runSample draws opts.Count values of the given kind from the oracle and prints one per line.
func runSample(out io.Writer, o *oracle.Oracle, kind string, opts sampleOptions) error {
	if !slices.Contains(sampleKinds, kind) {
		return errors.Errorf("unknown sample kind '%s' (options: %s)", kind, strings.Join(sampleKinds, ", "))
	}
	if opts.Count < 0 {
		return errors.Errorf("count cannot be negative")
	}
	for i := 0; i < opts.Count; i++ {
		value, err := sampleValue(o, kind, opts)
		if err != nil {
			return err
		}
		if _, err = fmt.Fprintln(out, value); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// sampleValue draws a single value of the given kind and formats it for output. Integers are printed in decimal,
// addresses checksummed and bytes and words as 0x-prefixed hex.
func sampleValue(o *oracle.Oracle, kind string, opts sampleOptions) (string, error) {
	generator := o.Generator()
	switch kind {
	case "uint":
		var (
			value *uint256.Int
			err   error
		)
		if opts.Bits != 0 {
			value, err = generator.UnsignedOfBits(opts.Bits)
		} else {
			value, err = generator.UnsignedOfWidth(opts.Width)
		}
		if err != nil {
			return "", err
		}
		return value.Dec(), nil
	case "int":
		var (
			value *big.Int
			err   error
		)
		if opts.Bits != 0 {
			value, err = generator.SignedOfBits(opts.Bits)
		} else {
			value, err = generator.SignedOfWidth(opts.Width)
		}
		if err != nil {
			return "", err
		}
		return value.String(), nil
	case "range":
		value, err := generator.Range(opts.Min, opts.Max)
		if err != nil {
			return "", err
		}
		return value.String(), nil
	case "address":
		addr, err := generator.Address(opts.Exclude...)
		if err != nil {
			return "", err
		}
		return addr.Hex(), nil
	case "bytes":
		b, err := generator.Bytes(opts.Length)
		if err != nil {
			return "", err
		}
		return hexutil.Encode(b), nil
	case "bool":
		return fmt.Sprintf("%t", generator.Bool()), nil
	case "word":
		key := opts.Key
		if opts.Address != nil {
			key = storage.StorageKey(*opts.Address, opts.Slot)
		}
		return generator.KeyedWord(key).Hex(), nil
	}
	return "", errors.Errorf("unsupported sample kind '%s'", kind)
}
