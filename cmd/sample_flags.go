package cmd

import (
	"fmt"
	"strings"

	"github.com/crytic/arbiter/oracle/valuegeneration"
	"github.com/crytic/arbiter/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// addSampleFlags adds the various flags for the sample command
func addSampleFlags() error {
	// Prevent alphabetical sorting of usage message
	sampleCmd.Flags().SortFlags = false

	// Config file and seed
	sampleCmd.Flags().String("config", "", ConfigFlagDescription)
	sampleCmd.Flags().String("seed", "", SeedFlagDescription)

	// Number of values
	sampleCmd.Flags().Int("count", 1, "number of values to draw")

	// Integer widths
	sampleCmd.Flags().Int("width", valuegeneration.MaxByteWidth,
		fmt.Sprintf("byte width of uint/int values, in [%d, %d]", valuegeneration.MinByteWidth, valuegeneration.MaxByteWidth))
	sampleCmd.Flags().Int("bits", 0,
		fmt.Sprintf("bit length of uint/int values, in [1, %d] (overrides --width)", valuegeneration.MaxBitLength))

	// Range bounds
	sampleCmd.Flags().String("min", "0", "inclusive lower bound of range values (decimal, hex or exponent notation)")
	sampleCmd.Flags().String("max", "", "inclusive upper bound of range values (decimal, hex or exponent notation)")

	// Bytes length
	sampleCmd.Flags().Int("length", 32, "length of bytes values")

	// Address exclusions
	sampleCmd.Flags().StringSlice("exclude", []string{}, "address(es) never returned by address draws")

	// Keyed words
	sampleCmd.Flags().String("key", "", "key of word values (0x-prefixed hex, or taken as raw text)")
	sampleCmd.Flags().String("address", "", "draw the arbitrary storage value of this address instead of a --key word")
	sampleCmd.Flags().String("slot", "0", "storage slot used with --address")

	// Journal label
	sampleCmd.Flags().String("label", "sample", "label recorded for this run in the journal")

	return nil
}

// sampleOptionsFromFlags reads the sample options for the given kind from the command's flags.
func sampleOptionsFromFlags(cmd *cobra.Command, kind string) (sampleOptions, error) {
	var (
		opts sampleOptions
		err  error
	)
	flags := cmd.Flags()
	if opts.Count, err = flags.GetInt("count"); err != nil {
		return opts, err
	}
	if opts.Width, err = flags.GetInt("width"); err != nil {
		return opts, err
	}
	if opts.Bits, err = flags.GetInt("bits"); err != nil {
		return opts, err
	}
	if opts.Length, err = flags.GetInt("length"); err != nil {
		return opts, err
	}
	if flags.Changed("bits") && opts.Bits == 0 {
		return opts, errors.Wrap(valuegeneration.ErrInvalidWidth, "bit length 0 is outside [1, 256]")
	}

	// Range bounds are only required for range draws
	if kind == "range" {
		minString, _ := flags.GetString("min")
		maxString, _ := flags.GetString("max")
		if maxString == "" {
			return opts, errors.Wrap(valuegeneration.ErrInvalidRange, "--max is required for range values")
		}
		if opts.Min, err = utils.ParseInteger(minString); err != nil {
			return opts, errors.Wrap(valuegeneration.ErrInvalidRange, err.Error())
		}
		if opts.Max, err = utils.ParseInteger(maxString); err != nil {
			return opts, errors.Wrap(valuegeneration.ErrInvalidRange, err.Error())
		}
	}

	// Exclusions
	excluded, _ := flags.GetStringSlice("exclude")
	if opts.Exclude, err = utils.HexStringsToAddresses(excluded); err != nil {
		return opts, err
	}

	// Keyed words
	key, _ := flags.GetString("key")
	if opts.Key, err = parseKey(key); err != nil {
		return opts, err
	}
	if flags.Changed("address") {
		addressString, _ := flags.GetString("address")
		if opts.Address, err = utils.HexStringToAddress(addressString); err != nil {
			return opts, err
		}
		slotString, _ := flags.GetString("slot")
		if opts.Slot, err = parseWord(slotString); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// parseKey parses a word key: 0x-prefixed input is decoded as hex, anything else is used as raw text.
func parseKey(s string) ([]byte, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		b, err := hexutil.Decode("0x" + s[2:])
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse key '%s'", s)
		}
		return b, nil
	}
	return []byte(s), nil
}

// parseWord parses a 256-bit word, such as a storage slot or value, from decimal, hex or exponent notation.
func parseWord(s string) (common.Hash, error) {
	n, err := utils.ParseInteger(s)
	if err != nil {
		return common.Hash{}, err
	}
	if n.Sign() < 0 || n.BitLen() > 256 {
		return common.Hash{}, errors.Errorf("word '%s' is outside [0, 2^256)", s)
	}
	return common.BigToHash(n), nil
}
