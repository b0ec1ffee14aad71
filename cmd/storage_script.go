package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/crytic/arbiter/logging"
	"github.com/crytic/arbiter/logging/colors"
	"github.com/crytic/arbiter/oracle"
	"github.com/crytic/arbiter/oracle/storage"
	"github.com/crytic/arbiter/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// storageScript describes a sequence of storage overlay operations.
type storageScript struct {
	// Seed is the seed to run the script with. If empty, the configured seed is used.
	Seed string `json:"seed" yaml:"seed"`

	// Operations are executed in order.
	Operations []storageOperation `json:"operations" yaml:"operations"`
}

// storageOperation describes a single overlay operation. Op selects which of the remaining fields are used:
// enable(address), read(address, slot), write(address, slot, value) and copy(from, to).
type storageOperation struct {
	Op      string `json:"op" yaml:"op"`
	Address string `json:"address" yaml:"address"`
	Slot    string `json:"slot" yaml:"slot"`
	Value   string `json:"value" yaml:"value"`
	From    string `json:"from" yaml:"from"`
	To      string `json:"to" yaml:"to"`
}

// readStorageScript reads a JSON or YAML storage script, depending on the file extension.
func readStorageScript(path string) (*storageScript, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return parseStorageScript(b, utils.IsYAMLPath(path))
}

// parseStorageScript parses a storage script from JSON, or from YAML if isYAML is set.
func parseStorageScript(b []byte, isYAML bool) (*storageScript, error) {
	var script storageScript
	var err error
	if isYAML {
		err = yaml.Unmarshal(b, &script)
	} else {
		err = json.Unmarshal(b, &script)
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not parse storage script")
	}
	return &script, nil
}

// runStorageScript executes the script's operations against the oracle's storage overlay. Every read is printed as
// "<address> <slot> <value> <origin>", where the origin is "unset" for reads of non-arbitrary slots that were never
// written. A summary of overlay activity is printed last.
func runStorageScript(out io.Writer, o *oracle.Oracle, script *storageScript) error {
	overlay := o.Storage()
	for i, operation := range script.Operations {
		if err := runStorageOperation(out, overlay, operation); err != nil {
			return errors.Wrapf(err, "operation %d (%s) failed", i, operation.Op)
		}
	}

	stats := overlay.Stats()
	_, err := fmt.Fprintf(out, "reads=%d writes=%d generated=%d\n", stats.Reads, stats.Writes, stats.Generated)
	return errors.WithStack(err)
}

// runStorageOperation executes a single storage script operation.
func runStorageOperation(out io.Writer, overlay *storage.Overlay, operation storageOperation) error {
	switch operation.Op {
	case "enable":
		addr, err := utils.HexStringToAddress(operation.Address)
		if err != nil {
			return err
		}
		overlay.EnableArbitrary(*addr)
	case "read":
		addr, slot, err := parseStorageLocation(operation)
		if err != nil {
			return err
		}
		value := overlay.Read(addr, slot)
		origin := "unset"
		if entry, ok := overlay.Entry(addr, slot); ok {
			origin = entry.Origin.String()
		}
		if _, err = fmt.Fprintf(out, "%s %s %s %s\n", addr.Hex(), slot.Hex(), value.Hex(), origin); err != nil {
			return errors.WithStack(err)
		}
	case "write":
		addr, slot, err := parseStorageLocation(operation)
		if err != nil {
			return err
		}
		value, err := parseWord(operation.Value)
		if err != nil {
			return err
		}
		overlay.Write(addr, slot, value)
	case "copy":
		from, err := utils.HexStringToAddress(operation.From)
		if err != nil {
			return err
		}
		to, err := utils.HexStringToAddress(operation.To)
		if err != nil {
			return err
		}
		return overlay.CopyStorage(*from, *to)
	default:
		return errors.Errorf("unknown operation '%s' (options: enable, read, write, copy)", operation.Op)
	}
	return nil
}

// parseStorageLocation parses the address and slot of an operation.
func parseStorageLocation(operation storageOperation) (common.Address, common.Hash, error) {
	addr, err := utils.HexStringToAddress(operation.Address)
	if err != nil {
		return common.Address{}, common.Hash{}, err
	}
	slot, err := parseWord(operation.Slot)
	if err != nil {
		return common.Address{}, common.Hash{}, err
	}
	return *addr, slot, nil
}

// storageSummary describes the arbitrary-mode addresses of the oracle's overlay and how many slots each has memoized.
func storageSummary(o *oracle.Oracle, script *storageScript) *logging.LogBuffer {
	overlay := o.Storage()
	buffer := logging.NewLogBuffer()
	buffer.Append("Storage script finished after ", colors.Bold, len(script.Operations), colors.Reset, " operation(s)")
	for _, addr := range overlay.Registry().Addresses() {
		buffer.Append("\n", colors.GreenBold, "[arbitrary] ", colors.Reset, addr.Hex(), " (",
			len(overlay.Entries(addr)), " memoized slot(s))")
	}
	return buffer
}
