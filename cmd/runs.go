package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/crytic/arbiter/oracle/journal"
	"github.com/crytic/arbiter/version"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// runsCmd represents the command provider for runs
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspects the run journal",
	Long:  `Inspects the journal of recorded runs, to find the seed needed to replay a run`,
}

// runsListCmd represents the command provider for runs list
var runsListCmd = &cobra.Command{
	Use:           "list",
	Short:         "Lists recorded runs",
	Args:          cobra.NoArgs,
	RunE:          cmdRunRunsList,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// runsShowCmd represents the command provider for runs show
var runsShowCmd = &cobra.Command{
	Use:           "show <id>",
	Short:         "Shows a recorded run and how to replay it",
	Args:          cobra.ExactArgs(1),
	RunE:          cmdRunRunsShow,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Both subcommands locate the journal the same way
	for _, c := range []*cobra.Command{runsListCmd, runsShowCmd} {
		c.Flags().String("config", "", ConfigFlagDescription)
		c.Flags().String("dir", "", "journal directory (overrides the config file)")
		runsCmd.AddCommand(c)
	}
	rootCmd.AddCommand(runsCmd)
}

// openJournalForCommand opens the journal named by --dir, or by the project configuration otherwise.
func openJournalForCommand(cmd *cobra.Command) (*journal.Journal, error) {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return nil, err
	}
	if dir == "" {
		projectConfig, err := loadProjectConfig(cmd)
		if err != nil {
			return nil, err
		}
		dir = projectConfig.Oracle.JournalDirectory
	}
	if dir == "" {
		return nil, errors.New("no journal directory configured, provide one with --dir or the journalDirectory option")
	}
	return journal.Open(dir, version.Version)
}

// closeJournalForCommand closes a journal opened by a runs command, logging a failure to close it.
func closeJournalForCommand(j *journal.Journal) {
	if err := j.Close(); err != nil {
		cmdLogger.Error("Failed to close the run journal", err)
	}
}

// cmdRunRunsList executes the runs list CLI command
func cmdRunRunsList(cmd *cobra.Command, args []string) error {
	j, err := openJournalForCommand(cmd)
	if err != nil {
		return commandError("runs list", err)
	}
	defer closeJournalForCommand(j)

	records, err := j.ListRuns()
	if err != nil {
		return commandError("runs list", err)
	}
	if err = printRuns(cmd.OutOrStdout(), records); err != nil {
		return commandError("runs list", err)
	}
	return nil
}

// cmdRunRunsShow executes the runs show CLI command
func cmdRunRunsShow(cmd *cobra.Command, args []string) error {
	j, err := openJournalForCommand(cmd)
	if err != nil {
		return commandError("runs show", err)
	}
	defer closeJournalForCommand(j)

	record, err := j.GetRun(args[0])
	if err != nil {
		return commandError("runs show", err)
	}

	if err = journal.CheckCompatibility(record, version.Version); err != nil {
		cmdLogger.Warn("Replaying this run may not reproduce its values", err)
	}
	if err = printRun(cmd.OutOrStdout(), record); err != nil {
		return commandError("runs show", err)
	}
	return nil
}

// printRuns prints one line per run: its ID, start time, label, seed and number of reseeds.
func printRuns(out io.Writer, records []*journal.RunRecord) error {
	for _, record := range records {
		_, err := fmt.Fprintf(out, "%s  %s  %-12s %s  (%d reseeds)\n",
			record.ID, record.StartTime().UTC().Format(time.RFC3339), record.Label, record.Seed, len(record.Reseeds))
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// printRun prints the details of a run, ending with the seed flag that replays it.
func printRun(out io.Writer, record *journal.RunRecord) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Run:      %s\n", record.ID)
	fmt.Fprintf(&b, "Label:    %s\n", record.Label)
	fmt.Fprintf(&b, "Started:  %s\n", record.StartTime().UTC().Format(time.RFC3339Nano))
	fmt.Fprintf(&b, "Version:  %s\n", record.ToolVersion)
	fmt.Fprintf(&b, "Seed:     %s\n", record.Seed)
	for i, reseed := range record.Reseeds {
		fmt.Fprintf(&b, "Reseed %d: %s at %s\n", i+1, reseed.Seed, time.Unix(0, reseed.At).UTC().Format(time.RFC3339Nano))
	}
	fmt.Fprintf(&b, "Replay with: --seed %s\n", record.Seed)

	_, err := io.WriteString(out, b.String())
	return errors.WithStack(err)
}
