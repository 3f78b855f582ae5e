package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/harbor/internal/telemetry"
	"github.com/papapumpkin/harbor/internal/ui"
	"github.com/papapumpkin/harbor/internal/watch"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry [events.jsonl]",
	Short: "View JSONL telemetry events written by harbor run",
	Long: `Reads and formats a JSONL telemetry file. Without an argument the configured
events_file is read.

With --follow (-f), watches the file for new events (like tail -f).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTelemetry,
}

func init() {
	telemetryCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	rootCmd.AddCommand(telemetryCmd)
}

func runTelemetry(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := cfg.EventsFile
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return errors.New("telemetry: no file given and events_file is not set")
	}
	follow, _ := cmd.Flags().GetBool("follow")

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer f.Close()

	printer := ui.New(cmd.OutOrStdout())
	reader := bufio.NewReader(f)
	if err := printLines(reader, printer); err != nil {
		return fmt.Errorf("telemetry: read %s: %w", path, err)
	}
	if !follow {
		return nil
	}

	ctx, cancel := signalContext()
	defer cancel()
	return tailFollow(ctx, reader, path, printer)
}

// printLines prints every complete line available from r. A trailing partial
// line is printed too; the writer only ever appends whole lines.
func printLines(r *bufio.Reader, printer *ui.Printer) error {
	for {
		line, err := r.ReadString('\n')
		printLine(strings.TrimSpace(line), printer)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func printLine(line string, printer *ui.Printer) {
	if line == "" {
		return
	}
	evt, err := telemetry.Decode([]byte(line))
	if err != nil {
		printer.RawLine(line)
		return
	}
	printer.Event(evt)
}

// tailFollow prints lines appended to path until ctx is cancelled or the
// file is removed.
func tailFollow(ctx context.Context, r *bufio.Reader, path string, printer *ui.Printer) error {
	w, err := watch.New([]string{path})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-w.Changes:
			if !ok {
				return nil
			}
			if c.Removed {
				return fmt.Errorf("telemetry: %s was removed", path)
			}
			if err := printLines(r, printer); err != nil {
				return fmt.Errorf("telemetry: read %s: %w", path, err)
			}
		}
	}
}
