package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-checkin-backend/internal/checkin"
)

// ClassifyOptions holds flags for the classify command.
type ClassifyOptions struct {
	*RootOptions
	Code   string
	At     string // HH:MM:SS in the configured zone
	Date   string // YYYY-MM-DD, defaults to today
	Device string
}

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClassifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Dry-run the verdict for a code at a given time",
		Long: `Build the record the server would store for a code received at the
given wall-clock time, and print it with its verdict. Nothing is stored.`,
		Example: `  checkinctl classify --code ABC123 --at 08:20:00
  checkinctl classify --code XYZ789 --at 08:20:01 --date 2025-09-01 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Code, "code", "", "scanned code (required)")
	_ = cmd.MarkFlagRequired("code")
	cmd.Flags().StringVar(&opts.At, "at", "", "receipt time HH:MM:SS (required)")
	_ = cmd.MarkFlagRequired("at")
	cmd.Flags().StringVar(&opts.Date, "date", "", "receipt date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&opts.Device, "device", "", "scanner name")

	return cmd
}

func runClassify(opts *ClassifyOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	cfg, err := opts.resolveConfig()
	if err != nil {
		return out.Failure(asExitError(err))
	}
	b, err := opts.builder(cfg)
	if err != nil {
		return out.Failure(asExitError(err))
	}

	at, err := receiptTime(opts.Date, opts.At, b.Location(), time.Now())
	if err != nil {
		return out.Failure(WrapExitError(ExitCommandError, "invalid --date/--at", err))
	}

	rec, v := b.Build(checkin.Submission{Code: opts.Code, Device: opts.Device}, at)
	return out.Success(map[string]any{"record": rec, "verdict": v}, func(w io.Writer) {
		fmt.Fprintf(w, "%s at %s: %s (allowed=%t)\n", rec.Code, rec.ReceivedAt, v.Message, v.Allowed)
	})
}

// receiptTime combines an optional date and a clock time in loc. An empty
// date means the current date in loc.
func receiptTime(date, clockTime string, loc *time.Location, now time.Time) (time.Time, error) {
	if date == "" {
		date = now.In(loc).Format("2006-01-02")
	}
	return time.ParseInLocation("2006-01-02 15:04:05", date+" "+clockTime, loc)
}

func asExitError(err error) *ExitError {
	var e *ExitError
	if errors.As(err, &e) {
		return e
	}
	return WrapExitError(ExitCommandError, "command failed", err)
}
