package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-checkin-backend/internal/services"
)

// NewLookupCommand creates the lookup command.
func NewLookupCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup CODE",
		Short: "Show the latest check-in for a code",
		Example: `  checkinctl lookup ABC123
  checkinctl lookup ABC123 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			return opts.withService(cmd.Context(), func(svc *services.CheckinService) error {
				rec, err := svc.Lookup(cmd.Context(), args[0])
				switch {
				case errors.Is(err, services.ErrRecordNotFound):
					return out.Failure(NewExitError(ExitFailure, fmt.Sprintf("no check-in recorded for %q", args[0])))
				case err != nil:
					return out.Failure(WrapExitError(ExitCommandError, "lookup failed", err))
				}
				v := svc.Classify(*rec)
				return out.Success(map[string]any{"record": rec, "verdict": v}, func(w io.Writer) {
					fmt.Fprintf(w, "code:       %s\n", rec.Code)
					fmt.Fprintf(w, "user:       %s\n", rec.UserLabel)
					fmt.Fprintf(w, "device:     %s\n", rec.Device)
					fmt.Fprintf(w, "sentAt:     %s\n", rec.SentAt)
					fmt.Fprintf(w, "receivedAt: %s\n", rec.ReceivedAt)
					fmt.Fprintf(w, "onTime:     %t\n", rec.OnTime)
					fmt.Fprintf(w, "verdict:    %s\n", v.Message)
				})
			})
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(opts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored check-ins in chronological order",
		Example: `  checkinctl list
  checkinctl list --limit 10 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			return opts.withService(cmd.Context(), func(svc *services.CheckinService) error {
				keys, err := svc.Enumerate(cmd.Context())
				if err != nil {
					return out.Failure(WrapExitError(ExitCommandError, "list failed", err))
				}
				total := len(keys)
				// newest last, so --limit keeps the tail
				if limit > 0 && len(keys) > limit {
					keys = keys[len(keys)-limit:]
				}
				return out.Success(map[string]any{"files": keys, "total": total}, func(w io.Writer) {
					for _, k := range keys {
						fmt.Fprintln(w, k)
					}
				})
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "show only the newest N keys (0 = all)")
	return cmd
}

// NewCatCommand creates the cat command.
func NewCatCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "cat KEY",
		Short:   "Print a stored check-in verbatim",
		Example: `  checkinctl cat scan_20250901_080000_a1b2c3.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			return opts.withService(cmd.Context(), func(svc *services.CheckinService) error {
				raw, err := svc.Download(cmd.Context(), args[0])
				switch {
				case errors.Is(err, services.ErrInvalidKey):
					return out.Failure(NewExitError(ExitCommandError, fmt.Sprintf("invalid key %q", args[0])))
				case errors.Is(err, services.ErrFileNotFound):
					return out.Failure(NewExitError(ExitFailure, fmt.Sprintf("no such key %q", args[0])))
				case err != nil:
					return out.Failure(WrapExitError(ExitCommandError, "read failed", err))
				}
				return out.Success(json.RawMessage(raw), func(w io.Writer) {
					_, _ = w.Write(raw)
				})
			})
		},
	}
}
