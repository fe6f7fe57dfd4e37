package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// CodeEntry is one registry row.
type CodeEntry struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// NewCodesCommand creates the codes command.
func NewCodesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "codes",
		Short: "List registered codes and their labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			cfg, err := opts.resolveConfig()
			if err != nil {
				return out.Failure(asExitError(err))
			}
			reg, err := opts.loadRegistry(cfg)
			if err != nil {
				return out.Failure(asExitError(err))
			}

			entries := make([]CodeEntry, 0, reg.Len())
			for _, c := range reg.Codes() {
				label, _ := reg.Lookup(c)
				entries = append(entries, CodeEntry{Code: c, Label: label})
			}
			return out.Success(entries, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "CODE\tLABEL")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\n", e.Code, e.Label)
				}
				_ = tw.Flush()
			})
		},
	}
}
