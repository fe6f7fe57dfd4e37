// Package cli implements checkinctl, the operator tool for inspecting stored
// check-ins. It reads the same environment configuration as the server.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-checkin-backend/internal/checkin"
	"github.com/tbourn/go-checkin-backend/internal/clock"
	"github.com/tbourn/go-checkin-backend/internal/config"
	"github.com/tbourn/go-checkin-backend/internal/registry"
	"github.com/tbourn/go-checkin-backend/internal/repo"
	"github.com/tbourn/go-checkin-backend/internal/services"
	"github.com/tbourn/go-checkin-backend/internal/sysutil"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format   string // "json" | "text"
	SaveDir  string // forces the dir backend rooted here
	Registry string // registry file, overrides REGISTRY_FILE

	loadConfig func() (config.Config, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for checkinctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{loadConfig: config.Load}

	cmd := &cobra.Command{
		Use:   "checkinctl",
		Short: "Inspect QR check-ins",
		Long: `Operator tool for the check-in service.

Reads the same environment as the server (STORE_BACKEND, SAVE_DIR,
REGISTRY_FILE, TIMEZONE, ...) and queries the configured store directly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.SaveDir, "save-dir", "", "read records from this directory instead of the configured store")
	cmd.PersistentFlags().StringVar(&opts.Registry, "registry", "", "registry YAML file (default: REGISTRY_FILE or the built-in codes)")

	// Add subcommands
	cmd.AddCommand(NewLookupCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewCatCommand(opts))
	cmd.AddCommand(NewClassifyCommand(opts))
	cmd.AddCommand(NewCodesCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

func (o *RootOptions) resolveConfig() (config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if o.SaveDir != "" {
		cfg.Store.Backend = repo.BackendDir
		cfg.Store.Dir = o.SaveDir
	}
	return cfg, nil
}

func (o *RootOptions) loadRegistry(cfg config.Config) (*registry.Registry, error) {
	path := sysutil.FirstNonEmpty(o.Registry, cfg.RegistryFile)
	if path == "" {
		return registry.Default(), nil
	}
	reg, err := registry.LoadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load registry", err)
	}
	return reg, nil
}

func (o *RootOptions) builder(cfg config.Config) (*checkin.Builder, error) {
	reg, err := o.loadRegistry(cfg)
	if err != nil {
		return nil, err
	}
	loc, err := clock.LoadZone(cfg.TimeZone)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load time zone", err)
	}
	return checkin.NewBuilder(reg, loc), nil
}

// withService opens the configured store, runs fn and closes the store.
func (o *RootOptions) withService(ctx context.Context, fn func(*services.CheckinService) error) error {
	cfg, err := o.resolveConfig()
	if err != nil {
		return err
	}
	b, err := o.builder(cfg)
	if err != nil {
		return err
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	store, err := repo.Open(openCtx, cfg.Store)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer store.Close()

	return fn(services.NewCheckinService(store, b, nil))
}
