package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rorical/indexschema/internal/config"
	"github.com/Rorical/indexschema/internal/engine"
	"github.com/Rorical/indexschema/internal/logging"
)

// errMismatch is returned by commands that found schema mismatches. The details have
// already been printed.
var errMismatch = errors.New("schema mismatch")

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type app struct {
	cfg    config.Config
	logger *slog.Logger

	// engine overrides INDEXSCHEMA_ENGINE_VERSION.
	engine string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "indexschema",
		Short:         "Translate field catalogs into index schemas and validate live indexes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&a.engine, "engine", "", "engine version, e.g. 7.17.3 or opensearch:2.11.0 (default: detect or INDEXSCHEMA_ENGINE_VERSION)")

	cmd.AddCommand(newTranslateCmd(a))
	cmd.AddCommand(newValidateCmd(a))
	cmd.AddCommand(newCheckCmd(a))
	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.engine == "" {
		a.engine = cfg.OpenSearch.EngineVersion
	}

	// stdout carries command output; logs go to stderr.
	a.logger = logging.New(logging.Config{
		Level:   cfg.Service.LogLevel,
		Service: logging.DefaultServiceName,
		Env:     cfg.Service.Env,
		Output:  os.Stderr,
	})
	slog.SetDefault(a.logger)
	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))
	return nil
}

// offlineProfile resolves the profile for commands that never talk to an engine.
func (a *app) offlineProfile() (*engine.Profile, error) {
	if a.engine == "" {
		return nil, errors.New("--engine is required")
	}
	v, err := engine.ParseVersion(a.engine)
	if err != nil {
		return nil, err
	}
	return engine.ProfileForVersion(v)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "indexschema %s\n", version)
		},
	}
}
