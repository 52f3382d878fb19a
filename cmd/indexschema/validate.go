package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rorical/indexschema/internal/codec"
	"github.com/Rorical/indexschema/internal/logging"
	"github.com/Rorical/indexschema/internal/metrics"
	"github.com/Rorical/indexschema/internal/schema"
	"github.com/Rorical/indexschema/internal/validate"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		expectedPath string
		actualPath   string
		index        string
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compare two index creation bodies offline",
		Long: `Compare an expected index creation body with an actual one, both in the
{"settings":{"analysis":...},"mappings":...} shape, using the defaults of the
selected engine. Exits with status 2 when mismatches are found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if expectedPath == "" || actualPath == "" {
				return errors.New("--expected and --actual are required")
			}
			p, err := a.offlineProfile()
			if err != nil {
				return err
			}
			d := codec.NewDialect(p)

			expected, err := readIndex(index, expectedPath, d)
			if err != nil {
				return err
			}
			actual, err := readIndex(index, actualPath, d)
			if err != nil {
				return err
			}

			rep, err := validate.New(p).Validate(expected, actual)
			if err != nil {
				return err
			}
			metrics.ObserveValidation(p.Line.String(), len(rep.Entries))

			out := cmd.OutOrStdout()
			if rep.Valid() {
				fmt.Fprintf(out, "index %q matches (%s)\n", index, p.Line)
				return nil
			}
			fmt.Fprintln(out, rep.Err())
			logging.FromContext(cmd.Context()).Debug("schema mismatch", "index", index, "report_id", rep.ID)
			return errMismatch
		},
	}
	cmd.Flags().StringVar(&expectedPath, "expected", "", "expected creation body (JSON)")
	cmd.Flags().StringVar(&actualPath, "actual", "", "actual creation body (JSON)")
	cmd.Flags().StringVar(&index, "index", "index", "index name used in the report")
	return cmd
}

func readIndex(name, path string, d codec.Dialect) (*schema.Index, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ix, err := schema.DecodeCreateBody(name, raw, d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ix, nil
}
