package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rorical/indexschema/internal/codec"
	"github.com/Rorical/indexschema/internal/metrics"
	"github.com/Rorical/indexschema/internal/translate"
)

func newTranslateCmd(a *app) *cobra.Command {
	var (
		catalogPath string
		mappingOnly bool
		pretty      bool
	)
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Print the index creation body for a field catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if catalogPath == "" {
				return errors.New("--catalog is required")
			}
			p, err := a.offlineProfile()
			if err != nil {
				return err
			}
			cat, err := translate.LoadCatalogFile(catalogPath)
			if err != nil {
				return err
			}

			start := time.Now()
			ix, err := cat.Translate(p)
			metrics.ObserveTranslate(time.Since(start))
			if err != nil {
				return err
			}

			d := codec.NewDialect(p)
			var body json.RawMessage
			if mappingOnly {
				body, err = ix.MarshalMapping(d)
			} else {
				body, err = ix.MarshalCreateBody(d)
			}
			if err != nil {
				return err
			}
			if pretty {
				var buf bytes.Buffer
				if err := json.Indent(&buf, body, "", "  "); err != nil {
					return err
				}
				body = buf.Bytes()
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", body)
			return err
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "YAML field catalog")
	cmd.Flags().BoolVar(&mappingOnly, "mapping-only", false, "print only the mappings object")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the output")
	return cmd
}
