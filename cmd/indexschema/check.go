package main

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Rorical/indexschema/internal/opensearch"
	"github.com/Rorical/indexschema/internal/registry"
	"github.com/Rorical/indexschema/internal/translate"
)

const checkConcurrency = 4

func newCheckCmd(a *app) *cobra.Command {
	var (
		catalogs []string
		update   bool
		mode     string
	)
	cmd := &cobra.Command{
		Use:   "check [index...]",
		Short: "Reconcile live indexes with their catalogs",
		Long: `Create missing indexes and validate existing ones against their catalogs.
With --update, mismatching indexes get the desired mapping merged in and are
validated again. Without index arguments every catalog is checked.
Exits with status 2 when any index is rejected.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(catalogs) == 0 {
				catalogs = a.cfg.Schema.Catalogs
			}
			if len(catalogs) == 0 {
				return errNoCatalogs
			}
			if mode == "" {
				mode = a.cfg.Schema.UpdateMode
			}
			if update {
				mode = string(opensearch.ModeUpdate)
			}
			m, err := opensearch.ParseMode(mode)
			if err != nil {
				return err
			}

			reg, err := registry.Load(catalogs)
			if err != nil {
				return err
			}
			targets, err := selectCatalogs(reg, args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			l, err := a.connect(ctx, m)
			if err != nil {
				return err
			}
			defer l.close()
			ch := l.checker()

			var (
				mu       sync.Mutex
				rejected int
			)
			out := cmd.OutOrStdout()
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(checkConcurrency)
			for _, cat := range targets {
				g.Go(func() error {
					res, err := ch.Check(gctx, cat)
					mu.Lock()
					defer mu.Unlock()
					if errors.Is(err, opensearch.ErrRejected) {
						rejected++
						fmt.Fprintf(out, "%s: %s\n%v\n", cat.Index, res.Action, res.Report.Err())
						return nil
					}
					if err != nil {
						return fmt.Errorf("%s: %w", cat.Index, err)
					}
					suffix := ""
					if res.Cached {
						suffix = " (cached)"
					}
					fmt.Fprintf(out, "%s: %s%s\n", cat.Index, res.Action, suffix)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			if rejected > 0 {
				return errMismatch
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&catalogs, "catalog", nil, "YAML field catalogs (repeatable; default INDEXSCHEMA_CATALOG)")
	cmd.Flags().BoolVar(&update, "update", false, "merge the desired mapping into mismatching indexes")
	cmd.Flags().StringVar(&mode, "mode", "", "validate, update or create-only (default INDEXSCHEMA_UPDATE_MODE)")
	return cmd
}

// selectCatalogs returns the catalogs named by args, or all of them when args is empty.
func selectCatalogs(reg *registry.Registry, args []string) ([]*translate.Catalog, error) {
	names := args
	if len(names) == 0 {
		names = reg.Names()
	}
	out := make([]*translate.Catalog, 0, len(names))
	for _, name := range names {
		c, ok := reg.Get(name)
		if !ok {
			return nil, fmt.Errorf("no catalog for index %q", name)
		}
		out = append(out, c)
	}
	return out, nil
}
