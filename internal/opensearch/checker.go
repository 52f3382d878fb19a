package opensearch

import (
	"context"
	"fmt"
	"time"

	opensearch "github.com/opensearch-project/opensearch-go/v4"

	"github.com/Rorical/indexschema/internal/metrics"
	"github.com/Rorical/indexschema/internal/translate"
)

// Checker reconciles catalogs against one cluster with fixed options.
type Checker struct {
	Client  *opensearch.Client
	Options ReconcileOptions
}

// Check translates the catalog for the cluster's engine line and reconciles the index.
func (c *Checker) Check(ctx context.Context, cat *translate.Catalog) (Outcome, error) {
	if c.Options.Profile == nil {
		return Outcome{}, fmt.Errorf("engine profile required")
	}
	start := time.Now()
	desired, err := cat.Translate(c.Options.Profile)
	metrics.ObserveTranslate(time.Since(start))
	if err != nil {
		return Outcome{Index: cat.Index}, fmt.Errorf("catalog %q: %w", cat.Index, err)
	}
	return Reconcile(ctx, c.Client, desired, c.Options)
}
