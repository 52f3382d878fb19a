package opensearch

import (
	"context"
	"errors"
	"fmt"

	opensearch "github.com/opensearch-project/opensearch-go/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Rorical/indexschema/internal/codec"
	"github.com/Rorical/indexschema/internal/engine"
	"github.com/Rorical/indexschema/internal/logging"
	"github.com/Rorical/indexschema/internal/metrics"
	"github.com/Rorical/indexschema/internal/report"
	"github.com/Rorical/indexschema/internal/schema"
	"github.com/Rorical/indexschema/internal/validate"
)

// ErrRejected is returned when the live index does not satisfy the desired schema and
// the mode does not allow fixing it.
var ErrRejected = errors.New("live index rejected")

type Mode string

const (
	// ModeValidate creates missing indexes and rejects mismatching ones.
	ModeValidate Mode = "validate"
	// ModeUpdate additionally tries to merge the desired mapping into a mismatching index.
	ModeUpdate Mode = "update"
	// ModeCreateOnly creates missing indexes and never validates existing ones.
	ModeCreateOnly Mode = "create-only"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeValidate, ModeUpdate, ModeCreateOnly:
		return m, nil
	case "":
		return ModeValidate, nil
	}
	return "", fmt.Errorf("unknown update mode %q", s)
}

type Action string

const (
	ActionCreated  Action = "created"
	ActionValid    Action = "valid"
	ActionUpdated  Action = "updated"
	ActionRejected Action = "rejected"
	ActionSkipped  Action = "skipped"
)

type Outcome struct {
	Index  string
	Action Action
	Report report.Report
	// Cached is true when validation was skipped because the live schema was already
	// validated clean.
	Cached bool
}

// FingerprintStore remembers live schemas that validated clean.
type FingerprintStore interface {
	Seen(ctx context.Context, index, fingerprint string) (bool, error)
	Remember(ctx context.Context, index, fingerprint string) error
}

// ReportSink receives every report produced by Reconcile.
type ReportSink interface {
	PublishReport(ctx context.Context, r report.Report) error
}

type ReconcileOptions struct {
	Profile *engine.Profile
	Mode    Mode

	Fingerprints FingerprintStore
	Sink         ReportSink
}

// Reconcile brings one index in line with the desired schema: it creates a missing index,
// validates an existing one and, in update mode, merges the desired mapping into it.
// A rejected index returns the outcome together with an error matching ErrRejected and
// carrying the *report.MismatchError.
func Reconcile(ctx context.Context, c *opensearch.Client, desired *schema.Index, opts ReconcileOptions) (Outcome, error) {
	ctx, span := tracer().Start(ctx, "Reconcile")
	defer span.End()
	span.SetAttributes(attribute.String("index", desired.Name), attribute.String("mode", string(opts.Mode)))

	if opts.Profile == nil {
		return Outcome{}, fmt.Errorf("engine profile required")
	}
	if opts.Mode == "" {
		opts.Mode = ModeValidate
	}
	logger := logging.FromContext(ctx).With("index", desired.Name)
	d := codec.NewDialect(opts.Profile)

	out, err := reconcile(ctx, c, desired, opts, d)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.String("action", string(out.Action)))
	if out.Action != "" {
		metrics.ObserveReconcile(string(out.Action))
	}

	if out.Action != "" && out.Action != ActionSkipped && opts.Sink != nil && !out.Cached {
		if perr := opts.Sink.PublishReport(ctx, out.Report); perr != nil {
			logger.Warn("publish report failed", "err", perr)
		}
	}

	switch out.Action {
	case ActionRejected:
		logger.Warn("schema mismatch", "mismatches", len(out.Report.Entries), "report_id", out.Report.ID)
	case "":
	default:
		logger.Info("index reconciled", "action", out.Action, "cached", out.Cached)
	}
	return out, err
}

func reconcile(ctx context.Context, c *opensearch.Client, desired *schema.Index, opts ReconcileOptions, d codec.Dialect) (Outcome, error) {
	out := Outcome{Index: desired.Name}

	exists, err := Exists(ctx, c, desired.Name)
	if err != nil {
		return out, err
	}
	if !exists {
		if err := Create(ctx, c, desired, d); err != nil {
			return out, err
		}
		out.Action = ActionCreated
		out.Report = (&report.Collector{}).Report(desired.Name)
		return out, nil
	}
	if opts.Mode == ModeCreateOnly {
		out.Action = ActionSkipped
		return out, nil
	}

	current, found, err := fetch(ctx, c, desired.Name, opts.Profile)
	if err != nil {
		return out, err
	}
	if !found {
		return out, fmt.Errorf("index %q disappeared while reconciling", desired.Name)
	}

	desiredBody, err := desired.MarshalCreateBody(d)
	if err != nil {
		return out, fmt.Errorf("create body: %w", err)
	}
	fp := current.fingerprint(desiredBody)
	if opts.Fingerprints != nil {
		seen, err := opts.Fingerprints.Seen(ctx, desired.Name, fp)
		if err != nil {
			logging.FromContext(ctx).Warn("fingerprint lookup failed", "index", desired.Name, "err", err)
		} else if seen {
			out.Action, out.Cached = ActionValid, true
			out.Report = (&report.Collector{}).Report(desired.Name)
			return out, nil
		}
	}

	v := validate.New(opts.Profile)
	rep, err := v.Validate(desired, current.index)
	if err != nil {
		return out, err
	}
	metrics.ObserveValidation(opts.Profile.Line.String(), len(rep.Entries))
	out.Report = rep
	if rep.Valid() {
		out.Action = ActionValid
		remember(ctx, opts.Fingerprints, desired.Name, fp)
		return out, nil
	}

	if opts.Mode == ModeUpdate {
		if err := PutMapping(ctx, c, desired, d); err != nil {
			logging.FromContext(ctx).Warn("mapping update refused", "index", desired.Name, "err", err)
		} else {
			updated, found, err := fetch(ctx, c, desired.Name, opts.Profile)
			if err != nil {
				return out, err
			}
			if !found {
				return out, fmt.Errorf("index %q disappeared after mapping update", desired.Name)
			}
			rep, err := v.Validate(desired, updated.index)
			if err != nil {
				return out, err
			}
			out.Report = rep
			if rep.Valid() {
				out.Action = ActionUpdated
				remember(ctx, opts.Fingerprints, desired.Name, updated.fingerprint(desiredBody))
				return out, nil
			}
		}
	}

	out.Action = ActionRejected
	return out, errors.Join(ErrRejected, out.Report.Err())
}

func remember(ctx context.Context, fps FingerprintStore, index, fp string) {
	if fps == nil {
		return
	}
	if err := fps.Remember(ctx, index, fp); err != nil {
		logging.FromContext(ctx).Warn("fingerprint store failed", "index", index, "err", err)
	}
}
