package report

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Entry struct {
	Context Context
	Message string
}

func (e Entry) String() string {
	if e.Context.Len() == 0 {
		return e.Message
	}
	return e.Context.String() + ": " + e.Message
}

// Collector accumulates mismatches over a whole validation pass. It never fails
// mid-pass; callers read the outcome once with Report.
type Collector struct {
	entries []Entry
}

func (c *Collector) Add(ctx Context, msg string) {
	c.entries = append(c.entries, Entry{Context: ctx, Message: msg})
}

func (c *Collector) Addf(ctx Context, format string, args ...any) {
	c.Add(ctx, fmt.Sprintf(format, args...))
}

func (c *Collector) Len() int { return len(c.entries) }

// Report snapshots the collected entries in discovery order.
func (c *Collector) Report(index string) Report {
	entries := make([]Entry, len(c.entries))
	copy(entries, c.entries)
	return Report{ID: uuid.NewString(), Index: index, Entries: entries}
}

type Report struct {
	ID      string
	Index   string
	Entries []Entry
}

func (r Report) Valid() bool { return len(r.Entries) == 0 }

// Err returns a *MismatchError when the report has entries, nil otherwise.
func (r Report) Err() error {
	if r.Valid() {
		return nil
	}
	return &MismatchError{Index: r.Index, Entries: r.Entries}
}

// Messages lists "<path>: <message>" lines in report order.
func (r Report) Messages() []string {
	out := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.String()
	}
	return out
}

// Fields is a generic document form for transports that do not know this package.
func (r Report) Fields() map[string]any {
	entries := make([]any, len(r.Entries))
	for i, e := range r.Entries {
		entries[i] = map[string]any{"path": e.Context.String(), "message": e.Message}
	}
	return map[string]any{
		"id":      r.ID,
		"index":   r.Index,
		"valid":   r.Valid(),
		"entries": entries,
	}
}

// MismatchError renders every entry, grouped under its breadcrumb.
type MismatchError struct {
	Index   string
	Entries []Entry
}

func (e *MismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "index %q does not match the expected schema (%d mismatches):", e.Index, len(e.Entries))

	last := ""
	for i, en := range e.Entries {
		path := en.Context.String()
		if i == 0 || path != last {
			b.WriteString("\n\t")
			if path == "" {
				b.WriteString("(root)")
			} else {
				b.WriteString(path)
			}
			b.WriteString(":")
			last = path
		}
		b.WriteString("\n\t\t")
		b.WriteString(en.Message)
	}
	return b.String()
}
