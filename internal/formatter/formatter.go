// Package formatter renders probe results and reconciliation reports.
package formatter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/tordrt/tabrecon/internal/aggregate"
	"github.com/tordrt/tabrecon/internal/reconcile"
	"github.com/tordrt/tabrecon/internal/schema"
)

const (
	formatMarkdown = "markdown"
	formatText     = "text"
	formatJSON     = "json"
)

// Formatter renders every report the engine produces.
type Formatter interface {
	Format(s *schema.Schema) error
	FormatCount(label string, r aggregate.Result) error
	FormatValues(field string, values []string) error
	FormatGroups(dimension string, groups []aggregate.Group) error
	FormatMissing(r reconcile.Result) error
}

// New returns the formatter for format ("text", "markdown" or "json").
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case formatText, "":
		return NewTextFormatter(w), nil
	case formatMarkdown:
		return NewMarkdownFormatter(w), nil
	case formatJSON:
		return NewJSONFormatter(w), nil
	default:
		return nil, fmt.Errorf("invalid format: %s (must be 'text', 'markdown', or 'json')", format)
	}
}

// percent renders p with two decimals, e.g. "40.00%".
func percent(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64) + "%"
}

// status summarizes a probe result in a few words.
func status(r schema.ProbeResult) string {
	switch {
	case !r.Exists && (r.Error == "" || r.Failure == schema.KindNotFound):
		return "not found"
	case !r.Exists:
		return "unknown, " + r.Failure.String() + " failure"
	case r.Source == schema.SourceSample:
		return "exists, columns from sample row"
	case r.Source == schema.SourceRejection:
		return "exists, columns from rejected insert"
	default:
		return "exists, columns unknown"
	}
}
