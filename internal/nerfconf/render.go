package nerfconf

import (
	"fmt"
	"io"
	"strings"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Render writes the record in its canonical textual form: one `key = value`
// assignment per line, in record order.
func (r *Record) Render(w io.Writer) error {
	for _, e := range r.entries {
		if _, err := fmt.Fprintf(w, "%s = %s\n", e.Key, formatValue(e.Value, e.raw)); err != nil {
			return err
		}
	}
	return nil
}

// String returns the canonical textual form of the record.
func (r *Record) String() string {
	var sb strings.Builder
	// strings.Builder never returns a write error.
	_ = r.Render(&sb)
	return sb.String()
}

// formatValue renders a single cty value the way the external trainer's
// argument parser expects it. The raw source text wins for numbers so that
// notations like "5e-4" survive a parse/render round trip.
func formatValue(val cty.Value, raw string) string {
	if val.IsNull() {
		return ""
	}
	switch val.Type() {
	case cty.Bool:
		if val.True() {
			return "True"
		}
		return "False"
	case cty.Number:
		if raw != "" {
			return raw
		}
		return val.AsBigFloat().Text('g', -1)
	case cty.String:
		return val.AsString()
	default:
		// Collection-typed values (profile defaults can be lists or maps)
		// have no flat scalar form; render them as JSON, the notation the
		// external trainers' argument parsers take for them.
		b, err := ctyjson.Marshal(val, val.Type())
		if err != nil {
			return ""
		}
		return string(b)
	}
}
