package derive

import (
	"context"
	"strings"

	"github.com/wdm0006/rawify/pkg/pipeline"
	"github.com/wdm0006/rawify/pkg/record"
)

// Concat sets Target to the values of Fields joined by Sep. Every field
// in Fields must be present. An existing Target is overwritten in place.
type Concat struct {
	Fields []string
	Target string
	Sep    string
}

func (c *Concat) Name() string { return "concat" }

func (c *Concat) Apply(ctx context.Context, r *record.Record) (*record.Record, error) {
	parts := make([]string, len(c.Fields))
	for i, name := range c.Fields {
		v, ok := r.Get(name)
		if !ok {
			return nil, &pipeline.MissingFieldError{Field: name}
		}
		parts[i] = v.Text()
	}
	r.Set(c.Target, record.String(strings.Join(parts, c.Sep)))
	return r, nil
}
