package pipeline

import (
	"context"

	"github.com/wdm0006/rawify/pkg/record"
)

// Transform rewrites a single record. Returning an error skips the record.
type Transform interface {
	Name() string
	Apply(ctx context.Context, r *record.Record) (*record.Record, error)
}

// Pipeline composes a sequence of Transforms.
type Pipeline struct {
	steps []Transform
}

func NewPipeline() *Pipeline { return &Pipeline{} }

func (p *Pipeline) Add(t Transform) *Pipeline {
	p.steps = append(p.steps, t)
	return p
}

func (p *Pipeline) Len() int { return len(p.steps) }

func (p *Pipeline) Run(ctx context.Context, r *record.Record) (*record.Record, error) {
	var err error
	cur := r
	for _, t := range p.steps {
		cur, err = t.Apply(ctx, cur)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}
