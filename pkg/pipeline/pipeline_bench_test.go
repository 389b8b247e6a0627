package pipeline

import (
	"context"
	"testing"

	"github.com/wdm0006/rawify/pkg/record"
)

type noopTransform struct{}

func (n *noopTransform) Name() string { return "noop" }
func (n *noopTransform) Apply(ctx context.Context, r *record.Record) (*record.Record, error) {
	return r, nil
}

func BenchmarkPipeline(b *testing.B) {
	r := record.FromFields(record.Field{Name: "a", Value: record.Int(1)}, record.Field{Name: "s", Value: record.String("x")})
	p := NewPipeline().Add(&noopTransform{}).Add(&noopTransform{})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Run(context.Background(), r)
	}
}
