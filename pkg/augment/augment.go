// Package augment rewrites JSON Lines files, adding a text field derived
// from two existing fields of every record.
package augment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/wdm0006/rawify/pkg/io/jsonlio"
	"github.com/wdm0006/rawify/pkg/pipeline"
	"github.com/wdm0006/rawify/pkg/transform/derive"
)

const (
	DefaultInputField  = "input"
	DefaultOutputField = "output"
	DefaultTextField   = "text"
	DefaultSeparator   = "\n"

	jsonlExt = ".jsonl"
)

type Options struct {
	InputField  string
	OutputField string
	TextField   string
	Separator   *string
	Logger      *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.InputField == "" {
		o.InputField = DefaultInputField
	}
	if o.OutputField == "" {
		o.OutputField = DefaultOutputField
	}
	if o.TextField == "" {
		o.TextField = DefaultTextField
	}
	if o.Separator == nil {
		sep := DefaultSeparator
		o.Separator = &sep
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

func (o Options) pipeline() *pipeline.Pipeline {
	return pipeline.NewPipeline().Add(&derive.Concat{
		Fields: []string{o.InputField, o.OutputField},
		Target: o.TextField,
		Sep:    *o.Separator,
	})
}

// AugmentDir processes every *.jsonl file directly inside inputDir and
// writes a file of the same name into outputDir. A file that cannot be
// read or written is logged and counted as failed; a missing inputDir is
// returned as an error.
func AugmentDir(ctx context.Context, inputDir, outputDir string, opt Options) (pipeline.Summary, error) {
	opt = opt.withDefaults()
	var sum pipeline.Summary
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return sum, fmt.Errorf("input dir: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return sum, fmt.Errorf("output dir: %w", err)
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), jsonlExt) {
			continue
		}
		in := filepath.Join(inputDir, e.Name())
		lines, err := AugmentFile(ctx, in, filepath.Join(outputDir, e.Name()), opt)
		if err != nil {
			if ctx.Err() != nil {
				return sum, err
			}
			opt.Logger.Error("error processing", "path", in, "error", err)
			sum.Add(pipeline.Outcome{Path: in, Status: pipeline.StatusFailed, Err: err})
			continue
		}
		sum.Merge(lines)
	}
	opt.Logger.Info("augmentation finished", "input", inputDir, "output", outputDir, "lines", sum.Done, "skipped", sum.Skipped, "failed", sum.Failed)
	return sum, nil
}

// AugmentFile streams inPath line by line into outPath. Malformed lines and
// lines missing a source field are skipped with a diagnostic. The summary
// counts lines; an error means the file as a whole could not be processed
// and nothing was written.
func AugmentFile(ctx context.Context, inPath, outPath string, opt Options) (pipeline.Summary, error) {
	opt = opt.withDefaults()
	src, closer, err := jsonlio.Open(inPath)
	if err != nil {
		return pipeline.Summary{}, err
	}
	defer func() { _ = closer.Close() }()
	sink, err := jsonlio.NewStreamWriter(outPath)
	if err != nil {
		return pipeline.Summary{}, err
	}
	sum, err := pipeline.RunLines(ctx, opt.pipeline(), src, sink, inPath, opt.Logger)
	if err != nil {
		sink.Abort()
		return sum, err
	}
	if err := sink.Close(); err != nil {
		return sum, err
	}
	return sum, nil
}
