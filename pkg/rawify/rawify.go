// Package rawify converts a tree of Parquet files into a mirrored tree of
// JSON Lines files, one output file per input file.
package rawify

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/wdm0006/rawify/pkg/io/jsonlio"
	"github.com/wdm0006/rawify/pkg/io/parquetio"
	"github.com/wdm0006/rawify/pkg/pipeline"
)

const (
	ParquetExt = ".parquet"
	JSONLExt   = ".jsonl"
)

type Options struct {
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// OutputPath maps a Parquet file under inputRoot to its JSON Lines path
// under outputRoot.
func OutputPath(inputRoot, outputRoot, path string) (string, error) {
	rel, err := filepath.Rel(inputRoot, path)
	if err != nil {
		return "", err
	}
	return filepath.Join(outputRoot, strings.TrimSuffix(rel, ParquetExt)+JSONLExt), nil
}

// ConvertTree walks inputRoot in lexical order and converts every
// *.parquet file. Failures of single files or subdirectories are logged
// and recorded in the summary; only an unusable inputRoot is returned as
// an error.
func ConvertTree(ctx context.Context, inputRoot, outputRoot string, opt Options) (pipeline.Summary, error) {
	log := opt.logger()
	var sum pipeline.Summary
	st, err := os.Stat(inputRoot)
	if err != nil {
		return sum, fmt.Errorf("input root: %w", err)
	}
	if !st.IsDir() {
		return sum, fmt.Errorf("input root %s is not a directory", inputRoot)
	}
	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		return sum, fmt.Errorf("output root: %w", err)
	}

	err = filepath.WalkDir(inputRoot, func(path string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			if path == inputRoot {
				return err
			}
			log.Error("error walking", "path", path, "error", err)
			sum.Add(pipeline.Outcome{Path: path, Status: pipeline.StatusFailed, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ParquetExt) {
			return nil
		}
		outPath, err := OutputPath(inputRoot, outputRoot, path)
		if err != nil {
			return err
		}
		rows, err := convertInto(path, outPath)
		if err != nil {
			log.Error("error processing", "path", path, "error", err)
			sum.Add(pipeline.Outcome{Path: path, Status: pipeline.StatusFailed, Err: err})
			return nil
		}
		log.Debug("converted", "path", path, "out", outPath, "rows", rows)
		sum.Add(pipeline.Outcome{Path: path, Status: pipeline.StatusDone})
		return nil
	})
	if err != nil {
		return sum, err
	}
	log.Info("conversion finished", "input", inputRoot, "output", outputRoot, "converted", sum.Done, "failed", sum.Failed)
	return sum, nil
}

func convertInto(path, outPath string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, err
	}
	return ConvertFile(path, outPath)
}

// ConvertFile loads a whole Parquet file and writes its rows, in order, as
// JSON Lines to outPath. On error no file is left at outPath.
func ConvertFile(inPath, outPath string) (int, error) {
	rd, err := parquetio.OpenReader(inPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", pipeline.ErrMalformed, err)
	}
	recs, err := rd.ReadAll()
	_ = rd.Close()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", pipeline.ErrMalformed, err)
	}
	w, err := jsonlio.NewStreamWriter(outPath)
	if err != nil {
		return 0, err
	}
	for _, r := range recs {
		if err := w.Write(r); err != nil {
			w.Abort()
			return 0, err
		}
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return len(recs), nil
}
