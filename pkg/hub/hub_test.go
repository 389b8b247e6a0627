package hub

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { RetryBaseDelay = 0 }

type fakeHub struct {
	files    map[string]string
	throttle int32 // number of 429 responses before serving the listing
	gets     atomic.Int32
	auth     string
}

func (f *fakeHub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/datasets/org/ds/revision/main", func(w http.ResponseWriter, r *http.Request) {
		f.auth = r.Header.Get("Authorization")
		if f.throttle > 0 {
			f.throttle--
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		assert.Equal(t, "true", r.URL.Query().Get("blobs"))
		info := revisionInfo{SHA: "abc123"}
		for p, body := range f.files {
			info.Siblings = append(info.Siblings, RepoFile{Path: p, Size: int64(len(body))})
		}
		_ = json.NewEncoder(w).Encode(info)
	})
	mux.HandleFunc("/datasets/org/ds/resolve/abc123/", func(w http.ResponseWriter, r *http.Request) {
		f.gets.Add(1)
		p := r.URL.Path[len("/datasets/org/ds/resolve/abc123/"):]
		body, ok := f.files[p]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, body)
	})
	return mux
}

func testClient(url string) *Client {
	return &Client{Endpoint: url, Token: "secret", HTTP: http.DefaultClient, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestSnapshotDownloadFiltersAndSkipsExisting(t *testing.T) {
	fh := &fakeHub{files: map[string]string{
		"3/part_000000.parquet":     "three-0",
		"3/part_000001.parquet":     "three-1",
		"4plus/part_000000.parquet": "four-0",
		"README.md":                 "readme",
	}, throttle: 2}
	srv := httptest.NewServer(fh.handler(t))
	defer srv.Close()

	dir := t.TempDir()
	c := testClient(srv.URL)
	opt := SnapshotOptions{LocalDir: dir, AllowPatterns: SubsetPatterns("{subset}/part_000000.parquet", []string{"3", "4plus"})}
	paths, err := c.SnapshotDownload(context.Background(), "org/ds", opt)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
	assert.Equal(t, "Bearer secret", fh.auth)

	b, err := os.ReadFile(filepath.Join(dir, "3", "part_000000.parquet"))
	require.NoError(t, err)
	assert.Equal(t, "three-0", string(b))
	_, err = os.Stat(filepath.Join(dir, "3", "part_000001.parquet"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "README.md"))
	assert.True(t, os.IsNotExist(err))
	assert.EqualValues(t, 2, fh.gets.Load())

	_, err = c.SnapshotDownload(context.Background(), "org/ds", opt)
	require.NoError(t, err)
	assert.EqualValues(t, 2, fh.gets.Load(), "existing files must not be fetched again")
}

func TestSnapshotDownloadReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	_, err := testClient(srv.URL).SnapshotDownload(context.Background(), "org/missing", SnapshotOptions{LocalDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern, name string
		want          bool
	}{
		{"3/part_000000.parquet", "3/part_000000.parquet", true},
		{"3/*", "3/a/b.parquet", true},
		{"*.parquet", "data/x.parquet", true},
		{"data/?.parquet", "data/x.parquet", true},
		{"data/[!x].parquet", "data/x.parquet", false},
		{"data/[xy].parquet", "data/y.parquet", true},
		{"3/part_000000.parquet", "30/part_000000.parquet", false},
		{"a.b", "axb", false},
	}
	for _, c := range cases {
		got, err := Match(c.pattern, c.name)
		require.NoError(t, err, c.pattern)
		assert.Equal(t, c.want, got, "%s ~ %s", c.pattern, c.name)
	}
	all, err := CompilePatterns(nil)
	require.NoError(t, err)
	assert.True(t, all.Match("anything"))

	set, err := CompilePatterns([]string{"3/*", "*.json"})
	require.NoError(t, err)
	assert.True(t, set.Match("3/a.parquet"))
	assert.True(t, set.Match("meta/info.json"))
	assert.False(t, set.Match("4/a.parquet"))
}

func TestMatchBadPattern(t *testing.T) {
	for _, p := range []string{"data/[!].parquet", "data/[].parquet"} {
		_, err := Match(p, "data/x.parquet")
		assert.ErrorIs(t, err, ErrBadPattern, p)
		_, err = CompilePatterns([]string{"ok/*", p})
		assert.ErrorIs(t, err, ErrBadPattern, p)
	}
}

func TestSnapshotDownloadBadPattern(t *testing.T) {
	fh := &fakeHub{files: map[string]string{"3/a.parquet": "x"}}
	var listed atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		listed.Add(1)
		fh.handler(t).ServeHTTP(w, r)
	}))
	defer srv.Close()
	dir := t.TempDir()
	paths, err := testClient(srv.URL).SnapshotDownload(context.Background(), "org/ds", SnapshotOptions{LocalDir: dir, AllowPatterns: []string{"3/[!]*"}})
	require.ErrorIs(t, err, ErrBadPattern)
	assert.Contains(t, err.Error(), "3/[!]*")
	assert.Empty(t, paths)
	assert.Zero(t, listed.Load())
}

func TestSubsetPatterns(t *testing.T) {
	assert.Equal(t, []string{"3/x", "4plus/x"}, SubsetPatterns("{subset}/x", []string{"3", "4plus"}))
	assert.Equal(t, []string{"*/x"}, SubsetPatterns("{subset}/x", nil))
	assert.Equal(t, []string{"data/*"}, SubsetPatterns("data/*", nil))
}

func TestLocalPathRejectsEscape(t *testing.T) {
	_, err := localPath("/tmp/x", "../etc/passwd")
	assert.Error(t, err)
}

func TestFileURL(t *testing.T) {
	c := &Client{Endpoint: "https://hub.example"}
	assert.Equal(t, "https://hub.example/datasets/org/ds/resolve/main/a%20b/c.parquet", c.fileURL("org/ds", RepoTypeDataset, "main", "a b/c.parquet"))
	assert.Equal(t, "https://hub.example/org/m/resolve/v1/w.bin", c.fileURL("org/m", RepoTypeModel, "v1", "w.bin"))
}
