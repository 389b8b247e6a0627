// Package hub downloads dataset snapshots from a Hugging Face compatible
// hub into a local directory.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const DefaultEndpoint = "https://huggingface.co"

// Repository types understood by the hub API.
const (
	RepoTypeModel   = "model"
	RepoTypeDataset = "dataset"
	RepoTypeSpace   = "space"
)

// Client talks to the hub HTTP API.
type Client struct {
	Endpoint   string
	Token      string
	UserAgent  string
	HTTP       *http.Client
	MaxRetries int
	Logger     *slog.Logger
}

// NewClient builds a client from HF_ENDPOINT and HF_TOKEN.
func NewClient() *Client {
	endpoint := os.Getenv("HF_ENDPOINT")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		Endpoint:  strings.TrimRight(endpoint, "/"),
		Token:     os.Getenv("HF_TOKEN"),
		UserAgent: "rawify/0.1",
		HTTP:      &http.Client{Timeout: 30 * time.Minute},
	}
}

type SnapshotOptions struct {
	RepoType      string // defaults to dataset
	Revision      string // defaults to main
	LocalDir      string
	AllowPatterns []string // fnmatch-style; empty selects every file
}

// RepoFile is one entry of a repository listing.
type RepoFile struct {
	Path string `json:"rfilename"`
	Size int64  `json:"size"`
}

type revisionInfo struct {
	SHA      string     `json:"sha"`
	Siblings []RepoFile `json:"siblings"`
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// SnapshotDownload materialises the files of repoID that match the allow
// patterns under opt.LocalDir, keeping their repository paths. Files
// already present with the expected size are not fetched again. It returns
// the local paths of all matching files.
func (c *Client) SnapshotDownload(ctx context.Context, repoID string, opt SnapshotOptions) ([]string, error) {
	if opt.RepoType == "" {
		opt.RepoType = RepoTypeDataset
	}
	if opt.Revision == "" {
		opt.Revision = "main"
	}
	if opt.LocalDir == "" {
		return nil, fmt.Errorf("snapshot download: local dir is required")
	}
	allow, err := CompilePatterns(opt.AllowPatterns)
	if err != nil {
		return nil, fmt.Errorf("snapshot download: %w", err)
	}
	info, err := c.revision(ctx, repoID, opt.RepoType, opt.Revision)
	if err != nil {
		return nil, err
	}
	rev := info.SHA
	if rev == "" {
		rev = opt.Revision
	}
	var paths []string
	for _, f := range info.Siblings {
		if !allow.Match(f.Path) {
			continue
		}
		local, err := localPath(opt.LocalDir, f.Path)
		if err != nil {
			return paths, err
		}
		if st, err := os.Stat(local); err == nil && f.Size > 0 && st.Size() == f.Size {
			c.logger().Debug("already downloaded", "file", f.Path)
			paths = append(paths, local)
			continue
		}
		c.logger().Info("downloading", "repo", repoID, "file", f.Path, "size", f.Size)
		if err := c.download(ctx, c.fileURL(repoID, opt.RepoType, rev, f.Path), local); err != nil {
			return paths, fmt.Errorf("download %s: %w", f.Path, err)
		}
		paths = append(paths, local)
	}
	if len(paths) == 0 {
		c.logger().Warn("no files matched", "repo", repoID, "patterns", opt.AllowPatterns)
	}
	return paths, nil
}

// ListFiles returns every file of the repository at revision.
func (c *Client) ListFiles(ctx context.Context, repoID, repoType, revision string) ([]RepoFile, error) {
	info, err := c.revision(ctx, repoID, repoType, revision)
	if err != nil {
		return nil, err
	}
	return info.Siblings, nil
}

func (c *Client) revision(ctx context.Context, repoID, repoType, revision string) (*revisionInfo, error) {
	u := fmt.Sprintf("%s/api/%ss/%s/revision/%s?blobs=true", c.Endpoint, repoType, repoID, url.PathEscape(revision))
	resp, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	var info revisionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode repo info: %w", err)
	}
	return &info, nil
}

func (c *Client) fileURL(repoID, repoType, revision, file string) string {
	prefix := ""
	switch repoType {
	case RepoTypeDataset:
		prefix = "/datasets"
	case RepoTypeSpace:
		prefix = "/spaces"
	}
	segs := strings.Split(file, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s%s/%s/resolve/%s/%s", c.Endpoint, prefix, repoID, url.PathEscape(revision), strings.Join(segs, "/"))
}

func (c *Client) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := doWithRetry(ctx, c.httpClient(), req, c.MaxRetries)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s: %s", u, resp.Status, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

func (c *Client) download(ctx context.Context, u, dest string) error {
	resp, err := c.get(ctx, u)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".incomplete-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

// localPath joins a repository path under dir, refusing paths that escape it.
func localPath(dir, repoPath string) (string, error) {
	p := filepath.Join(dir, filepath.FromSlash(repoPath))
	rel, err := filepath.Rel(dir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("repository path %q escapes %s", repoPath, dir)
	}
	return p, nil
}

// SubsetPatterns expands a pattern template containing "{subset}" once per
// subset. Without subsets the placeholder matches any subset.
func SubsetPatterns(template string, subsets []string) []string {
	if template == "" {
		template = "{subset}/*"
	}
	if len(subsets) == 0 {
		return []string{strings.ReplaceAll(template, "{subset}", "*")}
	}
	out := make([]string, len(subsets))
	for i, s := range subsets {
		out[i] = strings.ReplaceAll(template, "{subset}", s)
	}
	return out
}
