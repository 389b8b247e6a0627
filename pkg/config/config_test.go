package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadFormats(t *testing.T) {
	files := map[string]string{
		"c.json": `{"download": true, "convert": true, "download_root": "/data/nemo", "subsets": ["3", "4plus"]}`,
		"c.yaml": "download: true\nconvert: true\ndownload_root: /data/nemo\nsubsets: [\"3\", \"4plus\"]\n",
		"c.toml": "download = true\nconvert = true\ndownload_root = \"/data/nemo\"\nsubsets = [\"3\", \"4plus\"]\n",
	}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(write(t, name, body))
			require.NoError(t, err)
			assert.True(t, cfg.Download)
			assert.True(t, cfg.Convert)
			assert.False(t, cfg.Inspect)
			assert.Equal(t, []string{"3", "4plus"}, cfg.Subsets)
			assert.Equal(t, DefaultDatasetID, cfg.DatasetID)
			assert.Equal(t, filepath.Join("/data/nemo", "jsonl_output"), cfg.OutputRoot)
			assert.Equal(t, filepath.Join("/data/nemo", "data"), cfg.ConvertInput())
		})
	}
}

func TestLoadInspectIndex(t *testing.T) {
	cfg, err := Load(write(t, "c.yaml", "inspect: true\ninspect_file: x.parquet\ninspect_index: 4\ndownload_root: /d\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.InspectIndex)
	assert.EqualValues(t, 4, *cfg.InspectIndex)
}

func TestValidateFailures(t *testing.T) {
	cases := map[string]string{
		"missing root":     `{"convert": true}`,
		"download no root": `{"download": true, "dataset_id": "org/ds"}`,
		"inspect no file":  `{"inspect": true, "download_root": "/d"}`,
		"augment no dirs":  `{"augment": true, "download_root": "/d"}`,
		"bad repo type":    `{"download_root": "/d", "repo_type": "bucket"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(write(t, "c.json", body))
			assert.Error(t, err)
		})
	}
}

func TestLoadAugmentOnly(t *testing.T) {
	cfg, err := Load(write(t, "c.json", `{"augment": true, "augment_input": "/in", "augment_output": "/out"}`))
	require.NoError(t, err)
	assert.Empty(t, cfg.DownloadRoot)
	assert.Empty(t, cfg.OutputRoot)
	assert.Equal(t, "/in", cfg.AugmentInput)
}

func TestLoadInspectOnly(t *testing.T) {
	cfg, err := Load(write(t, "c.yaml", "inspect: true\ninspect_file: /data/x.parquet\n"))
	require.NoError(t, err)
	assert.Equal(t, "/data/x.parquet", cfg.InspectFile)
}

func TestLoadUnknownExtension(t *testing.T) {
	_, err := Load(write(t, "c.ini", "x=1"))
	assert.ErrorContains(t, err, "unsupported config format")
}
