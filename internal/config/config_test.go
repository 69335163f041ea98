package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())
	assert.Equal(t, ":8088", cfg.ListenAddr)
	assert.Equal(t, "http://localhost:9090", cfg.TrafficInspector.URL)
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().TrafficInspector.URL, cfg.TrafficInspector.URL)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := `
listen_addr: ":9999"
traffic_inspector:
  url: "http://collector.example.com"
  path_send_body: "/ingest/body"
  path_send_meta: "/ingest/meta"
bloom_filter:
  size: 5000
  error_rate: 0.02
max_response_size: 1048576
matching_domains:
  - ".example.com"
labels:
  env: "test"
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "http://collector.example.com", cfg.TrafficInspector.URL)
	assert.Equal(t, 5000, cfg.BloomFilter.Size)
	assert.Equal(t, 0.02, cfg.BloomFilter.ErrorRate)
	assert.Equal(t, int64(1048576), cfg.MaxResponseSize)
	assert.Equal(t, []string{".example.com"}, cfg.MatchingDomains)
	assert.Equal(t, "test", cfg.Labels["env"])
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidBloomConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bloom_filter:\n  size: 0\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverridesWinOverYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":1111\"\n"), 0o600))

	t.Setenv("TRAFFICMIRRORCTL_LISTEN_ADDR", ":2222")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":2222", cfg.ListenAddr)
}

func TestToOptionsMapsFields(t *testing.T) {
	cfg := Default()
	cfg.MatchingDomains = []string{".example.com"}

	opts := cfg.ToOptions()
	assert.Equal(t, cfg.TrafficInspector.URL, opts.TrafficInspector.URL)
	assert.Equal(t, cfg.BloomFilter.Size, opts.BloomFilter.Size)
	assert.Equal(t, []string{".example.com"}, opts.MatchingDomains)
}
