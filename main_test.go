package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadgen/config"
	"leadgen/storage"
	"leadgen/utils"
)

func TestReadReferences(t *testing.T) {
	in := `# references for the March run
https://www.ycombinator.com/companies

#smallbiz
#
  https://www.justdial.com/Mumbai/X/nct-1  
`
	refs, err := readReferences(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.ycombinator.com/companies",
		"#smallbiz",
		"https://www.justdial.com/Mumbai/X/nct-1",
	}, refs)
}

func TestCollectReferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.txt")
	require.NoError(t, os.WriteFile(path, []byte("#d2c\n"), 0o644))

	refs, err := collectReferences([]string{" https://acme.io ", ""}, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://acme.io", "#d2c"}, refs)

	_, err = collectReferences(nil, filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestClassifyCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"classify", "--hashtag-platform", "linkedin_hashtag", "#founders", "https://x.com/acme"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "linkedin_hashtag"))
	assert.Contains(t, lines[0], "founders")
	assert.True(t, strings.HasPrefix(lines[1], "twitter"))
}

func TestBuildSinks(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		CSVOutputPath:  filepath.Join(dir, "leads.csv"),
		XLSXOutputPath: filepath.Join(dir, "leads.xlsx"),
	}

	sinks, err := buildSinks(cfg, nopLogger())
	require.NoError(t, err)
	require.Len(t, sinks, 2)
	assert.IsType(t, &storage.CSVWriter{}, sinks[0])
	assert.IsType(t, &storage.XLSXWriter{}, sinks[1])
	for _, s := range sinks {
		assert.NoError(t, s.Close())
	}
}

func TestBuildCompleter(t *testing.T) {
	c, err := buildCompleter(&config.Config{AIProvider: config.AIProviderNone})
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = buildCompleter(&config.Config{AIProvider: config.AIProviderAnthropic})
	assert.Error(t, err, "anthropic without a key")

	c, err = buildCompleter(&config.Config{AIProvider: config.AIProviderOllama, OllamaBaseURL: "http://localhost:11434"})
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func nopLogger() *utils.Logger { return utils.NewNopLogger() }
