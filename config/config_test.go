package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `{
		"url": "http://ApiServer",
		"timeoutMs": 2500,
		"parallel": 4,
		"run": ["^Homepage/"],
		"skip": ["Post"],
		"xlsxReport": "out.xlsx"
	}`)
	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://ApiServer", f.URL)
	assert.Equal(t, ldvalue.NewOptionalInt(2500), f.TimeoutMS)
	assert.False(t, f.ReadyTimeoutMS.IsDefined())
	assert.Equal(t, 4, f.Parallel.IntValue())
	assert.Equal(t, []string{"^Homepage/"}, f.Run)
	assert.Equal(t, []string{"Post"}, f.Skip)
	assert.Equal(t, "out.xlsx", f.XLSXReport)
	assert.False(t, f.Debug)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoadMalformedFile(t *testing.T) {
	_, err := Load(writeFile(t, `{"url": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed config file")
}

func TestLoadRejectsNegativeValues(t *testing.T) {
	_, err := Load(writeFile(t, `{"parallel": -1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parallel must not be negative")
}

func TestMillis(t *testing.T) {
	assert.Equal(t, time.Second, Millis(ldvalue.OptionalInt{}, time.Second))
	assert.Equal(t, 250*time.Millisecond, Millis(ldvalue.NewOptionalInt(250), time.Second))
}
