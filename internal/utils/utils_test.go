package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

func TestIsValidQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		max   int
		valid bool
	}{
		{"plain", "red app", 10, true},
		{"tabs are whitespace", "red\tapp", 10, true},
		{"control char", "red\x00app", 10, false},
		{"invalid utf8", "red\xffapp", 10, false},
		{"rune length", "ääää", 4, true},
		{"too long", "ääääa", 4, false},
		{"no cap", "anything at all", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, IsValidQuery(tc.query, tc.max))
		})
	}
}

func TestFormatWithCommas(t *testing.T) {
	assert.Equal(t, "0", FormatWithCommas(0))
	assert.Equal(t, "999", FormatWithCommas(999))
	assert.Equal(t, "1,000", FormatWithCommas(1000))
	assert.Equal(t, "12,345,678", FormatWithCommas(12345678))
	assert.Equal(t, "-1,234", FormatWithCommas(-1234))
}

func TestExtractHelpers(t *testing.T) {
	data := map[string]any{
		"i":   int64(7),
		"f":   1.5,
		"b":   true,
		"s":   "x",
		"arr": []any{"a", int64(1), "b"},
	}

	i, ok := ExtractInt64(data, "i")
	assert.True(t, ok)
	assert.Equal(t, 7, i)

	f, ok := ExtractFloat64(data, "i")
	assert.True(t, ok)
	assert.Equal(t, 7.0, f)
	f, ok = ExtractFloat64(data, "f")
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)

	b, ok := ExtractBool(data, "b")
	assert.True(t, ok)
	assert.True(t, b)

	s, ok := ExtractString(data, "s")
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	arr, ok := ExtractStringSlice(data, "arr")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, arr)

	_, ok = ExtractString(data, "i")
	assert.False(t, ok)
}

func TestSaveTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	in := struct {
		Name  string `toml:"name"`
		Count int    `toml:"count"`
	}{"oracle", 3}

	require.NoError(t, SaveTOMLFile(in, path))
	assert.True(t, FileExists(path))

	var out struct {
		Name  string `toml:"name"`
		Count int    `toml:"count"`
	}
	require.NoError(t, LoadTOMLFile(path, &out))
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Count, out.Count)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGetDataDir(t *testing.T) {
	root := t.TempDir()
	data := filepath.Join(root, "lists")
	require.NoError(t, os.Mkdir(data, 0755))

	pr := &PathResolver{executableDir: root, homeDir: root, configDir: filepath.Join(root, "cfg")}

	// no supported files yet
	assert.Equal(t, data, pr.GetDataDir(data))
	assert.False(t, isValidDataDir(data))

	require.NoError(t, os.WriteFile(filepath.Join(data, "fruit.txt"), []byte("apple\n"), 0644))
	assert.True(t, isValidDataDir(data))
	assert.Equal(t, data, pr.GetDataDir("lists"))
}

func TestResolveRelativePath(t *testing.T) {
	root := t.TempDir()
	pr := &PathResolver{executableDir: root, homeDir: root, configDir: filepath.Join(root, "cfg")}

	assert.Equal(t, filepath.Join(root, "logs", "audit.log"), pr.ResolveRelativePath("logs/audit.log"))
	assert.Equal(t, "/var/log/audit.log", pr.ResolveRelativePath("/var/log/audit.log"))
}

func TestGetRuntimeInfo(t *testing.T) {
	root := t.TempDir()
	pr := &PathResolver{executablePath: filepath.Join(root, "wordoracle"), executableDir: root, homeDir: root, configDir: filepath.Join(root, "cfg")}

	info := pr.GetRuntimeInfo()
	assert.Equal(t, root, info["executable_dir"])
	assert.Equal(t, filepath.Join(root, "cfg"), info["config_dir"])
	assert.NotEmpty(t, info["os"])
	assert.NotEmpty(t, info["arch"])
}
