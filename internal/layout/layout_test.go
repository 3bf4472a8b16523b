// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDateFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"data/2026-02-10/2602.00001.json", "2026-02-10"},
		{"data/2026-02-10__2602.00001.json", "2026-02-10"},
		{"data/misc/2602.00001.json", ""},
		{"data/2026-2-10/x.json", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DateFromPath(filepath.FromSlash(tt.path)))
		})
	}
}

func TestPaperFiles_AllDates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2026-02-11", "b.json"), "{}")
	writeFile(t, filepath.Join(dir, "2026-02-10", "a.json"), "{}")
	writeFile(t, filepath.Join(dir, "2026-02-09__c.json"), "{}")
	writeFile(t, filepath.Join(dir, "2026-02-10", "notes.txt"), "x")

	files, err := PaperFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "2026-02-09__c.json"),
		filepath.Join(dir, "2026-02-10", "a.json"),
		filepath.Join(dir, "2026-02-11", "b.json"),
	}, files)
}

func TestPaperFiles_SingleDateIncludesLegacy(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2026-02-10", "a.json"), "{}")
	writeFile(t, filepath.Join(dir, "2026-02-10__b.json"), "{}")
	writeFile(t, filepath.Join(dir, "2026-02-11", "c.json"), "{}")

	files, err := PaperFiles(dir, "2026-02-10")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "2026-02-10", "a.json"),
		filepath.Join(dir, "2026-02-10__b.json"),
	}, files)
}

func TestPaperFiles_MissingDir(t *testing.T) {
	files, err := PaperFiles(filepath.Join(t.TempDir(), "nope"), "")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMigrate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2026-02-10__a.json"), `{"id":"a"}`)
	writeFile(t, filepath.Join(dir, "2026-02-10__b.json"), `{"id":"b-old"}`)
	writeFile(t, filepath.Join(dir, "2026-02-10", "b.json"), `{"id":"b"}`)
	writeFile(t, filepath.Join(dir, "unrelated.json"), `{}`)

	summary, err := Migrate(dir, false, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, MigrateSummary{Moved: 1, Skipped: 1}, summary)

	assert.FileExists(t, filepath.Join(dir, "2026-02-10", "a.json"))
	assert.NoFileExists(t, filepath.Join(dir, "2026-02-10__a.json"))
	assert.FileExists(t, filepath.Join(dir, "2026-02-10__b.json"))

	data, err := os.ReadFile(filepath.Join(dir, "2026-02-10", "b.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"id":"b"}`, string(data))
}

func TestMigrate_DryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2026-02-10__a.json"), `{}`)

	summary, err := Migrate(dir, true, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Moved)
	assert.FileExists(t, filepath.Join(dir, "2026-02-10__a.json"))
	assert.NoDirExists(t, filepath.Join(dir, "2026-02-10"))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, WriteFile(path, []byte("one")))
	require.NoError(t, WriteFile(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
