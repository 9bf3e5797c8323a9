package files

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFiles creates names in dir, each one minute newer than the last.
func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	base := time.Now().Add(-time.Hour)
	for i, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("test content"), 0644))
		modTime := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, modTime, modTime))
	}
}

func TestNewDiscovery(t *testing.T) {
	discovery := NewDiscovery("/test/base")

	assert.NotNil(t, discovery)
	assert.Equal(t, "/test/base", discovery.basePath)
}

func TestFindSources(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		expected []string
	}{
		{
			name:     "csv and workbook",
			files:    []string{"2022.csv", "2023.xlsx"},
			expected: []string{"2022.csv", "2023.xlsx"},
		},
		{
			name:     "mixed file types",
			files:    []string{"notes.pdf", "counts.CSV", "raw.txt", "old.xls"},
			expected: []string{"counts.CSV", "raw.txt"},
		},
		{
			name:     "lock and hidden files",
			files:    []string{"~$counts.xlsx", ".counts.csv", "counts.xlsx"},
			expected: []string{"counts.xlsx"},
		},
		{
			name:     "empty directory",
			files:    nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			writeFiles(t, filepath.Join(tmpDir, "exports"), tt.files...)

			found, err := NewDiscovery(tmpDir).FindSources("exports")
			require.NoError(t, err)

			var names []string
			for _, f := range found {
				names = append(names, f.Name)
				assert.Equal(t, filepath.Join(tmpDir, "exports", f.Name), f.Path)
				assert.Greater(t, f.Size, int64(0))
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestFindSources_MissingDirectory(t *testing.T) {
	_, err := NewDiscovery(t.TempDir()).FindSources("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read directory")
}

func TestResolve(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, filepath.Join(tmpDir, "exports"), "2021.csv", "2022.xlsx", "2023.csv", "readme.md")
	writeFiles(t, filepath.Join(tmpDir, "empty"))

	discovery := NewDiscovery(tmpDir)

	t.Run("file is returned as is", func(t *testing.T) {
		got, err := discovery.Resolve(filepath.Join("exports", "2021.csv"))
		require.NoError(t, err)
		assert.Equal(t, "2021.csv", got.Name)
	})

	t.Run("absolute path ignores base", func(t *testing.T) {
		abs := filepath.Join(tmpDir, "exports", "2022.xlsx")
		got, err := NewDiscovery("/elsewhere").Resolve(abs)
		require.NoError(t, err)
		assert.Equal(t, abs, got.Path)
	})

	t.Run("directory picks newest source", func(t *testing.T) {
		got, err := discovery.Resolve("exports")
		require.NoError(t, err)
		assert.Equal(t, "2023.csv", got.Name)
	})

	t.Run("directory without sources", func(t *testing.T) {
		_, err := discovery.Resolve("empty")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoSource))
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := discovery.Resolve("missing.csv")
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestGetLatestFile(t *testing.T) {
	tests := []struct {
		name        string
		files       []FileInfo
		expectFound bool
		expectedIdx int
	}{
		{
			name: "multiple files with different times",
			files: []FileInfo{
				{Name: "old.csv", ModTime: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
				{Name: "latest.csv", ModTime: time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)},
				{Name: "middle.csv", ModTime: time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)},
			},
			expectFound: true,
			expectedIdx: 1,
		},
		{
			name: "single file",
			files: []FileInfo{
				{Name: "only.csv", ModTime: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
			},
			expectFound: true,
			expectedIdx: 0,
		},
		{
			name:        "empty slice",
			files:       []FileInfo{},
			expectFound: false,
		},
		{
			name: "same time keeps the later entry",
			files: []FileInfo{
				{Name: "a.csv", ModTime: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
				{Name: "b.csv", ModTime: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
			},
			expectFound: true,
			expectedIdx: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			latest, found := GetLatestFile(tt.files)

			assert.Equal(t, tt.expectFound, found)
			if tt.expectFound {
				assert.Equal(t, tt.files[tt.expectedIdx].Name, latest.Name)
			}
		})
	}
}

func TestIsSource(t *testing.T) {
	for name, want := range map[string]bool{
		"counts.csv":  true,
		"counts.CSV":  true,
		"counts.txt":  true,
		"counts.xlsx": true,
		"counts.xls":  false,
		"counts":      false,
		"counts.json": false,
	} {
		assert.Equal(t, want, IsSource(name), name)
	}
}
