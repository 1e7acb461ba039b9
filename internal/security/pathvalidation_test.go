package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	safeDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(safeDir, "maps"), 0755))

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"file in dir", filepath.Join(safeDir, "report.json"), false},
		{"nested new file", filepath.Join(safeDir, "maps", "new", "lap.png"), false},
		{"dir itself", safeDir, false},
		{"dot dot escape", filepath.Join(safeDir, "..", "evil.json"), true},
		{"dot dot inside", filepath.Join(safeDir, "maps", "..", "ok.json"), false},
		{"absolute elsewhere", "/etc/passwd", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinDirectory(tt.path, safeDir)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrPathEscape)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePathWithinDirectory_Symlink(t *testing.T) {
	safeDir := t.TempDir()
	outside := t.TempDir()

	link := filepath.Join(safeDir, "link")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	err := ValidatePathWithinDirectory(filepath.Join(link, "new", "file.json"), safeDir)
	assert.ErrorIs(t, err, ErrPathEscape)
}

func TestValidatePathWithinDirectory_MissingSafeDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "not", "yet")
	assert.NoError(t, ValidatePathWithinDirectory(filepath.Join(base, "a.json"), base))
	assert.ErrorIs(t, ValidatePathWithinDirectory(filepath.Join(base, "..", "a.json"), base), ErrPathEscape)
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"session-42", "session-42"},
		{"Monza GP / lap 3", "Monza_GP_lap_3"},
		{"../../etc/passwd", "etc_passwd"},
		{"...", "unknown"},
		{"", "unknown"},
		{"__x__", "x"},
		{"ünïcode", "n_code"},
		{strings.Repeat("a", 300), strings.Repeat("a", 128)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestArtifactPath(t *testing.T) {
	dir := t.TempDir()

	got, err := ArtifactPath(dir, "s-1 best lap.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "s-1_best_lap.png"), got)

	got, err = ArtifactPath(dir, "../../escape")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape"), got)
}
