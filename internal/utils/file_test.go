package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFileExtension(t *testing.T) {
	assert.Equal(t, "png", GetFileExtension("shot.PNG"))
	assert.Equal(t, "jpg", GetFileExtension("dir/a.b.jpg"))
	assert.Equal(t, "", GetFileExtension("noext"))
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("a.webp"))
	assert.True(t, IsImageFile("a.JPEG"))
	assert.False(t, IsImageFile("a.txt"))
	assert.False(t, IsImageFile("screen"))
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/a.png"))
	assert.True(t, IsURL("http://localhost:8080/x"))
	assert.False(t, IsURL("ftp://example.com/a.png"))
	assert.False(t, IsURL("test_image.jpg"))
	assert.False(t, IsURL("screen:1"))
}

func TestGenerateOutputFilename(t *testing.T) {
	tests := []struct {
		input, dir, prefix, suffix, format string
		expected                           string
	}{
		{"photos/test_image.jpg", "out", "", "_marked", "png", filepath.Join("out", "test_image_marked.png")},
		{"a.png", "", "x_", "", "", "x_a.png"},
		{"https://example.com/img/shot.webp", "out", "", "_marked", "jpg", filepath.Join("out", "shot_marked.jpg")},
		{"screen:0", "out", "", "_marked", "png", filepath.Join("out", "capture_marked.png")},
	}
	for _, tt := range tests {
		got := GenerateOutputFilename(tt.input, tt.dir, tt.prefix, tt.suffix, tt.format)
		assert.Equal(t, tt.expected, got, tt.input)
	}
}

func TestEnsureDirAndExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	assert.False(t, DirExists(dir))
	require.NoError(t, EnsureDir(dir))
	assert.True(t, DirExists(dir))
	assert.False(t, FileExists(dir))

	f := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))
	assert.True(t, FileExists(f))
	assert.False(t, DirExists(f))
}
