package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoot(t *testing.T) *FS {
	t.Helper()
	f, err := NewFS(t.TempDir())
	require.NoError(t, err)
	return f
}

func TestFS_WriteRead(t *testing.T) {
	tests := map[string]struct {
		path    string
		content string
	}{
		"top level":     {path: "note.md", content: "# Hello\nWorld\n"},
		"nested dirs":   {path: "a/b/c.md", content: "deep"},
		"empty content": {path: "empty.md", content: ""},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			f := newRoot(t)
			require.NoError(t, f.Write(tc.path, []byte(tc.content)))

			got, err := f.Read(tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.content, string(got))
		})
	}
}

func TestFS_OverwriteLeavesNoTempFiles(t *testing.T) {
	f := newRoot(t)
	require.NoError(t, f.Write("atomic.md", []byte("first")))
	require.NoError(t, f.Write("atomic.md", []byte("second")))

	got, err := f.Read("atomic.md")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	leftovers, err := filepath.Glob(filepath.Join(f.Root(), tempPrefix+"*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFS_Delete(t *testing.T) {
	f := newRoot(t)
	require.NoError(t, f.Write("del.md", []byte("bye")))
	require.NoError(t, f.Delete("del.md"))

	_, err := f.Read("del.md")
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Error(t, f.Delete("del.md"))
}

func TestFS_Move(t *testing.T) {
	f := newRoot(t)
	require.NoError(t, f.Write("old.md", []byte("data")))
	require.NoError(t, f.Move("old.md", "sub/new.md"))

	got, err := f.Read("sub/new.md")
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))

	_, err = f.Read("old.md")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFS_List(t *testing.T) {
	f := newRoot(t)
	for p, c := range map[string]string{"a.md": "a", "sub/b.md": "b", "readme.txt": "not md"} {
		require.NoError(t, f.Write(p, []byte(c)))
	}
	// A stray temp file from an interrupted write.
	require.NoError(t, os.WriteFile(filepath.Join(f.Root(), tempPrefix+"x.md"), []byte("x"), 0o644))

	tests := map[string]struct {
		dir, pattern string
		want         []string
	}{
		"recursive":      {dir: "", pattern: "**/*.md", want: []string{"a.md", "sub/b.md"}},
		"top level only": {dir: "", pattern: "*.md", want: []string{"a.md"}},
		"subdirectory":   {dir: "sub", pattern: "**/*.md", want: []string{"sub/b.md"}},
		"other suffix":   {dir: "", pattern: "**/*.txt", want: []string{"readme.txt"}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			files, err := f.List(tc.dir, tc.pattern)
			require.NoError(t, err)

			var paths []string
			for _, fi := range files {
				paths = append(paths, fi.Path)
				data, err := f.Read(fi.Path)
				require.NoError(t, err)
				assert.Equal(t, Checksum(data), fi.Checksum, fi.Path)
				assert.False(t, fi.UpdatedAt.IsZero(), fi.Path)
			}
			assert.ElementsMatch(t, tc.want, paths)
		})
	}
}

func TestFS_ListInvalidPattern(t *testing.T) {
	_, err := newRoot(t).List("", "[oops")
	assert.Error(t, err)
}

func TestChecksum(t *testing.T) {
	// sha256("abc")
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		Checksum([]byte("abc")))
}

func TestFS_RejectsPathsOutsideRoot(t *testing.T) {
	f := newRoot(t)
	for _, p := range []string{"../../etc/passwd", "../outside.md", "/etc/shadow", "sub/../../x.md"} {
		t.Run(p, func(t *testing.T) {
			_, err := f.Read(p)
			assert.Error(t, err)
			assert.Error(t, f.Write(p, []byte("x")))
			assert.Error(t, f.Delete(p))
			assert.Error(t, f.Move(p, "in.md"))
		})
	}
}

func TestFS_AllowsDotPrefixedNames(t *testing.T) {
	f := newRoot(t)
	require.NoError(t, f.Write("..notes.md", []byte("ok")))
	got, err := f.Read("..notes.md")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(got))
}

func TestNewFS_Errors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	tests := map[string]string{
		"missing dir":  filepath.Join(t.TempDir(), "does-not-exist"),
		"file not dir": file,
	}
	for name, root := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewFS(root)
			assert.Error(t, err)
		})
	}
}
