package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestStyleStore_Load(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "default-reference.png", pngHeader)
	store := NewStyleStore(dir, time.Minute)

	ref, err := store.Load("default")
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, "default", ref.Name)
	assert.Equal(t, path, ref.Path)
	assert.Equal(t, pngHeader, ref.Data)
	assert.Equal(t, "image/png", ref.MIMEType)
}

func TestStyleStore_Missing(t *testing.T) {
	store := NewStyleStore(t.TempDir(), time.Minute)

	ref, err := store.Load("noir")
	require.NoError(t, err)
	assert.Nil(t, ref)

	ref, err = store.Load("noir")
	require.NoError(t, err)
	assert.Nil(t, ref)
}

func TestStyleStore_ExtensionOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "noir-reference.webp", []byte("webp"))
	jpg := writeFile(t, dir, "noir-reference.jpg", []byte("\xff\xd8\xff\xe0jpeg"))
	store := NewStyleStore(dir, time.Minute)

	ref, err := store.Load("noir")
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, jpg, ref.Path)
	assert.Equal(t, "image/jpeg", ref.MIMEType)
}

func TestStyleStore_InvalidNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default-reference.png", pngHeader)
	store := NewStyleStore(filepath.Join(dir, "sub"), time.Minute)

	for _, name := range []string{"", ".", "..", "../default", "a/b", `a\b`} {
		assert.False(t, ValidStyleName(name), name)
		ref, err := store.Load(name)
		assert.NoError(t, err, name)
		assert.Nil(t, ref, name)
	}
	assert.True(t, ValidStyleName("watercolor_v2"))
}

func TestStyleStore_ReloadsModifiedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "default-reference.png", pngHeader)
	store := NewStyleStore(dir, time.Minute)

	first, err := store.Load("default")
	require.NoError(t, err)

	updated := append(append([]byte{}, pngHeader...), []byte("more")...)
	require.NoError(t, os.WriteFile(path, updated, 0644))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	second, err := store.Load("default")
	require.NoError(t, err)
	assert.NotEqual(t, first.Data, second.Data)
	assert.Equal(t, updated, second.Data)
}

func TestStyleStore_ClearCache(t *testing.T) {
	dir := t.TempDir()
	store := NewStyleStore(dir, time.Minute)

	ref, err := store.Load("default")
	require.NoError(t, err)
	assert.Nil(t, ref)

	writeFile(t, dir, "default-reference.png", pngHeader)
	store.ClearCache()

	ref, err = store.Load("default")
	require.NoError(t, err)
	assert.NotNil(t, ref)
}

func TestStyleStore_List(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"noir-reference.jpg",
		"default-reference.png",
		"default-reference.webp",
		"upper-reference.PNG",
		"-reference.png",
		"readme.md",
	} {
		writeFile(t, dir, name, []byte("x"))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir-reference.png"), 0755))

	styles, err := NewStyleStore(dir, time.Minute).List()
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "noir"}, styles)
}

func TestStyleStore_ListMissingDir(t *testing.T) {
	styles, err := NewStyleStore(filepath.Join(t.TempDir(), "nope"), time.Minute).List()
	require.NoError(t, err)
	assert.Empty(t, styles)
	assert.NotNil(t, styles)
}

func TestStyleStore_ConcurrentLoads(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default-reference.png", pngHeader)
	store := NewStyleStore(dir, time.Minute)

	var wg sync.WaitGroup
	refs := make([]*StyleReference, 16)
	for i := range refs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ref, err := store.Load("default")
			assert.NoError(t, err)
			refs[i] = ref
		}(i)
	}
	wg.Wait()

	for _, ref := range refs {
		require.NotNil(t, ref)
		assert.Equal(t, pngHeader, ref.Data)
	}
}
