package filestorage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalFileStorage(dir)
	require.NoError(t, err)

	url, err := storage.Save(strings.NewReader("conteudo"), "Foto.JPG", "orders")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/orders/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	onDisk := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(url, PublicPrefix)))
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "conteudo", string(data))

	require.NoError(t, storage.Delete(url))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))

	// повторное удаление не ошибка
	assert.NoError(t, storage.Delete(url))
}

func TestDeleteRejectsTraversal(t *testing.T) {
	storage, err := NewLocalFileStorage(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, storage.Delete("/uploads/../../etc/passwd"))
}

func TestPrivateStorageReturnsRelativePath(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewPrivateFileStorage(dir)
	require.NoError(t, err)

	path, err := storage.Save(strings.NewReader("PKCS12"), "empresa.PFX", "certificates")
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(path, PublicPrefix), "caminho privado não vira URL pública")
	assert.True(t, strings.HasPrefix(path, "certificates/"))
	assert.True(t, strings.HasSuffix(path, ".pfx"))

	onDisk := filepath.Join(dir, filepath.FromSlash(path))
	info, err := os.Stat(onDisk)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, storage.Delete(path))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))
	assert.Error(t, storage.Delete("../../etc/passwd"))
}
