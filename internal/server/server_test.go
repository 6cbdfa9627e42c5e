package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	uploadcfg "ordem-servico/config"
	"ordem-servico/pkg/config"
	"ordem-servico/pkg/filestorage"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(e *echo.Echo, path string) (int, string) {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, _ := io.ReadAll(rec.Body)
	return rec.Code, string(body)
}

func TestMountUploadsKeepsCertificatesPrivate(t *testing.T) {
	root := t.TempDir()
	cfg := config.StorageConfig{
		UploadsDir:      filepath.Join(root, "uploads"),
		CertificatesDir: filepath.Join(root, "private"),
	}
	public, err := filestorage.NewLocalFileStorage(cfg.UploadsDir)
	require.NoError(t, err)
	private, err := filestorage.NewPrivateFileStorage(cfg.CertificatesDir)
	require.NoError(t, err)

	e := echo.New()
	require.NoError(t, mountUploads(e, cfg))

	photo, err := public.Save(strings.NewReader("JPEG"), "foto.jpg", "orders")
	require.NoError(t, err)
	cert, err := private.Save(strings.NewReader("PKCS12-PRIVATE-KEY"), "empresa.pfx",
		uploadcfg.UploadContexts[uploadcfg.UploadFiscalCertificate].PathPrefix)
	require.NoError(t, err)

	code, body := get(e, photo)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "JPEG", body)

	for _, path := range []string{filestorage.PublicPrefix + cert, "/" + cert, "/uploads/../private/" + cert} {
		code, body := get(e, path)
		assert.Equal(t, http.StatusNotFound, code, path)
		assert.NotContains(t, body, "PKCS12-PRIVATE-KEY", path)
	}
}

func TestMountUploadsRejectsCertificatesInsidePublicDir(t *testing.T) {
	root := t.TempDir()
	for _, certs := range []string{filepath.Join(root, "uploads", "certificates"), filepath.Join(root, "uploads")} {
		err := mountUploads(echo.New(), config.StorageConfig{
			UploadsDir:      filepath.Join(root, "uploads"),
			CertificatesDir: certs,
		})
		assert.Error(t, err, certs)
	}
}
