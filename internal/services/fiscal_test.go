package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStorage struct {
	files   map[string]string
	deleted []string
}

func (m *memStorage) Save(file io.Reader, name, prefix string) (string, error) {
	body, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	url := prefix + "/" + name
	m.files[url] = string(body)
	return url, nil
}

func (m *memStorage) Delete(url string) error {
	delete(m.files, url)
	m.deleted = append(m.deleted, url)
	return nil
}

func TestFiscalService_UploadCertificateReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	repo := newFakeSettingRepo(map[string]string{SettingFiscalCertPath: "certificates/antigo.pfx"})
	storage := &memStorage{files: map[string]string{"certificates/antigo.pfx": "old"}}
	svc := NewFiscalService(NewSettingsService(repo, newFakeCache(), zap.NewNop()), storage, zap.NewNop())

	_, err := svc.UploadCertificate(ctx, strings.NewReader("pkcs12"), "novo.pfx", "  ")
	require.Error(t, err)
	assert.Equal(t, 400, httpCode(t, err))

	cfg, err := svc.UploadCertificate(ctx, strings.NewReader("pkcs12"), "novo.pfx", "segredo")
	require.NoError(t, err)
	assert.True(t, cfg.HasCertificate)
	assert.Equal(t, "homologacao", cfg.Ambiente)

	assert.Equal(t, "certificates/novo.pfx", repo.items[SettingFiscalCertPath].Value)
	assert.Equal(t, "segredo", repo.items[SettingFiscalCertPassword].Value)
	assert.Equal(t, []string{"certificates/antigo.pfx"}, storage.deleted)
	assert.Contains(t, storage.files, "certificates/novo.pfx")
}

func TestFiscalService_ConfigWithoutCertificate(t *testing.T) {
	repo := newFakeSettingRepo(map[string]string{SettingFiscalEnvironment: "producao"})
	svc := NewFiscalService(NewSettingsService(repo, nil, zap.NewNop()), &memStorage{files: map[string]string{}}, zap.NewNop())

	cfg, err := svc.Config(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "producao", cfg.Ambiente)
	assert.False(t, cfg.HasCertificate)
	assert.Nil(t, cfg.CertificateUploadedAt)
}
