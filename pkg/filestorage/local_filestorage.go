package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PublicPrefix — под этим путём echo раздаёт basePath как статику.
const PublicPrefix = "/uploads/"

type FileStorageInterface interface {
	// Save возвращает URL вида /uploads/<prefix>/2024/08/21/<uuid>.jpg
	// (для приватного хранилища — путь без /uploads/).
	Save(file io.Reader, originalFileName string, prefix string) (fileURL string, err error)
	Delete(fileURL string) error
}

type LocalFileStorage struct {
	basePath  string
	urlPrefix string
	dirMode   os.FileMode
	fileMode  os.FileMode
}

// NewLocalFileStorage — публичное хранилище: Save возвращает URL под PublicPrefix.
func NewLocalFileStorage(basePath string) (FileStorageInterface, error) {
	return newLocalFileStorage(basePath, PublicPrefix, 0o755, 0o644)
}

// NewPrivateFileStorage — хранилище вне статики (сертификаты A1): Save возвращает
// относительный путь, файлы доступны только владельцу процесса.
func NewPrivateFileStorage(basePath string) (FileStorageInterface, error) {
	return newLocalFileStorage(basePath, "", 0o700, 0o600)
}

func newLocalFileStorage(basePath, urlPrefix string, dirMode, fileMode os.FileMode) (*LocalFileStorage, error) {
	if err := os.MkdirAll(basePath, dirMode); err != nil {
		return nil, fmt.Errorf("não foi possível criar o diretório de uploads: %w", err)
	}
	return &LocalFileStorage{basePath: basePath, urlPrefix: urlPrefix, dirMode: dirMode, fileMode: fileMode}, nil
}

func (s *LocalFileStorage) Save(file io.Reader, originalFileName string, prefix string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalFileName))
	uniqueFileName := uuid.New().String() + ext

	datePath := time.Now().Format("2006/01/02")
	fullDirPath := filepath.Join(s.basePath, prefix, datePath)

	if err := os.MkdirAll(fullDirPath, s.dirMode); err != nil {
		return "", err
	}

	dst, err := os.OpenFile(filepath.Join(fullDirPath, uniqueFileName), os.O_WRONLY|os.O_CREATE|os.O_EXCL, s.fileMode)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		return "", err
	}

	return s.urlPrefix + filepath.ToSlash(filepath.Join(prefix, datePath, uniqueFileName)), nil
}

// Delete удаляет файл по URL (или относительному пути); отсутствующий файл не ошибка.
func (s *LocalFileStorage) Delete(fileURL string) error {
	relativePath := fileURL
	if s.urlPrefix != "" {
		relativePath = strings.TrimPrefix(fileURL, s.urlPrefix)
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(relativePath))

	base, err := filepath.Abs(s.basePath)
	if err != nil {
		return err
	}
	target, err := filepath.Abs(fullPath)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(target, base+string(os.PathSeparator)) {
		return fmt.Errorf("caminho fora do diretório de uploads: %s", fileURL)
	}

	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
