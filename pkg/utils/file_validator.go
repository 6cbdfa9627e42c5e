package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"slices"
	"strings"

	"ordem-servico/config"

	"github.com/gabriel-vasile/mimetype"
)

// ValidateFile проверяет размер, расширение и реальный MIME-тип загружаемого файла.
func ValidateFile(fileHeader *multipart.FileHeader, file io.ReadSeeker, contextName string) error {
	rules, ok := config.UploadContexts[contextName]
	if !ok {
		return fmt.Errorf("contexto de upload desconhecido: %s", contextName)
	}

	if rules.MaxSizeMB > 0 && fileHeader.Size > rules.MaxSizeMB*1024*1024 {
		return fmt.Errorf("arquivo (%d KB) excede o limite de %d MB", fileHeader.Size/1024, rules.MaxSizeMB)
	}

	if len(rules.AllowedExtensions) > 0 {
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !slices.Contains(rules.AllowedExtensions, ext) {
			return fmt.Errorf("extensão de arquivo não permitida: %s", ext)
		}
	}

	if len(rules.AllowedMimeTypes) == 0 {
		return nil
	}

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return fmt.Errorf("não foi possível ler o arquivo")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("não foi possível processar o arquivo")
	}

	for _, allowed := range rules.AllowedMimeTypes {
		if mtype.Is(allowed) {
			return nil
		}
	}
	return fmt.Errorf("tipo de arquivo não permitido: %s", mtype.String())
}
