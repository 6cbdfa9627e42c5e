package config

type UploadConfig struct {
	AllowedMimeTypes  []string
	AllowedExtensions []string
	MaxSizeMB         int64
	PathPrefix        string
}

const (
	UploadOrderPhoto        = "order_photo"
	UploadFiscalCertificate = "fiscal_certificate"
)

var UploadContexts = map[string]UploadConfig{
	UploadOrderPhoto: {
		AllowedMimeTypes: []string{"image/jpeg", "image/png", "image/webp", "image/heic"},
		MaxSizeMB:        10,
		PathPrefix:       "orders",
	},
	// .pfx/.p12 — бинарный PKCS#12, mimetype его не распознаёт, проверяем только расширение
	UploadFiscalCertificate: {
		AllowedExtensions: []string{".pfx", ".p12"},
		MaxSizeMB:         5,
		PathPrefix:        "certificates",
	},
}
