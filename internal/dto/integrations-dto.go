package dto

type WhatsAppConfigDTO struct {
	Configured  bool `json:"configured"`
	HasInstance bool `json:"hasInstance"`
}

type WhatsAppStatusDTO struct {
	Connected bool   `json:"connected"`
	State     string `json:"state,omitempty"`
}

type CreateInstanceDTO struct {
	InstanceName string `json:"instanceName" validate:"required"`
	Number       string `json:"number" validate:"omitempty,contact_number"`
}

type CreateInstanceResultDTO struct {
	Success bool   `json:"success"`
	QRCode  string `json:"qrcode,omitempty"`
	Error   string `json:"error,omitempty"`
}

type TestMessageDTO struct {
	Number string `json:"number" validate:"required"`
}

type SendResultDTO struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type PagBankStatusDTO struct {
	Connected   bool                   `json:"connected"`
	Environment string                 `json:"environment"`
	Account     map[string]interface{} `json:"account,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

type FiscalConfigDTO struct {
	Ambiente              string  `json:"ambiente"`
	HasCertificate        bool    `json:"hasCertificate"`
	CertificateUploadedAt *string `json:"certificateUploadedAt"`
}
