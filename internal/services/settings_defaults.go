package services

import (
	"ordem-servico/internal/entities"
	"ordem-servico/internal/statusflow"
	"ordem-servico/pkg/utils"
)

const defaultServiceTerms = `1. GARANTIA
- A garantia é de 90 (noventa) dias, cobrindo exclusivamente o serviço executado e as peças substituídas descritas nesta Ordem de Serviço.
- O prazo de garantia inicia-se na data de retirada do equipamento.

2. PERDA DA GARANTIA
A garantia será automaticamente anulada em casos de:
- Mau uso, quedas, ou danos físicos posteriores à entrega.
- Contato com líquidos ou oxidação.
- Rompimento do selo de garantia.
- Tentativa de reparo ou abertura do aparelho por terceiros.

3. ABANDONO
- Equipamentos não retirados no prazo de 90 dias após a notificação de 'Pronto' ou 'Orçamento Reprovado' serão considerados abandonados.

4. BACKUP E DADOS
- A empresa não se responsabiliza pela perda de dados (fotos, contatos, arquivos) durante o processo de reparo. Recomenda-se realizar backup antes de deixar o aparelho.

Declaro estar de acordo com os termos acima e ter recebido o aparelho testado e em perfeitas condições de funcionamento.`

func setting(key, value, valueType, description string, public bool) entities.Setting {
	return entities.Setting{
		Key:         key,
		Value:       value,
		Type:        valueType,
		Description: utils.ToPtr(description),
		IsPublic:    public,
	}
}

// DefaultSettings — набор, который накатывает seed; существующие ключи не перезаписываются.
func DefaultSettings() []entities.Setting {
	workflow, err := statusflow.Default().Encode()
	if err != nil {
		workflow = ""
	}

	str, num, boolean, js := entities.SettingTypeString, entities.SettingTypeNumber, entities.SettingTypeBoolean, entities.SettingTypeJSON
	return []entities.Setting{
		setting("os_primary_color", "#000000", str, "Cor principal da OS", true),
		setting("os_secondary_color", "#ffffff", str, "Cor secundária da OS", true),
		setting(SettingCompanyName, "Minha Assistência", str, "Nome da Empresa", true),
		setting(SettingWhatsAppURL, "", str, "URL da Evolution API", false),
		setting(SettingWhatsAppToken, "", str, "Token da Evolution API", false),
		setting(SettingWhatsAppInstance, "instance", str, "Nome da Instância WhatsApp", false),
		setting(statusflow.SettingKey, workflow, js, "Configuração de fluxo e labels de status da OS", true),
		setting("service_terms", defaultServiceTerms, str, "Termo de Garantia e Entrega (visível na impressão)", true),
		setting("print_format", "a4", str, "Formato de impressão (a4 ou termica)", true),
		setting("print_header_text", "", str, "Texto do cabeçalho da impressão", true),
		setting("print_footer_text", "", str, "Texto do rodapé da impressão", true),
		setting("print_show_cnpj", "true", boolean, "Exibir CNPJ na impressão", true),
		setting("print_show_address", "true", boolean, "Exibir endereço na impressão", true),
		setting("print_show_phone", "true", boolean, "Exibir telefone na impressão", true),
		setting("print_show_email", "true", boolean, "Exibir e-mail na impressão", true),
		setting("print_use_fantasy_name", "false", boolean, "Usar nome fantasia na impressão", true),
		setting(SettingPagBankToken, "", str, "Token da API PagBank", false),
		setting(SettingPagBankEnvironment, "sandbox", str, "Ambiente PagBank (sandbox ou production)", false),
		setting("pagbank_auto_nf", "false", boolean, "Emitir nota automaticamente ao receber pagamento", false),
		setting(SettingIMEIProvider, "", str, "Provedor de consulta IMEI", false),
		setting(SettingIMEIToken, "", str, "Token do provedor de consulta IMEI", false),
		setting(SettingFiscalCertPath, "", str, "Caminho do certificado digital A1", false),
		setting(SettingFiscalCertPassword, "", str, "Senha do certificado digital A1", false),
		setting(SettingFiscalEnvironment, "homologacao", str, "Ambiente fiscal (homologacao ou producao)", false),
		setting("smtp_host", "", str, "Servidor SMTP", false),
		setting("smtp_port", "587", num, "Porta SMTP", false),
		setting("smtp_user", "", str, "Usuário SMTP", false),
		setting("smtp_password", "", str, "Senha SMTP", false),
	}
}
