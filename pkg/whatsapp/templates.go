package whatsapp

import "fmt"

func OrderCreatedMessage(protocol, equipment string) string {
	return fmt.Sprintf("✅ *Ordem de Serviço Aberta!*\n\nOlá! Recebemos seu *%s* para análise.\n📝 *Protocolo:* %s\n\nVocê será avisado por aqui assim que o diagnóstico for concluído.",
		equipment, protocol)
}

func BudgetAvailableMessage(protocol string) string {
	return fmt.Sprintf("📋 *Orçamento Disponível!*\n\nO diagnóstico do seu equipamento (OS: %s) foi finalizado.\n\nPor favor, entre em contato para aprovação do serviço.",
		protocol)
}

func ReadyForPickupMessage(protocol, equipment string) string {
	return fmt.Sprintf("🎉 *Seu equipamento está pronto!*\n\nO reparo do seu *%s* (OS: %s) foi concluído.\n\nJá pode vir retirá-lo em nossa loja.",
		equipment, protocol)
}

func DeliveredMessage(protocol string) string {
	return fmt.Sprintf("🤝 *Equipamento entregue!*\n\nA OS %s foi finalizada e entregue. Obrigado pela confiança!",
		protocol)
}

func TestMessage(company string) string {
	return fmt.Sprintf("✅ Mensagem de teste enviada por *%s*. A integração com o WhatsApp está funcionando.", company)
}

// ShareMessage — текст «поделиться» по типу (entry/exit/update); link может быть пустым.
func ShareMessage(shareType, protocol, equipment, statusLabel, link string) string {
	var msg string
	switch shareType {
	case "entry":
		msg = fmt.Sprintf("📥 *Comprovante de entrada*\n\nOS: %s\nEquipamento: %s\nStatus: %s", protocol, equipment, statusLabel)
	case "exit":
		msg = fmt.Sprintf("📤 *Comprovante de saída*\n\nOS: %s\nEquipamento: %s\nStatus: %s", protocol, equipment, statusLabel)
	default:
		msg = fmt.Sprintf("🔔 *Atualização da sua OS*\n\nOS: %s\nEquipamento: %s\nStatus atual: *%s*", protocol, equipment, statusLabel)
	}
	if link != "" {
		msg += "\n\nAcompanhe: " + link
	}
	return msg
}
