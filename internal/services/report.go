package services

import (
	"bytes"
	"context"
	"fmt"

	"ordem-servico/internal/dto"
	"ordem-servico/internal/entities"
	"ordem-servico/internal/repositories"
	"ordem-servico/pkg/constants"
	"ordem-servico/pkg/types"
	"ordem-servico/pkg/utils"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	orderReportHeaders = []interface{}{
		"Protocolo", "Cliente", "Equipamento", "Status", "Prioridade", "Técnico",
		"Entrada", "Saída", "Valor estimado", "Valor final", "Defeito relatado",
	}
	financeReportHeaders = []interface{}{
		"Data", "Tipo", "Valor", "Categoria", "Forma de pagamento", "Descrição", "OS", "Conta",
	}
)

type ReportServiceInterface interface {
	ExportOrders(ctx context.Context, filter types.Filter) (*bytes.Buffer, error)
	ExportFinance(ctx context.Context, filter dto.TransactionFilterDTO) (*bytes.Buffer, error)
}

type ReportService struct {
	orders   repositories.OrderRepositoryInterface
	finance  repositories.FinanceRepositoryInterface
	settings SettingsServiceInterface
	logger   *zap.Logger
}

func NewReportService(
	orders repositories.OrderRepositoryInterface,
	finance repositories.FinanceRepositoryInterface,
	settings SettingsServiceInterface,
	logger *zap.Logger,
) ReportServiceInterface {
	return &ReportService{orders: orders, finance: finance, settings: settings, logger: logger}
}

func optionalMoney(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func (s *ReportService) ExportOrders(ctx context.Context, filter types.Filter) (*bytes.Buffer, error) {
	filter.WithPagination = false
	orders, _, err := s.orders.GetAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	flow := s.settings.StatusFlow(ctx)

	rows := make([][]interface{}, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		exit := ""
		if o.ExitDate != nil {
			exit = utils.FormatDateTimeBR(*o.ExitDate)
		}
		rows = append(rows, []interface{}{
			o.Protocol, o.ClientName, o.EquipmentSummary(), flow.Label(o.Status), o.Priority, o.TechnicianName,
			utils.FormatDateTimeBR(o.EntryDate), exit, optionalMoney(o.EstimatedValue), optionalMoney(o.FinalValue),
			o.ReportedDefect,
		})
	}

	s.logger.Info("Exportação de ordens gerada", zap.Int("rows", len(rows)))
	return writeSheet("Ordens de serviço", orderReportHeaders, rows, map[string]float64{
		"B": 30, "C": 30, "D": 22, "F": 25, "G": 18, "H": 18, "K": 50,
	})
}

func (s *ReportService) ExportFinance(ctx context.Context, filter dto.TransactionFilterDTO) (*bytes.Buffer, error) {
	items, err := s.finance.GetAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	rows := make([][]interface{}, 0, len(items))
	for i := range items {
		rows = append(rows, transactionRow(&items[i]))
	}

	s.logger.Info("Exportação financeira gerada", zap.Int("rows", len(rows)))
	return writeSheet("Financeiro", financeReportHeaders, rows, map[string]float64{
		"A": 18, "D": 20, "E": 20, "F": 45,
	})
}

func transactionRow(t *entities.Transaction) []interface{} {
	tipo := "Receita"
	if t.Type == constants.TransactionExpense {
		tipo = "Despesa"
	}
	order, account := "", ""
	if t.OrderID != nil {
		order = fmt.Sprint(*t.OrderID)
	}
	if t.BankAccountID != nil {
		account = fmt.Sprint(*t.BankAccountID)
	}
	return []interface{}{
		utils.FormatDateTimeBR(t.CreatedAt), tipo, t.Amount, utils.SafeDeref(t.Category),
		utils.SafeDeref(t.PaymentMethod), utils.SafeDeref(t.Description), order, account,
	}
}

func writeSheet(sheet string, headers []interface{}, rows [][]interface{}, widths map[string]float64) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	f.SetCellStyle(sheet, "A1", lastCol+"1", style)

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	for col, w := range widths {
		f.SetColWidth(sheet, col, col, w)
	}

	return f.WriteToBuffer()
}
