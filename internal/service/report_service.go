package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/natanhermes/buildflow/internal/dto"
	"github.com/natanhermes/buildflow/internal/model"
	"github.com/natanhermes/buildflow/internal/repository"
)

// ── report errors ──

var (
	ErrExportNoData       = errors.New("nenhuma atividade encontrada para exportação")
	ErrExportGenerateFail = errors.New("falha ao gerar arquivo")
)

// ReportService file exports: activity spreadsheet, obra progress PDF and
// obra activity calendar.
type ReportService interface {
	ExportAtividades(ctx context.Context, req *dto.AtividadeListRequest) (*bytes.Buffer, string, error)
	ObraReportPDF(ctx context.Context, obraID string) (*bytes.Buffer, string, error)
	ObraCalendar(ctx context.Context, obraID string) ([]byte, string, error)
}

type reportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReportService creates a ReportService.
func NewReportService(repo *repository.Repository, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

var statusLabels = map[string]string{
	model.StatusExecucao:     "Execução",
	model.StatusPreparacao1:  "Preparação 1",
	model.StatusPreparacao2:  "Preparação 2",
	model.StatusPreparacao3:  "Preparação 3",
	model.StatusManutencao:   "Manutenção",
	model.StatusSemAtividade: "Sem atividade",
}

func statusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.StringFixed(2)
}

// ceiDigits strips the CEI punctuation so it can be used in a filename.
func ceiDigits(cei string) string {
	return strings.NewReplacer(".", "", "/", "", "-", "").Replace(cei)
}

func (s *reportService) loadObra(ctx context.Context, obraID string) (*model.Obra, error) {
	obra, err := s.repo.Obra.GetByID(ctx, obraID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrObraNotFound
		}
		s.logger.Error("falha ao buscar obra", zap.Error(err))
		return nil, err
	}
	return obra, nil
}

// ═══════════════════════════════════════════════════════════
// ExportAtividades activities as .xlsx
// ═══════════════════════════════════════════════════════════

var atividadeColumns = []struct {
	title string
	width float64
}{
	{"Data", 12},
	{"Status", 14},
	{"Obra", 28},
	{"Torre", 14},
	{"Pavimento", 16},
	{"Área executada (m²)", 18},
	{"Área preparada (m²)", 18},
	{"Aditivo (m³)", 12},
	{"Aditivo (L)", 12},
	{"Saldo acumulado (m²)", 20},
	{"Integrantes", 36},
	{"Registrado por", 18},
	{"Observações", 40},
}

func (s *reportService) ExportAtividades(ctx context.Context, req *dto.AtividadeListRequest) (*bytes.Buffer, string, error) {
	filter, err := atividadeFilter(req)
	if err != nil {
		return nil, "", err
	}
	atividades, err := s.repo.Atividade.ListAll(ctx, filter)
	if err != nil {
		s.logger.Error("falha ao listar atividades", zap.Error(err))
		return nil, "", err
	}
	if len(atividades) == 0 {
		return nil, "", ErrExportNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Atividades"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F4E78"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})

	for i, c := range atividadeColumns {
		col := colName(i)
		f.SetColWidth(sheet, col, col, c.width)
		f.SetCellValue(sheet, cell(col, 1), c.title)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(atividadeColumns)-1), 1), headerStyle)
	f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for i := range atividades {
		a := &atividades[i]
		r := toAtividadeResponse(a)

		nomes := make([]string, 0, len(r.Integrantes))
		for _, ir := range r.Integrantes {
			nomes = append(nomes, ir.Nome)
		}
		obs := strings.TrimSpace(strings.Join([]string{a.ObsExecucao, a.ObsPonto, a.ObsQtdBetoneira, a.ObsHOI}, " "))

		values := []interface{}{
			r.DataExecucao,
			statusLabel(a.Status),
			r.ObraNome,
			r.TorreNome,
			r.PavimentoNome,
			nullString(a.AreaExecutadaM2),
			nullString(a.AreaPreparadaM2),
			nullString(a.AditivoM3),
			nullString(a.AditivoL),
			a.SaldoAcumuladoM2.StringFixed(2),
			strings.Join(nomes, ", "),
			r.UsuarioNome,
			obs,
		}
		for j, v := range values {
			f.SetCellValue(sheet, cell(colName(j), i+2), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("falha ao gravar planilha", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	filename := fmt.Sprintf("atividades_%s.xlsx", time.Now().Format("20060102_1504"))
	return buf, filename, nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// ═══════════════════════════════════════════════════════════
// ObraReportPDF progress per floor
// ═══════════════════════════════════════════════════════════

func (s *reportService) ObraReportPDF(ctx context.Context, obraID string) (*bytes.Buffer, string, error) {
	obra, err := s.loadObra(ctx, obraID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(190, 10, tr("Relatório de execução"))
	pdf.Ln(10)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(190, 8, tr(obra.Nome))
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(95, 6, tr("CEI: "+obra.CEI))
	pdf.Cell(95, 6, tr("Construtora: "+obra.Construtora))
	pdf.Ln(6)
	pdf.Cell(95, 6, tr(fmt.Sprintf("Período: %s a %s", obra.DataInicio.Format("02/01/2006"), obra.DataFim.Format("02/01/2006"))))
	pdf.Cell(95, 6, tr("Valor/m²: R$ "+obra.ValorM2.StringFixed(2)))
	pdf.Ln(6)
	if e := obra.Endereco; e != nil {
		pdf.MultiCell(190, 6, tr(fmt.Sprintf("%s, %s - %s, %s/%s - CEP %s", e.Logradouro, e.Numero, e.Bairro, e.Cidade, e.Estado, e.CEP)), "", "", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(63, 7, tr("Total: "+obra.TotalGeral.StringFixed(2)+" m²"))
	pdf.Cell(63, 7, tr("Executado: "+obra.TotalExecutado.StringFixed(2)+" m²"))
	pdf.Cell(64, 7, tr("Pendente: "+obra.TotalPendente.StringFixed(2)+" m²"))
	pdf.Ln(10)

	headers := []struct {
		title string
		width float64
	}{
		{"Torre", 30}, {"Pavimento", 40}, {"Área (m²)", 24}, {"Executada (m²)", 28},
		{"%", 18}, {"Espessura (cm)", 26}, {"Data", 24},
	}
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		ln := 0
		if i == len(headers)-1 {
			ln = 1
		}
		pdf.CellFormat(h.width, 8, tr(h.title), "1", ln, "C", true, 0, "")
	}

	pdf.SetFont("Arial", "", 9)
	for _, t := range obra.Torres {
		for _, p := range t.Pavimentos {
			row := []string{
				t.Nome,
				p.Identificador,
				p.AreaM2.StringFixed(2),
				nullString(p.AreaExecutadaM2),
				nullString(p.PercentualExecutado),
				nullString(p.EspessuraCM),
				formatDatePtr(p.DataExecucao),
			}
			for i, v := range row {
				ln, align := 0, "R"
				if i < 2 {
					align = "L"
				}
				if i == len(row)-1 {
					ln, align = 1, "C"
				}
				pdf.CellFormat(headers[i].width, 7, tr(v), "1", ln, align, false, 0, "")
			}
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(190, 5, tr("Gerado em "+time.Now().Format("02/01/2006 15:04")))

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		s.logger.Error("falha ao gerar PDF", zap.String("obra_id", obraID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, fmt.Sprintf("relatorio_%s.pdf", ceiDigits(obra.CEI)), nil
}

// ═══════════════════════════════════════════════════════════
// ObraCalendar one all-day event per activity
// ═══════════════════════════════════════════════════════════

func (s *reportService) ObraCalendar(ctx context.Context, obraID string) ([]byte, string, error) {
	obra, err := s.loadObra(ctx, obraID)
	if err != nil {
		return nil, "", err
	}
	atividades, err := s.repo.Atividade.ListAll(ctx, repository.AtividadeFilter{ObraID: obraID})
	if err != nil {
		s.logger.Error("falha ao listar atividades", zap.Error(err))
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//BuildFlow//Atividades//PT-BR")
	cal.SetXWRCalName("Atividades - " + obra.Nome)

	location := ""
	if e := obra.Endereco; e != nil {
		location = fmt.Sprintf("%s, %s - %s/%s", e.Logradouro, e.Numero, e.Cidade, e.Estado)
	}

	for i := range atividades {
		a := &atividades[i]
		r := toAtividadeResponse(a)

		summary := statusLabel(a.Status) + " - " + r.PavimentoNome
		if r.TorreNome != "" {
			summary += " (" + r.TorreNome + ")"
		}
		desc := []string{"Saldo acumulado: " + a.SaldoAcumuladoM2.StringFixed(2) + " m²"}
		if a.AreaExecutadaM2.Valid {
			desc = append(desc, "Área executada: "+a.AreaExecutadaM2.Decimal.StringFixed(2)+" m²")
		}
		if a.AreaPreparadaM2.Valid {
			desc = append(desc, "Área preparada: "+a.AreaPreparadaM2.Decimal.StringFixed(2)+" m²")
		}
		if a.ObsExecucao != "" {
			desc = append(desc, a.ObsExecucao)
		}

		evt := cal.AddEvent(a.ID + "@buildflow")
		evt.SetDtStampTime(a.CreatedAt)
		evt.SetAllDayStartAt(a.DataExecucao)
		evt.SetAllDayEndAt(a.DataExecucao.AddDate(0, 0, 1))
		evt.SetSummary(summary)
		evt.SetDescription(strings.Join(desc, "\n"))
		if location != "" {
			evt.SetLocation(location)
		}
	}

	return []byte(cal.Serialize()), fmt.Sprintf("atividades_%s.ics", ceiDigits(obra.CEI)), nil
}
