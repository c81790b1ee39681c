// Package export сохраняет итоговую подборку в xlsx-отчёт.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/maine/polymer_news/internal/news"
	"github.com/maine/polymer_news/internal/state"
)

// Имена листов отчёта.
const (
	ReportSheet  = "NewsReport"
	SummarySheet = "Summary"
)

var (
	reportHeader  = []interface{}{"category", "keyword", "title", "summary", "source", "date", "strategy_score", "link"}
	summaryHeader = []interface{}{"카테고리", "기사 수", "평균 점수", "주요 키워드"}
	columnWidths  = map[string]float64{"A": 12, "B": 18, "C": 45, "D": 55, "E": 15, "F": 15, "G": 10, "H": 40}
)

// Exporter реализует app.Exporter.
type Exporter struct {
	dir   string
	clock func() time.Time
}

// NewExporter создаёт экспортёр, пишущий файлы в dir.
func NewExporter(dir string, clock func() time.Time) *Exporter {
	if clock == nil {
		clock = time.Now
	}
	return &Exporter{dir: dir, clock: clock}
}

// Export реализует app.Exporter.
func (e *Exporter) Export(articles []news.Article, periodLabel string) (string, error) {
	return WriteWorkbook(articles, periodLabel, e.dir, e.clock())
}

// FileName строит имя файла отчёта из подписи периода.
func FileName(periodLabel string) string {
	name := strings.NewReplacer("/", "-", " ", "_").Replace(periodLabel)
	return name + "_polymer_report.xlsx"
}

// WriteWorkbook записывает отчёт в dir и возвращает путь к файлу.
func WriteWorkbook(articles []news.Article, periodLabel, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	f, err := Build(articles, periodLabel, now)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(dir, FileName(periodLabel))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

// Build собирает книгу в памяти. Вызывающий закрывает её.
func Build(articles []news.Article, periodLabel string, now time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ReportSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}

	if err := writeReport(f, articles); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummary(f, state.BuildStats(articles, periodLabel, now)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeReport(f *excelize.File, articles []news.Article) error {
	if err := f.SetSheetRow(ReportSheet, "A1", &reportHeader); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"0066CC"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(ReportSheet, "A1", "H1", style); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	for col, width := range columnWidths {
		if err := f.SetColWidth(ReportSheet, col, col, width); err != nil {
			return fmt.Errorf("set column width %s: %w", col, err)
		}
	}

	for i, a := range articles {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{a.Category, a.Keyword, a.Title, a.Summary, a.Source, a.Date, a.StrategyScore, a.Link}
		if err := f.SetSheetRow(ReportSheet, cell, &row); err != nil {
			return fmt.Errorf("write report row %d: %w", i+1, err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, records []news.StatRecord) error {
	if err := f.SetSheetRow(SummarySheet, "A1", &summaryHeader); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.Category, r.Count, r.AvgScore, r.TopKeyword}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	return nil
}
