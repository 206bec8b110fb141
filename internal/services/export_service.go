package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/terraincognita07/crewdesk/internal/models"
)

const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"

	exportSheetName = "Leads"
)

var ErrExportFormatInvalid = errors.New("export invalid format")

var LeadExportHeaders = []string{
	"Received",
	"Project",
	"Status",
	"Source",
	"Phase",
	"Sq Ft",
	"Estimated Start",
	"Contact",
	"Email",
	"Phone",
	"Company",
	"Address",
	"Message",
}

var leadExportColumnWidths = []float64{12, 28, 11, 10, 14, 10, 16, 22, 28, 16, 22, 30, 50}

type ExportLeadReader interface {
	List(ctx context.Context, status models.LeadStatus) ([]models.Lead, error)
}

type LeadExportFilter struct {
	Status models.LeadStatus
	From   *time.Time
	To     *time.Time
}

type LeadExportRow struct {
	Received       string
	ProjectName    string
	Status         string
	Source         string
	Phase          string
	SqFootage      string
	EstimatedStart string
	ContactName    string
	ContactEmail   string
	ContactPhone   string
	CompanyName    string
	Address        string
	Message        string
}

type ExportService struct {
	storeBound
	leads    ExportLeadReader
	location *time.Location
}

func NewExportService(leads ExportLeadReader, location *time.Location, timeout time.Duration) *ExportService {
	if location == nil {
		location = time.UTC
	}
	return &ExportService{storeBound: newStoreBound(timeout), leads: leads, location: location}
}

func ParseExportFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatXLSX:
		return ExportFormatXLSX, nil
	default:
		return "", ErrExportFormatInvalid
	}
}

// BuildRows loads leads newest first and keeps the ones received inside the
// inclusive [From, To] day range of the filter.
func (service *ExportService) BuildRows(ctx context.Context, filter LeadExportFilter) ([]LeadExportRow, error) {
	ctx, cancel := service.bounded(ctx)
	defer cancel()

	leads, err := service.leads.List(ctx, filter.Status)
	if err != nil {
		return nil, fmt.Errorf("load leads: %w", err)
	}

	rows := make([]LeadExportRow, 0, len(leads))
	for _, lead := range leads {
		received := dateOnly(lead.CreatedAt.In(service.location))
		if filter.From != nil && received.Before(*filter.From) {
			continue
		}
		if filter.To != nil && received.After(*filter.To) {
			continue
		}
		rows = append(rows, leadExportRow(lead, received))
	}
	return rows, nil
}

func leadExportRow(lead models.Lead, received time.Time) LeadExportRow {
	row := LeadExportRow{
		Received:       received.Format(models.DateLayout),
		ProjectName:    lead.ProjectName,
		Status:         string(lead.Status),
		Source:         lead.Source,
		EstimatedStart: lead.EstimatedStartDate,
		ContactName:    lead.GCName,
		ContactEmail:   lead.GCEmail,
		ContactPhone:   lead.GCPhone,
		CompanyName:    lead.CompanyName,
		Address:        lead.Address,
		Message:        lead.Message,
	}
	if lead.Phase != "" {
		row.Phase = lead.Phase.Label()
	}
	if lead.SqFootage != nil {
		row.SqFootage = strconv.Itoa(*lead.SqFootage)
	}
	return row
}

func (row LeadExportRow) Columns() []string {
	return []string{
		row.Received,
		row.ProjectName,
		row.Status,
		row.Source,
		row.Phase,
		row.SqFootage,
		row.EstimatedStart,
		row.ContactName,
		row.ContactEmail,
		row.ContactPhone,
		row.CompanyName,
		row.Address,
		row.Message,
	}
}

func WriteLeadsCSV(w io.Writer, rows []LeadExportRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(LeadExportHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row.Columns()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// BuildLeadsXLSX renders a single styled sheet with a frozen header row.
func BuildLeadsXLSX(rows []LeadExportRow) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	index, err := file.NewSheet(exportSheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	file.SetActiveSheet(index)

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, header := range LeadExportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(exportSheetName, cell, header); err != nil {
			return nil, fmt.Errorf("set header %s: %w", cell, err)
		}
		if err := file.SetCellStyle(exportSheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("style header %s: %w", cell, err)
		}

		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetColWidth(exportSheetName, name, name, leadExportColumnWidths[col]); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	for rowIndex, row := range rows {
		for col, value := range row.Columns() {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, rowIndex+2)
			if err != nil {
				return nil, err
			}
			var cellValue any = value
			if col == 5 {
				if number, err := strconv.Atoi(value); err == nil {
					cellValue = number
				}
			}
			if err := file.SetCellValue(exportSheetName, cell, cellValue); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	if err := file.SetPanes(exportSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buffer bytes.Buffer
	if _, err := file.WriteTo(&buffer); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buffer.Bytes(), nil
}
