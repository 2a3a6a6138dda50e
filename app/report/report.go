// Package report builds date-scoped order reports.
//
// The pipeline is synchronous: fetch the server-filtered subset, render the
// table into a document, store the artifact, return its location. The
// artifact bytes are fully built before anything is written. Fetch failures
// are always surfaced to the caller.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/vperfumes/tracker/app/client"
	"github.com/vperfumes/tracker/app/models"
	"github.com/vperfumes/tracker/pkg/storage"
	"github.com/vperfumes/tracker/pkg/validate"
)

// ErrDateRequired is returned when no report date was supplied. The message
// is user-facing.
var ErrDateRequired = errors.New("الرجاء اختيار تاريخ أولاً")

// ErrBadDate is returned when the date is not a YYYY-MM-DD calendar date.
var ErrBadDate = errors.New("التاريخ غير صالح")

// Formats supported for the generated artifact.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// Generator fetches report data and renders artifacts.
type Generator struct {
	client *client.Client
}

// NewGenerator builds a Generator over the API client.
func NewGenerator(c *client.Client) *Generator {
	return &Generator{client: c}
}

// Generate fetches the orders of the given date, renders them in the given
// format, writes the artifact to the named storage disk, and returns the
// artifact's location.
func (g *Generator) Generate(ctx context.Context, date, format, disk string) (string, error) {
	if date == "" {
		return "", ErrDateRequired
	}
	if !validate.Date(date) {
		return "", ErrBadDate
	}

	orders, err := g.client.Report(ctx, date)
	if err != nil {
		return "", fmt.Errorf("report: fetch orders for %s: %w", date, err)
	}

	var data []byte
	switch format {
	case FormatPDF:
		data, err = BuildPDF(orders, date)
	case FormatXLSX:
		data, err = BuildXLSX(orders, date)
	default:
		return "", fmt.Errorf("report: unknown format %q", format)
	}
	if err != nil {
		return "", err
	}

	d, err := storage.Use(disk)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("orders-%s.%s", date, format)
	if err := d.Put(name, data); err != nil {
		return "", fmt.Errorf("report: store artifact: %w", err)
	}
	return d.URL(name), nil
}

// ─── PDF ──────────────────────────────────────────────────────────────────────

var pdfColumns = []struct {
	title string
	width float64
}{
	{"Order #", 60},
	{"Company", 95},
	{"Customer", 105},
	{"Phone", 85},
	{"Area", 95},
	{"Price", 60},
	{"Delivery", 60},
	{"Status", 70},
	{"Date", 70},
}

// statusLatin maps the localized status labels onto Latin words for the PDF
// renderer, whose core fonts cannot encode Arabic glyphs. The XLSX artifact
// keeps the labels verbatim.
func statusLatin(status string) string {
	switch status {
	case models.StatusOngoing:
		return "Ongoing"
	case models.StatusDone:
		return "Done"
	case models.StatusCancelled:
		return "Cancelled"
	}
	return status
}

// BuildPDF renders the orders into a single-table PDF document.
func BuildPDF(orders []models.Order, date string) ([]byte, error) {
	pdf := gofpdf.New("L", "pt", "A4", "")
	pdf.SetTitle("VPerfumes orders "+date, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 24, "VPerfumes — Orders for "+date, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(76, 29, 149)
	pdf.SetTextColor(255, 255, 255)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 22, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)

	if len(orders) == 0 {
		pdf.CellFormat(700, 22, "No orders", "1", 1, "C", false, 0, "")
	}

	fill := false
	for _, o := range orders {
		pdf.SetFillColor(245, 243, 255)
		cells := []string{
			o.OrderNumber,
			o.CompanyName,
			o.CustomerName,
			o.CustomerPhone,
			o.DeliveryArea,
			strconv.FormatFloat(o.OrderPrice, 'f', 2, 64),
			strconv.FormatFloat(o.DeliveryCost, 'f', 2, 64),
			statusLatin(o.Status),
			o.OrderDate,
		}
		for i, cell := range cells {
			pdf.CellFormat(pdfColumns[i].width, 20, tr(cell), "1", 0, "C", fill, 0, "")
		}
		pdf.Ln(-1)
		fill = !fill
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// ─── XLSX ─────────────────────────────────────────────────────────────────────

var xlsxHeaders = []string{
	"رقم الطلب", "الشركة", "اسم الزبون", "رقم الهاتف", "المنطقة",
	"سعر الطلب", "تكلفة التوصيل", "الحالة", "تاريخ الطلب",
}

// BuildXLSX renders the orders into a one-sheet workbook.
func BuildXLSX(orders []models.Order, date string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for i, h := range xlsxHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("report: cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("report: write header: %w", err)
		}
	}

	for row, o := range orders {
		values := []interface{}{
			o.OrderNumber, o.CompanyName, o.CustomerName, o.CustomerPhone,
			o.DeliveryArea, o.OrderPrice, o.DeliveryCost, o.Status, o.OrderDate,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("report: cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("report: write row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("report: render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
