package forms

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

var terms = []string{
	"The employee acknowledges receipt of the assigned IT equipment and accessories in good working condition.",
	"The employee is responsible for the safekeeping, proper use and care of the assigned equipment.",
	"The equipment shall be used for authorized company business in accordance with organizational policies.",
	"Unauthorized software, configuration changes or disabled security controls require written approval from IT.",
	"Loss, theft, damage or suspected compromise of the equipment or data must be reported to IT immediately.",
	"The organization may monitor, audit, retrieve or remotely secure the equipment as company policy allows.",
	"All equipment and accessories must be returned upon termination, reassignment or request.",
}

// PDFRenderer draws A4 forms with the core Helvetica font.
type PDFRenderer struct{}

func NewPDFRenderer() PDFRenderer { return PDFRenderer{} }

func (PDFRenderer) Render(kind Kind, p Payload) ([]byte, error) {
	title := Title(kind)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetTitle(title, true)
	pdf.SetAuthor(p.Header.OrgName, true)
	pdf.SetCreationDate(p.GeneratedAt)
	pdf.SetModificationDate(p.GeneratedAt)
	pdf.SetCatalogSort(true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(120, 5, tr(fmt.Sprintf("%s | Doc No: %s | Rev: %s", title, p.Header.DocNumber, p.Header.Revision)), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 1, "R", false, 0, "")
		pdf.Ln(4)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 5, "Uncontrolled when printed", "", 0, "L", false, 0, "")
	})

	pdf.AddPage()

	// 页眉：机构 + 标题
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(p.Header.OrgName), "", 1, "L", false, 0, "")
	if p.Header.Address != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 5, tr(p.Header.Address), "", 1, "L", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "B", 1, "C", false, 0, "")
	pdf.Ln(4)

	controlRow := func(k1, v1, k2, v2 string) {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(220, 220, 220)
		pdf.CellFormat(30, 7, k1, "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(60, 7, tr(v1), "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(30, 7, k2, "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 7, tr(v2), "1", 1, "L", false, 0, "")
	}
	controlRow("Doc No", p.Header.DocNumber, "Revision", p.Header.Revision)
	controlRow("Approved By", p.Header.ApprovedBy, "Date", formatDate(&p.GeneratedAt))
	pdf.Ln(6)

	section := func(name string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, name, "", 1, "L", false, 0, "")
	}
	field := func(k, v string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(235, 235, 235)
		pdf.CellFormat(60, 7, k, "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, tr(v), "1", 1, "L", false, 0, "")
	}

	section("1. Allocation Details")
	field("Employee Name", p.Employee.FullName())
	field("Username", p.Employee.Username)
	field("Laptop Description", p.Device.Brand+" "+p.Device.Model)
	field("Serial Number", p.Device.SerialNumber)
	field("Asset Tag", p.Device.AssetTag)
	if kind == Allocation {
		field("Allocation Date", formatDate(&p.AllocationDate))
		field("Condition on Allocation", p.AllocationCondition)
		field("Reason for Allocation", p.Reason)
		field("Allocated By", p.Allocator.FullName())
	}
	pdf.Ln(6)

	section("2. Return Details")
	field("Return Date", formatDate(p.ReturnDate))
	field("Reason for Return", p.ReturnComment)
	field("Condition on Return", p.ConditionOnReturn)
	if kind == Return {
		field("Received By", p.Returner.FullName())
	}
	pdf.Ln(8)

	section("3. Signatures")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(220, 220, 220)
	widths := []float64{30, 50, 70, 30}
	for i, h := range []string{"Role", "Name", "Signature", "Date"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	officer := p.Allocator
	if kind == Return {
		officer = p.Returner
	}
	for _, row := range [][2]string{{"Employee", p.Employee.FullName()}, {"IT Officer", officer.FullName()}} {
		pdf.CellFormat(widths[0], 18, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 18, tr(row[1]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 18, "", "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 18, "", "1", 1, "L", false, 0, "")
	}

	if kind == Allocation {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 10, "Terms and Conditions of IT Asset Allocation", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for i, t := range terms {
			pdf.MultiCell(0, 6, fmt.Sprintf("%d. %s", i+1, t), "", "L", false)
			pdf.Ln(1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %s form: %w", kind, err)
	}
	return buf.Bytes(), nil
}
