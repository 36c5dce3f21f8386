package render

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/createwith/invoicepdf/models"
	"github.com/jung-kurt/gofpdf"
)

const (
	draftFont       = "Helvetica"
	draftLineHeight = 5.0
	draftRowPadding = 2.5
)

var defaultDraftBrand = rgb{60, 41, 109}

// DraftEngine renders a plain PDF locally with gofpdf, for environments that
// have no browser available. It reads the composed markup back with goquery
// and lays out the same sections on the same page geometry. Images are not
// drawn.
type DraftEngine struct{}

// NewDraftEngine creates a DraftEngine.
func NewDraftEngine() *DraftEngine {
	return &DraftEngine{}
}

// Render converts the document into PDF bytes.
func (e *DraftEngine) Render(ctx context.Context, doc models.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pdf, err := e.layout(doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// ContentType returns the PDF MIME type.
func (e *DraftEngine) ContentType() string {
	return "application/pdf"
}

// Extension returns the file extension for PDF output.
func (e *DraftEngine) Extension() string {
	return ".pdf"
}

// Close is a no-op; the engine holds no resources.
func (e *DraftEngine) Close() error {
	return nil
}

type rgb struct{ r, g, b int }

// draft carries layout state for one document.
type draft struct {
	pdf   *gofpdf.Fpdf
	tr    func(string) string
	page  models.PageGeometry
	brand rgb
}

func (e *DraftEngine) layout(doc models.Document) (*gofpdf.Fpdf, error) {
	dom, err := goquery.NewDocumentFromReader(strings.NewReader(doc.HTML))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	page := doc.Page
	if page.WidthMM == 0 {
		page = models.A4Portrait
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: page.WidthMM, Ht: page.HeightMM},
	})
	pdf.SetMargins(page.Margins.Left, page.Margins.Top, page.Margins.Right)
	pdf.SetAutoPageBreak(true, page.Margins.Bottom)
	pdf.SetTitle(doc.Title, true)
	pdf.AddPage()

	d := &draft{
		pdf:   pdf,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		page:  page,
		brand: parseHexColor(dom.Find("main").AttrOr("data-brand", "")),
	}

	d.header(dom)
	d.parties(dom)
	d.items(dom)
	d.totals(dom)
	d.notes(dom)
	d.payment(dom)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("laying out pdf: %w", err)
	}
	return pdf, nil
}

func (d *draft) contentWidth() float64 {
	return d.page.WidthMM - d.page.Margins.Left - d.page.Margins.Right
}

// ensure starts a new page unless a block of height h fits below the cursor.
func (d *draft) ensure(h float64) {
	if !fits(d.pdf.GetY(), h, d.page.HeightMM, d.page.Margins.Bottom) {
		d.pdf.AddPage()
	}
}

// fits reports whether a block of height h starting at y ends above the
// bottom margin.
func fits(y, h, pageHeight, bottomMargin float64) bool {
	return y+h <= pageHeight-bottomMargin
}

func (d *draft) header(dom *goquery.Document) {
	pdf := d.pdf
	left := d.page.Margins.Left
	width := d.contentWidth()

	pdf.SetFont(draftFont, "B", 9)
	pdf.SetTextColor(d.brand.r, d.brand.g, d.brand.b)
	pdf.CellFormat(width, 5, d.tr(strings.ToUpper(clean(dom.Find(".pill").First().Text()))), "", 1, "L", false, 0, "")

	pdf.SetFont(draftFont, "B", 18)
	pdf.SetTextColor(15, 23, 42)
	pdf.CellFormat(width, 10, d.tr(clean(dom.Find("h1").First().Text())), "", 1, "R", false, 0, "")

	pdf.SetFont(draftFont, "", 9)
	pdf.SetTextColor(71, 85, 105)
	dom.Find(".meta table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		label := clean(cells.Eq(0).Text())
		value := clean(cells.Eq(1).Text())
		pdf.SetX(left + width/2)
		pdf.CellFormat(width/4, draftLineHeight, d.tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(width/4, draftLineHeight, d.tr(value), "", 1, "R", false, 0, "")
	})
	pdf.Ln(6)
}

func (d *draft) parties(dom *goquery.Document) {
	pdf := d.pdf
	left := d.page.Margins.Left
	colWidth := d.contentWidth() / 2
	top := pdf.GetY()
	bottom := top

	dom.Find(".columns > div").Each(func(i int, col *goquery.Selection) {
		if i > 1 {
			return
		}
		pdf.SetXY(left+float64(i)*colWidth, top)
		pdf.SetFont(draftFont, "B", 8)
		pdf.SetTextColor(71, 85, 105)
		pdf.CellFormat(colWidth, draftLineHeight, d.tr(strings.ToUpper(clean(col.Find(".label").Text()))), "", 2, "L", false, 0, "")

		pdf.SetFont(draftFont, "", 10)
		pdf.SetTextColor(15, 23, 42)
		col.Find(".value .line").Each(func(_ int, line *goquery.Selection) {
			pdf.SetX(left + float64(i)*colWidth)
			pdf.MultiCell(colWidth-4, draftLineHeight, d.tr(clean(line.Text())), "", "L", false)
		})
		if y := pdf.GetY(); y > bottom {
			bottom = y
		}
	})
	pdf.SetXY(left, bottom)
	pdf.Ln(6)
}

// item column widths as fractions of the content width.
var itemColumns = []struct {
	label string
	frac  float64
	align string
}{
	{"Description", 0.52, "L"},
	{"Qty", 0.12, "R"},
	{"Unit", 0.18, "R"},
	{"Line Total", 0.18, "R"},
}

func (d *draft) itemsHeader() {
	pdf := d.pdf
	width := d.contentWidth()
	pdf.SetFont(draftFont, "B", 8)
	pdf.SetTextColor(71, 85, 105)
	for i, c := range itemColumns {
		ln := 0
		if i == len(itemColumns)-1 {
			ln = 1
		}
		pdf.CellFormat(width*c.frac, 7, d.tr(strings.ToUpper(c.label)), "", ln, c.align, false, 0, "")
	}
	d.rule(0.6, d.brand)
}

func (d *draft) rule(weight float64, c rgb) {
	pdf := d.pdf
	y := pdf.GetY()
	pdf.SetLineWidth(weight)
	pdf.SetDrawColor(c.r, c.g, c.b)
	pdf.Line(d.page.Margins.Left, y, d.page.Margins.Left+d.contentWidth(), y)
	pdf.Ln(1)
}

// items draws the line-item table. A row that does not fit the remaining space
// moves whole to the next page, where the column header is repeated.
func (d *draft) items(dom *goquery.Document) {
	pdf := d.pdf
	width := d.contentWidth()
	left := d.page.Margins.Left
	descWidth := width * itemColumns[0].frac

	d.ensure(7 + draftLineHeight + 2*draftRowPadding)
	d.itemsHeader()

	dom.Find("table.items tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		values := make([]string, len(itemColumns))
		for i := range itemColumns {
			values[i] = d.tr(clean(cells.Eq(i).Text()))
		}

		pdf.SetFont(draftFont, "", 10)
		lines := pdf.SplitLines([]byte(values[0]), descWidth-2)
		if len(lines) == 0 {
			lines = [][]byte{nil}
		}
		height := float64(len(lines))*draftLineHeight + 2*draftRowPadding

		if !fits(pdf.GetY(), height, d.page.HeightMM, d.page.Margins.Bottom) {
			pdf.AddPage()
			d.itemsHeader()
			pdf.SetFont(draftFont, "", 10)
		}

		top := pdf.GetY()
		pdf.SetTextColor(30, 41, 59)
		for i, line := range lines {
			pdf.SetXY(left, top+draftRowPadding+float64(i)*draftLineHeight)
			pdf.CellFormat(descWidth, draftLineHeight, string(line), "", 0, "L", false, 0, "")
		}
		x := left + descWidth
		for i := 1; i < len(itemColumns); i++ {
			w := width * itemColumns[i].frac
			pdf.SetXY(x, top+draftRowPadding)
			pdf.CellFormat(w, draftLineHeight, values[i], "", 0, itemColumns[i].align, false, 0, "")
			x += w
		}
		pdf.SetXY(left, top+height)
		d.rule(0.2, rgb{226, 232, 240})
	})
}

func (d *draft) totals(dom *goquery.Document) {
	rows := dom.Find(".totals .total-row")
	if rows.Length() == 0 {
		return
	}
	pdf := d.pdf
	blockWidth := 80.0
	x := d.page.Margins.Left + d.contentWidth() - blockWidth

	pdf.Ln(6)
	d.ensure(float64(rows.Length())*(draftLineHeight+2) + 4)

	y := pdf.GetY()
	pdf.SetLineWidth(0.6)
	pdf.SetDrawColor(d.brand.r, d.brand.g, d.brand.b)
	pdf.Line(x, y, x+blockWidth, y)
	pdf.Ln(3)

	rows.Each(func(_ int, row *goquery.Selection) {
		spans := row.Find("span")
		style, size := "", 10.0
		if row.HasClass("grand") {
			style, size = "B", 12
		}
		pdf.SetFont(draftFont, style, size)
		pdf.SetTextColor(15, 23, 42)
		pdf.SetX(x)
		pdf.CellFormat(blockWidth/2, draftLineHeight+2, d.tr(clean(spans.Eq(0).Text())), "", 0, "L", false, 0, "")
		pdf.CellFormat(blockWidth/2, draftLineHeight+2, d.tr(clean(spans.Eq(1).Text())), "", 1, "R", false, 0, "")
	})
}

func (d *draft) notes(dom *goquery.Document) {
	sel := dom.Find(".notes")
	if sel.Length() == 0 {
		return
	}
	var lines []string
	for _, line := range strings.Split(sel.First().Text(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	pdf := d.pdf
	pdf.Ln(6)
	pdf.SetFont(draftFont, "", 10)
	pdf.SetTextColor(30, 41, 59)
	pdf.SetFillColor(248, 250, 252)
	pdf.MultiCell(d.contentWidth(), draftLineHeight+1, d.tr(strings.Join(lines, "\n")), "1", "L", true)
}

func (d *draft) payment(dom *goquery.Document) {
	sel := dom.Find(".pay")
	if sel.Length() == 0 {
		return
	}
	pdf := d.pdf
	lines := sel.Find(".line")
	pdf.Ln(4)
	d.ensure(float64(lines.Length()+1) * draftLineHeight)

	pdf.SetFont(draftFont, "B", 9)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(d.contentWidth(), draftLineHeight, d.tr(clean(sel.Find("strong").First().Text())), "", 1, "L", false, 0, "")
	pdf.SetFont(draftFont, "", 9)
	lines.Each(func(_ int, line *goquery.Selection) {
		pdf.CellFormat(d.contentWidth(), draftLineHeight, d.tr(clean(line.Text())), "", 1, "L", false, 0, "")
	})
}

// clean collapses runs of whitespace into single spaces.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// parseHexColor reads #rgb or #rrggbb, falling back to the default brand.
func parseHexColor(s string) rgb {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return defaultDraftBrand
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return defaultDraftBrand
	}
	return rgb{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}
}
