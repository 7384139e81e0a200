// Package pdf renders the fixed document templates (certificate, report card,
// absence excuse, payment receipt) to PDF bytes with go-pdf/fpdf.
//
// Output is deterministic for a given input: compression is off and the
// creation date is fixed, so re-rendering a record reproduces the same bytes
// and a signed render carries exactly one signature block.
package pdf

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/crypto/blake2b"

	"github.com/edumanage/edumanage-core/internal/domain/document"
	"github.com/edumanage/edumanage-core/internal/domain/settings"
	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/pkg/timeutil"
)

// SignatureMarker is the heading of the signature stamp.
const SignatureMarker = "Cachet et signature"

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config configures the renderer.
type Config struct {
	// CreationDate is written into every file's metadata.
	CreationDate time.Time

	// Compress enables stream compression. Off by default so that text
	// stays greppable in the output.
	Compress bool

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultConfig returns the renderer defaults.
func DefaultConfig() Config {
	return Config{
		CreationDate: time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Renderer turns document records into PDF bytes.
type Renderer struct {
	config Config
	logger *slog.Logger
}

// NewRenderer creates a renderer.
func NewRenderer(config Config) *Renderer {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.CreationDate.IsZero() {
		config.CreationDate = DefaultConfig().CreationDate
	}
	return &Renderer{config: config, logger: config.Logger}
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST
// ══════════════════════════════════════════════════════════════════════════════

// Header is the institution letterhead.
type Header struct {
	Name     string
	Address  string
	Phone    string
	Email    string
	Location string
	Language string
}

// HeaderFrom builds the letterhead from institution settings.
func HeaderFrom(s settings.Institution) Header {
	return Header{
		Name:     s.Name,
		Address:  s.Address,
		Phone:    s.Phone,
		Email:    s.Email,
		Location: s.Location,
		Language: s.Language,
	}
}

// Signature is the stamp appended to a signed render.
type Signature struct {
	Signer      string
	SignedAt    time.Time
	Institution string
	Code        string
}

// Request describes one render.
type Request struct {
	Header    Header
	Record    document.Record
	Signature *Signature
}

// VerificationCode derives the short code printed in the stamp from the
// record id, the signer and the signing time: the first five bytes of a
// BLAKE2b-256 digest as ten upper-case hex characters.
func VerificationCode(recordID, signer string, signedAt time.Time) string {
	sum := blake2b.Sum256([]byte(recordID + "|" + signer + "|" + strconv.FormatInt(signedAt.UnixMilli(), 10)))
	return strings.ToUpper(hex.EncodeToString(sum[:5]))
}

// ══════════════════════════════════════════════════════════════════════════════
// RENDERING
// ══════════════════════════════════════════════════════════════════════════════

// Render produces the PDF for req. Records without a template type return
// shared.ErrUnsupportedTemplate; fpdf failures are wrapped as
// shared.ErrGenerationFailed.
func (r *Renderer) Render(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !req.Record.Type.IsGenerated() {
		return nil, shared.ErrUnsupportedTemplate
	}

	p := r.newPage(req)
	switch req.Record.Type {
	case document.TypeCertificate:
		p.certificate()
	case document.TypeReportCard:
		p.reportCard()
	case document.TypeAbsenceExcuse:
		p.absenceExcuse()
	case document.TypePaymentReceipt:
		p.paymentReceipt()
	}
	if req.Signature != nil {
		p.signature(*req.Signature)
	}

	var buf bytes.Buffer
	if err := p.f.Output(&buf); err != nil {
		r.logger.ErrorContext(ctx, "pdf render failed",
			"type", req.Record.Type,
			"record_id", req.Record.ID,
			"error", err,
		)
		return nil, shared.WrapError("document", "Render", shared.ErrGenerationFailed,
			fmt.Sprintf("render %s", req.Record.Type), err)
	}

	r.logger.DebugContext(ctx, "pdf rendered",
		"type", req.Record.Type,
		"record_id", req.Record.ID,
		"bytes", buf.Len(),
		"signed", req.Signature != nil,
	)
	return buf.Bytes(), nil
}

// page wraps one fpdf document with the cp1252 translator and labels.
type page struct {
	f      *fpdf.Fpdf
	tr     func(string) string
	req    Request
	labels labels
}

func (r *Renderer) newPage(req Request) *page {
	f := fpdf.New("P", "mm", "A4", "")
	f.SetCompression(r.config.Compress)
	f.SetCreationDate(r.config.CreationDate)
	f.SetCreator("EduManage", false)
	f.SetMargins(20, 20, 20)
	f.SetAutoPageBreak(true, 25)

	p := &page{
		f:      f,
		tr:     f.UnicodeTranslatorFromDescriptor(""),
		req:    req,
		labels: labelsFor(req.Header.Language),
	}
	f.SetTitle(p.tr(req.Record.Title), false)
	f.SetFooterFunc(p.footer)
	f.AddPage()
	p.letterhead()
	return p
}

func (p *page) text(s string) string { return p.tr(s) }

func (p *page) letterhead() {
	name := p.req.Header.Name
	if name == "" {
		name = p.labels.institution
	}
	p.f.SetFont("Helvetica", "B", 20)
	p.f.CellFormat(0, 10, p.text(p.title()), "", 1, "C", false, 0, "")
	p.f.SetFont("Helvetica", "", 12)
	p.f.CellFormat(0, 7, p.text(name), "", 1, "C", false, 0, "")
	p.f.Ln(12)
}

func (p *page) title() string {
	if p.req.Record.Title != "" {
		return p.req.Record.Title
	}
	return p.labels.titles[p.req.Record.Type]
}

func (p *page) line(format string, args ...any) {
	p.f.MultiCell(0, 7, p.text(fmt.Sprintf(format, args...)), "", "L", false)
	p.f.Ln(2)
}

func (p *page) tpl() document.Template {
	if p.req.Record.Template == nil {
		return document.Template{}
	}
	return *p.req.Record.Template
}

func (p *page) issued() string {
	t := p.tpl()
	if t.IssuedAt == 0 {
		return timeutil.FormatDate(timeutil.FromUnixMilli(p.req.Record.CreatedAt), p.req.Header.Language)
	}
	return timeutil.FormatDate(timeutil.FromUnixMilli(t.IssuedAt), p.req.Header.Language)
}

func (p *page) certificate() {
	t := p.tpl()
	l := p.labels
	p.f.SetFont("Helvetica", "", 14)
	p.line("%s %s", l.certifies, p.req.Record.OwnerName)
	if t.GroupName != "" {
		p.line("%s %s.", l.enrolledIn, t.GroupName)
	} else {
		p.line("%s.", l.enrolled)
	}
	p.f.Ln(8)
	p.f.SetFont("Helvetica", "", 11)
	p.line("%s %s", l.doneOn, p.issued())
}

func (p *page) reportCard() {
	t := p.tpl()
	l := p.labels
	p.f.SetFont("Helvetica", "", 12)
	p.line("%s: %s", l.student, p.req.Record.OwnerName)
	if t.GroupName != "" {
		p.line("%s: %s", l.group, t.GroupName)
	}
	p.f.Ln(4)

	p.f.SetFont("Helvetica", "B", 11)
	p.f.CellFormat(120, 8, p.text(l.subject), "B", 0, "L", false, 0, "")
	p.f.CellFormat(50, 8, p.text(l.average), "B", 1, "R", false, 0, "")
	p.f.SetFont("Helvetica", "", 11)
	for _, s := range t.Subjects {
		p.f.CellFormat(120, 7, p.text(s.Subject), "", 0, "L", false, 0, "")
		p.f.CellFormat(50, 7, fmt.Sprintf("%.2f/20", s.Average), "", 1, "R", false, 0, "")
	}
	p.f.Ln(6)

	p.f.SetFont("Helvetica", "B", 12)
	if t.OverallAvg != nil {
		p.line("%s: %.2f/20", l.overall, *t.OverallAvg)
	} else {
		p.line("%s: -", l.overall)
	}
	p.f.SetFont("Helvetica", "", 11)
	p.line("%s %s", l.doneOn, p.issued())
}

func (p *page) absenceExcuse() {
	t := p.tpl()
	l := p.labels
	date := t.AbsenceDate
	if date == "" {
		date = p.issued()
	}
	p.f.SetFont("Helvetica", "", 12)
	p.line("%s: %s", l.student, p.req.Record.OwnerName)
	p.line("%s: %s", l.absenceDate, date)
	p.line("%s: %s", l.reason, t.Reason)
	p.f.Ln(8)
	p.line("%s", l.approved)
}

func (p *page) paymentReceipt() {
	t := p.tpl()
	l := p.labels
	p.f.SetFont("Helvetica", "", 12)
	p.line("%s: %s", l.beneficiary, p.req.Record.OwnerName)
	p.line("%s: %s", l.course, t.Course)
	p.line("%s: %s MAD", l.amount, strconv.FormatFloat(t.Amount, 'f', -1, 64))
	p.line("%s: %s", l.invoice, t.InvoiceNumber)
	p.line("%s: %s", l.date, p.issued())
}

// signature draws the stamp in the bottom-right corner of the last page.
func (p *page) signature(sig Signature) {
	const (
		w = 80.0
		h = 38.0
	)
	_, pageH := p.f.GetPageSize()
	x := 210.0 - 20 - w
	y := pageH - 25 - h - 5
	if p.f.GetY() > y {
		p.f.AddPage()
	}

	p.f.SetDrawColor(30, 64, 175)
	p.f.SetLineWidth(0.6)
	p.f.Rect(x, y, w, h, "D")

	p.f.SetTextColor(30, 64, 175)
	p.f.SetXY(x, y+2)
	p.f.SetFont("Helvetica", "B", 11)
	p.f.CellFormat(w, 6, SignatureMarker, "", 2, "C", false, 0, "")

	p.f.SetFont("Helvetica", "", 9)
	institution := sig.Institution
	if institution == "" {
		institution = p.labels.institution
	}
	for _, s := range []string{
		institution,
		p.labels.signedBy + ": " + sig.Signer,
		p.labels.signedOn + ": " + timeutil.FormatDateTime(sig.SignedAt, p.req.Header.Language),
		p.labels.code + ": " + sig.Code,
	} {
		p.f.SetX(x)
		p.f.CellFormat(w, 6, p.text(s), "", 2, "C", false, 0, "")
	}
	p.f.SetTextColor(0, 0, 0)
	p.f.SetDrawColor(0, 0, 0)
}

func (p *page) footer() {
	h := p.req.Header
	parts := make([]string, 0, 3)
	for _, s := range []string{h.Address, h.Phone, h.Email} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	p.f.SetY(-18)
	p.f.SetFont("Helvetica", "", 8)
	p.f.SetTextColor(110, 110, 110)
	p.f.CellFormat(0, 5, p.text(strings.Join(parts, " - ")), "T", 1, "C", false, 0, "")
	if by := p.req.Record.CreatedBy; by != "" {
		p.f.CellFormat(0, 4, p.text(p.labels.createdBy+": "+by), "", 1, "C", false, 0, "")
	}
	p.f.SetTextColor(0, 0, 0)
}
