// Package documents управляет жизненным циклом документов учреждения:
// генерация PDF по шаблону, подписание и снятие подписи.
package documents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/edumanage/edumanage-core/internal/domain/activity"
	"github.com/edumanage/edumanage-core/internal/domain/document"
	"github.com/edumanage/edumanage-core/internal/domain/exam"
	"github.com/edumanage/edumanage-core/internal/domain/roster"
	"github.com/edumanage/edumanage-core/internal/domain/settings"
	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/internal/infrastructure/pdf"
	"github.com/edumanage/edumanage-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Store - хранилище записей документов.
type Store interface {
	Add(ctx context.Context, rec document.Record) (document.Record, error)
	Get(ctx context.Context, id string) (document.Record, bool)
	Modify(ctx context.Context, id string, fn func(document.Record) (document.Record, error)) (document.Record, bool, error)
}

// Renderer превращает запись в PDF.
type Renderer interface {
	Render(ctx context.Context, req pdf.Request) ([]byte, error)
}

// SettingsReader отдаёт текущие настройки учреждения.
type SettingsReader interface {
	Load(ctx context.Context) settings.Institution
}

// StudentDirectory ищет ученика в удалённом справочнике.
type StudentDirectory interface {
	GetStudent(ctx context.Context, id string) (roster.Student, bool, error)
}

// CoefficientResolver отдаёт функцию коэффициентов предметов.
type CoefficientResolver interface {
	Resolver(ctx context.Context) func(shared.SubjectRef) float64
}

// Config содержит зависимости менеджера.
type Config struct {
	Documents    Store
	Renderer     Renderer
	Settings     SettingsReader
	Activity     activity.Recorder   // может быть nil
	Directory    StudentDirectory    // может быть nil
	Coefficients CoefficientResolver // может быть nil: все веса 1
	Logger       *slog.Logger
	Now          func() time.Time
}

// Manager - менеджер жизненного цикла документов.
type Manager struct {
	docs         Store
	renderer     Renderer
	settings     SettingsReader
	activity     activity.Recorder
	directory    StudentDirectory
	coefficients CoefficientResolver
	logger       *slog.Logger
	now          func() time.Time
}

// NewManager создаёт менеджер.
func NewManager(cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = timeutil.Now
	}
	return &Manager{
		docs:         cfg.Documents,
		renderer:     cfg.Renderer,
		settings:     cfg.Settings,
		activity:     cfg.Activity,
		directory:    cfg.Directory,
		coefficients: cfg.Coefficients,
		logger:       cfg.Logger,
		now:          cfg.Now,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// INPUTS
// ══════════════════════════════════════════════════════════════════════════════

// Owner - владелец документа.
type Owner struct {
	Name      string `validate:"required"`
	ID        string
	CreatedBy string
}

// CertificateInput - данные справки об обучении.
type CertificateInput struct {
	Owner
	GroupName string
}

// ReportCardInput - данные табеля. Общая средняя считается по коэффициентам предметов.
type ReportCardInput struct {
	Owner
	GroupName string
	Subjects  []document.SubjectLine `validate:"dive"`
}

// AbsenceExcuseInput - данные оправдания пропуска. Пустая дата - сегодня.
type AbsenceExcuseInput struct {
	Owner
	Reason string `validate:"required"`
	Date   string `validate:"omitempty,isodate"`
}

// PaymentReceiptInput - данные квитанции.
type PaymentReceiptInput struct {
	Owner
	Amount        float64 `validate:"gte=0"`
	Course        string  `validate:"required"`
	InvoiceNumber string  `validate:"required"`
}

// ══════════════════════════════════════════════════════════════════════════════
// GENERATION
// ══════════════════════════════════════════════════════════════════════════════

// GenerateCertificate создаёт справку об обучении (Attestation de Scolarité).
func (m *Manager) GenerateCertificate(ctx context.Context, in CertificateInput) (document.Record, error) {
	if err := shared.ValidateStruct("document", "GenerateCertificate", in); err != nil {
		return document.Record{}, err
	}
	return m.generate(ctx, document.TypeCertificate, in.Owner, "attestation", &document.Template{
		GroupName: in.GroupName,
	})
}

// GenerateCertificateForStudent находит ученика в справочнике и создаёт справку.
func (m *Manager) GenerateCertificateForStudent(ctx context.Context, studentID, createdBy string) (document.Record, error) {
	if m.directory == nil {
		return document.Record{}, shared.NewDomainError("document", "GenerateCertificateForStudent",
			shared.ErrServiceUnavailable, "student directory is not configured")
	}
	st, ok, err := m.directory.GetStudent(ctx, studentID)
	if err != nil {
		return document.Record{}, fmt.Errorf("generate certificate: %w", err)
	}
	if !ok {
		return document.Record{}, shared.NewDomainError("document", "GenerateCertificateForStudent",
			shared.ErrNotFound, "student "+studentID+" not found")
	}
	return m.GenerateCertificate(ctx, CertificateInput{
		Owner:     Owner{Name: st.Name, ID: st.ID, CreatedBy: createdBy},
		GroupName: string(st.Group),
	})
}

// GenerateReportCard создаёт табель успеваемости (Bulletin de Notes).
func (m *Manager) GenerateReportCard(ctx context.Context, in ReportCardInput) (document.Record, error) {
	if err := shared.ValidateStruct("document", "GenerateReportCard", in); err != nil {
		return document.Record{}, err
	}

	subjects := make([]document.SubjectLine, len(in.Subjects))
	copy(subjects, in.Subjects)
	tpl := &document.Template{GroupName: in.GroupName, Subjects: subjects}
	if avg, ok := m.overallAverage(ctx, subjects); ok {
		tpl.OverallAvg = &avg
	}
	return m.generate(ctx, document.TypeReportCard, in.Owner, "bulletin", tpl)
}

func (m *Manager) overallAverage(ctx context.Context, lines []document.SubjectLine) (float64, bool) {
	weight := func(shared.SubjectRef) float64 { return 1 }
	if m.coefficients != nil {
		weight = m.coefficients.Resolver(ctx)
	}
	averages := make([]exam.SubjectAverage, 0, len(lines))
	for _, l := range lines {
		averages = append(averages, exam.SubjectAverage{Subject: shared.SubjectRef(l.Subject), Average: l.Average})
	}
	return exam.WeightedAverage(averages, weight)
}

// GenerateAbsenceExcuse создаёт оправдание пропуска (Justificatif d'Absence).
func (m *Manager) GenerateAbsenceExcuse(ctx context.Context, in AbsenceExcuseInput) (document.Record, error) {
	if err := shared.ValidateStruct("document", "GenerateAbsenceExcuse", in); err != nil {
		return document.Record{}, err
	}
	date := in.Date
	if date == "" {
		date = timeutil.ISODate(m.now())
	}
	return m.generate(ctx, document.TypeAbsenceExcuse, in.Owner, "absence", &document.Template{
		AbsenceDate: date,
		Reason:      in.Reason,
	})
}

// GeneratePaymentReceipt создаёт квитанцию об оплате (Reçu de Paiement).
func (m *Manager) GeneratePaymentReceipt(ctx context.Context, in PaymentReceiptInput) (document.Record, error) {
	if err := shared.ValidateStruct("document", "GeneratePaymentReceipt", in); err != nil {
		return document.Record{}, err
	}
	return m.generate(ctx, document.TypePaymentReceipt, in.Owner, "recu", &document.Template{
		Amount:        in.Amount,
		Course:        in.Course,
		InvoiceNumber: in.InvoiceNumber,
	})
}

// generate рендерит шаблон, сохраняет неподписанную запись и пишет в журнал.
func (m *Manager) generate(ctx context.Context, t document.Type, owner Owner, suffix string, tpl *document.Template) (document.Record, error) {
	inst := m.settings.Load(ctx)
	now := m.now()
	tpl.IssuedAt = now.UnixMilli()

	rec := document.Record{
		ID:        shared.NewTimestampID(now),
		Title:     pdf.DefaultTitle(t, inst.Language),
		Type:      t,
		OwnerName: owner.Name,
		OwnerID:   owner.ID,
		CreatedBy: owner.CreatedBy,
		CreatedAt: now.UnixMilli(),
		FileName:  document.Slug(owner.Name) + "_" + suffix + ".pdf",
		Template:  tpl,
	}

	data, err := m.renderer.Render(ctx, pdf.Request{Header: pdf.HeaderFrom(inst), Record: rec})
	if err != nil {
		return document.Record{}, generationError("Generate", t, err)
	}
	attachPDF(&rec, data)

	stored, err := m.docs.Add(ctx, rec)
	if err != nil {
		return document.Record{}, fmt.Errorf("store %s: %w", t, err)
	}

	m.logger.InfoContext(ctx, "document generated",
		"document_id", stored.ID,
		"type", stored.Type,
		"owner", stored.OwnerName,
	)
	m.record(ctx, stored)
	return stored, nil
}

func (m *Manager) record(ctx context.Context, rec document.Record) {
	if m.activity == nil {
		return
	}
	_, err := m.activity.Add(ctx, activity.Item{
		Type:    activity.TypeReportGenerated,
		Message: rec.Title + " - " + rec.OwnerName,
	})
	if err != nil {
		m.logger.WarnContext(ctx, "failed to record activity", "document_id", rec.ID, "error", err)
	}
}

func attachPDF(rec *document.Record, data []byte) {
	rec.DataURL = document.PDFDataURL(data)
	rec.FileType = "application/pdf"
	rec.FileName = document.PDFFileName(rec.FileName, rec.Title)
	rec.Size = len(rec.DataURL)
}

func generationError(op string, t document.Type, err error) error {
	if shared.IsValidation(err) {
		return err
	}
	return shared.WrapError("document", op, shared.ErrGenerationFailed, "render "+string(t), err)
}

// ══════════════════════════════════════════════════════════════════════════════
// SIGNING
// ══════════════════════════════════════════════════════════════════════════════

// Sign подписывает (signed == true) или снимает подпись с документа.
//
// При подписании сгенерированные системой типы перерендериваются из
// сохранённого шаблона плюс ровно один блок подписи, поэтому повторное
// подписание не накапливает блоки. Для загруженных файлов меняются только
// метаданные. Снятие подписи очищает signedAt/signedBy и не трогает файл.
// Ошибка рендера возвращается, запись при этом не меняется.
func (m *Manager) Sign(ctx context.Context, id string, signed bool, signer string) (document.Record, error) {
	inst := m.settings.Load(ctx)
	now := m.now()

	rec, ok, err := m.docs.Modify(ctx, id, func(rec document.Record) (document.Record, error) {
		if !signed {
			rec.Signed = false
			rec.SignedAt = 0
			rec.SignedBy = ""
			return rec, nil
		}

		rec.Signed = true
		rec.SignedAt = now.UnixMilli()
		switch {
		case signer != "":
			rec.SignedBy = signer
		case rec.SignedBy == "":
			rec.SignedBy = inst.Name
		}

		if !rec.Type.IsGenerated() || rec.Template == nil {
			return rec, nil
		}

		data, err := m.renderer.Render(ctx, pdf.Request{
			Header: pdf.HeaderFrom(inst),
			Record: rec,
			Signature: &pdf.Signature{
				Signer:      rec.SignedBy,
				SignedAt:    now,
				Institution: inst.Name,
				Code:        pdf.VerificationCode(rec.ID, rec.SignedBy, now),
			},
		})
		if err != nil {
			return rec, generationError("Sign", rec.Type, err)
		}
		attachPDF(&rec, data)
		return rec, nil
	})
	if !ok {
		return document.Record{}, shared.ErrDocumentNotFound
	}
	if err != nil {
		m.logger.ErrorContext(ctx, "document signing failed", "document_id", id, "error", err)
		return document.Record{}, err
	}

	m.logger.InfoContext(ctx, "document signature changed",
		"document_id", id,
		"signed", rec.Signed,
		"signed_by", rec.SignedBy,
	)
	return rec, nil
}
