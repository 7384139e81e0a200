// Package document содержит доменную модель документов учреждения:
// сгенерированные системой PDF (справки, табели, квитанции) и загруженные файлы.
package document

import (
	"encoding/base64"
	"errors"
	"regexp"
	"sort"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Type определяет вид документа.
type Type string

const (
	// TypeCertificate - справка об обучении (Attestation de Scolarité).
	TypeCertificate Type = "certificate"
	// TypeReportCard - табель успеваемости (Bulletin de Notes).
	TypeReportCard Type = "report_card"
	// TypeAbsenceExcuse - оправдание пропуска (Justificatif d'Absence).
	TypeAbsenceExcuse Type = "absence_excuse"
	// TypePaymentReceipt - квитанция об оплате (Reçu de Paiement).
	TypePaymentReceipt Type = "payment_receipt"
	// TypeOther - произвольный загруженный документ.
	TypeOther Type = "other"
)

// IsValid проверяет, что тип корректен.
func (t Type) IsValid() bool {
	switch t {
	case TypeCertificate, TypeReportCard, TypeAbsenceExcuse, TypePaymentReceipt, TypeOther:
		return true
	default:
		return false
	}
}

// IsGenerated возвращает true для типов, которые система рендерит сама
// и может перерендерить при подписании.
func (t Type) IsGenerated() bool {
	switch t {
	case TypeCertificate, TypeReportCard, TypeAbsenceExcuse, TypePaymentReceipt:
		return true
	default:
		return false
	}
}

// Role - роль владельца документа.
type Role string

const (
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Record - запись о документе. DataURL хранит содержимое целиком
// ("data:application/pdf;base64,...").
type Record struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      Type      `json:"type"`
	OwnerName string    `json:"ownerName"`
	OwnerID   string    `json:"ownerId,omitempty"`
	Role      Role      `json:"role,omitempty"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt int64     `json:"createdAt"`
	FileName  string    `json:"fileName,omitempty"`
	FileType  string    `json:"fileType,omitempty"`
	Size      int       `json:"size,omitempty"`
	DataURL   string    `json:"dataUrl,omitempty"`
	Signed    bool      `json:"signed"`
	SignedBy  string    `json:"signedBy,omitempty"`
	SignedAt  int64     `json:"signedAt,omitempty"`
	Template  *Template `json:"template,omitempty"`
}

// Template хранит входные данные шаблона, из которых документ можно
// отрендерить заново. Для загруженных файлов отсутствует.
type Template struct {
	GroupName     string        `json:"groupName,omitempty"`
	Subjects      []SubjectLine `json:"subjects,omitempty"`
	OverallAvg    *float64      `json:"overallAverage,omitempty"`
	AbsenceDate   string        `json:"absenceDate,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Amount        float64       `json:"amount,omitempty"`
	Course        string        `json:"course,omitempty"`
	InvoiceNumber string        `json:"invoiceNumber,omitempty"`
	IssuedAt      int64         `json:"issuedAt,omitempty"`
}

// SubjectLine - строка табеля: предмет и средняя оценка из 20.
type SubjectLine struct {
	Subject string  `json:"subject"`
	Average float64 `json:"average"`
}

// Patch перечисляет изменяемые поля документа.
type Patch struct {
	Title     *string
	OwnerName *string
	OwnerID   *string
	Role      *Role
	FileName  *string
	FileType  *string
	DataURL   *string
}

// Apply возвращает копию записи с применёнными изменениями.
// Размер пересчитывается при замене содержимого.
func (p Patch) Apply(r Record) Record {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.OwnerName != nil {
		r.OwnerName = *p.OwnerName
	}
	if p.OwnerID != nil {
		r.OwnerID = *p.OwnerID
	}
	if p.Role != nil {
		r.Role = *p.Role
	}
	if p.FileName != nil {
		r.FileName = *p.FileName
	}
	if p.FileType != nil {
		r.FileType = *p.FileType
	}
	if p.DataURL != nil {
		r.DataURL = *p.DataURL
		r.Size = len(r.DataURL)
	}
	return r
}

// ══════════════════════════════════════════════════════════════════════════════
// QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// SortNewestFirst сортирует документы по дате создания, новые первыми.
func SortNewestFirst(docs []Record) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt > docs[j].CreatedAt
	})
}

// MatchesOwner проверяет вхождение подстроки (без учёта регистра) в имя или ID владельца.
func (r Record) MatchesOwner(term string) bool {
	t := strings.ToLower(term)
	return strings.Contains(strings.ToLower(r.OwnerName), t) ||
		strings.Contains(strings.ToLower(r.OwnerID), t)
}

// ══════════════════════════════════════════════════════════════════════════════
// FILE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

const pdfMIME = "application/pdf"

var whitespace = regexp.MustCompile(`\s+`)

// Slug приводит имя к виду, пригодному для имени файла: пробелы -> "_", нижний регистр.
func Slug(s string) string {
	return strings.ToLower(whitespace.ReplaceAllString(s, "_"))
}

// PDFFileName возвращает имя файла: существующее, если оно уже .pdf,
// иначе производное от заголовка.
func PDFFileName(current, title string) string {
	if strings.HasSuffix(current, ".pdf") {
		return current
	}
	if title == "" {
		title = "document"
	}
	return Slug(title) + ".pdf"
}

// EncodeDataURL кодирует содержимое в data URL.
func EncodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// PDFDataURL кодирует PDF в data URL.
func PDFDataURL(data []byte) string {
	return EncodeDataURL(pdfMIME, data)
}

// ErrMalformedDataURL возвращается при разборе некорректного data URL.
var ErrMalformedDataURL = errors.New("document: malformed data URL")

// DecodeDataURL разбирает base64 data URL и возвращает содержимое и MIME-тип.
func DecodeDataURL(s string) (data []byte, mime string, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, "", ErrMalformedDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrMalformedDataURL
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, "", ErrMalformedDataURL
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", errors.Join(ErrMalformedDataURL, err)
	}
	return data, mime, nil
}
