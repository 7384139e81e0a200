package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumanage/edumanage-core/internal/domain/document"
	"github.com/edumanage/edumanage-core/internal/domain/settings"
	"github.com/edumanage/edumanage-core/internal/domain/shared"
)

func request(t document.Type, tpl *document.Template) Request {
	return Request{
		Header: HeaderFrom(settings.Defaults()),
		Record: document.Record{
			ID:        "1700000000000-abc123",
			Title:     DefaultTitle(t, "fr"),
			Type:      t,
			OwnerName: "Amine Tazi",
			CreatedAt: 1700000000000,
			Template:  tpl,
		},
	}
}

func TestRender_EveryTemplate(t *testing.T) {
	r := NewRenderer(DefaultConfig())
	avg := 15.4

	tests := []struct {
		name string
		typ  document.Type
		tpl  *document.Template
		want string
	}{
		{"certificate", document.TypeCertificate, &document.Template{GroupName: "2BAC-SM-1"}, "2BAC-SM-1"},
		{"report card", document.TypeReportCard, &document.Template{
			Subjects:   []document.SubjectLine{{Subject: "Physique", Average: 14.8}},
			OverallAvg: &avg,
		}, "14.80/20"},
		{"absence excuse", document.TypeAbsenceExcuse, &document.Template{AbsenceDate: "2025-03-10", Reason: "Maladie"}, "Maladie"},
		{"payment receipt", document.TypePaymentReceipt, &document.Template{Amount: 1500, Course: "Soutien", InvoiceNumber: "F-001"}, "F-001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Render(context.Background(), request(tt.typ, tt.tpl))
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
			assert.Contains(t, string(out), tt.want)
			assert.NotContains(t, string(out), SignatureMarker)
		})
	}
}

func TestRender_Deterministic(t *testing.T) {
	r := NewRenderer(DefaultConfig())
	req := request(document.TypeCertificate, nil)

	a, err := r.Render(context.Background(), req)
	require.NoError(t, err)
	b, err := r.Render(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRender_SignatureBlock(t *testing.T) {
	r := NewRenderer(DefaultConfig())
	req := request(document.TypePaymentReceipt, &document.Template{Amount: 300})
	signedAt := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	code := VerificationCode(req.Record.ID, "Direction", signedAt)
	req.Signature = &Signature{Signer: "Direction", SignedAt: signedAt, Institution: "Lycée", Code: code}

	out, err := r.Render(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, bytes.Count(out, []byte(SignatureMarker)))
	assert.Contains(t, string(out), code)
}

func TestRender_UnsupportedType(t *testing.T) {
	r := NewRenderer(DefaultConfig())

	_, err := r.Render(context.Background(), request(document.TypeOther, nil))
	assert.ErrorIs(t, err, shared.ErrUnsupportedTemplate)
}

func TestVerificationCode(t *testing.T) {
	at := time.UnixMilli(1700000000000)

	code := VerificationCode("doc-1", "Direction", at)
	assert.Regexp(t, `^[0-9A-F]{10}$`, code)
	assert.Equal(t, code, VerificationCode("doc-1", "Direction", at))
	assert.NotEqual(t, code, VerificationCode("doc-2", "Direction", at))
	assert.NotEqual(t, code, VerificationCode("doc-1", "Direction", at.Add(time.Millisecond)))
}
