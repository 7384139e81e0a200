package pdf

import "github.com/edumanage/edumanage-core/internal/domain/document"

type labels struct {
	titles      map[document.Type]string
	institution string
	certifies   string
	enrolled    string
	enrolledIn  string
	doneOn      string
	student     string
	group       string
	subject     string
	average     string
	overall     string
	absenceDate string
	reason      string
	approved    string
	beneficiary string
	course      string
	amount      string
	invoice     string
	date        string
	signedBy    string
	signedOn    string
	code        string
	createdBy   string
}

var french = labels{
	titles: map[document.Type]string{
		document.TypeCertificate:    "Attestation de Scolarité",
		document.TypeReportCard:     "Bulletin de Notes",
		document.TypeAbsenceExcuse:  "Justificatif d'Absence",
		document.TypePaymentReceipt: "Reçu de Paiement",
	},
	institution: "Établissement",
	certifies:   "Certifie que",
	enrolled:    "est régulièrement inscrit(e)",
	enrolledIn:  "est régulièrement inscrit(e) au groupe/classe",
	doneOn:      "Fait le",
	student:     "Élève",
	group:       "Classe",
	subject:     "Matière",
	average:     "Moyenne",
	overall:     "Moyenne Générale",
	absenceDate: "Date d'absence",
	reason:      "Motif",
	approved:    "Vu et approuvé par la direction.",
	beneficiary: "Bénéficiaire",
	course:      "Cours/Service",
	amount:      "Montant",
	invoice:     "Facture N°",
	date:        "Date",
	signedBy:    "Signé par",
	signedOn:    "Le",
	code:        "Code",
	createdBy:   "Créé par",
}

var english = labels{
	titles: map[document.Type]string{
		document.TypeCertificate:    "Certificate of Enrollment",
		document.TypeReportCard:     "Report Card",
		document.TypeAbsenceExcuse:  "Absence Excuse",
		document.TypePaymentReceipt: "Payment Receipt",
	},
	institution: "Institution",
	certifies:   "This certifies that",
	enrolled:    "is duly enrolled",
	enrolledIn:  "is duly enrolled in group/class",
	doneOn:      "Issued on",
	student:     "Student",
	group:       "Class",
	subject:     "Subject",
	average:     "Average",
	overall:     "Overall Average",
	absenceDate: "Absence date",
	reason:      "Reason",
	approved:    "Reviewed and approved by the administration.",
	beneficiary: "Beneficiary",
	course:      "Course/Service",
	amount:      "Amount",
	invoice:     "Invoice No.",
	date:        "Date",
	signedBy:    "Signed by",
	signedOn:    "On",
	code:        "Code",
	createdBy:   "Created by",
}

// labelsFor picks the label set. Arabic falls back to French: the core
// fonts cannot shape Arabic script.
func labelsFor(language string) labels {
	if language == "en" {
		return english
	}
	return french
}

// DefaultTitle returns the localized template title of t.
func DefaultTitle(t document.Type, language string) string {
	return labelsFor(language).titles[t]
}
