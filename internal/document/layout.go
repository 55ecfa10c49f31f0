package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/Merco74/ScoutPlateform/internal/registration"
)

// Kind identifies one of the two documents produced per registration.
type Kind string

const (
	KindAuthorization Kind = "authorization"
	KindSanitary      Kind = "sanitary"
)

const (
	imageRightsText = "J'autorise les Scouts et Guides de Cluses à réaliser des photos et vidéos de mon enfant " +
		"dans le cadre des activités. J'autorise leur diffusion interne, sur le site web et les réseaux sociaux, " +
		"à des fins de communication. Cette autorisation est donnée à titre gracieux, pour une durée illimitée, " +
		"dans le respect du RGPD."
	transportText = "J'autorise mon enfant à être transporté dans des véhicules conduits par des responsables bénévoles."
)

// Layout is the content of one document, independent of the PDF backend.
// Two layouts built from the same record differ only in their footer.
type Layout struct {
	Kind      Kind
	Title     string
	Sections  []Section
	Signature Signature
	Footer    []string
}

type Section struct {
	Heading string
	Lines   []Line
}

// Line is either a short label/value row or a wrapped paragraph.
type Line struct {
	Text      string
	Paragraph bool
}

type Signature struct {
	Label   string
	DataURI string
}

func row(label, value string) Line {
	return Line{Text: label + " : " + value}
}

func paragraph(text string) Line {
	return Line{Text: text, Paragraph: true}
}

func yesNo(v bool) string {
	if v {
		return "Oui"
	}
	return "Non"
}

func yesNoDetail(v bool, detail string) string {
	if v && detail != "" {
		return "Oui - " + detail
	}
	return yesNo(v)
}

func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func footer(rec *registration.Record, issuedAt time.Time) []string {
	return []string{
		"Fait à : " + rec.RegistrationPlace,
		"Le : " + formatDate(issuedAt) + " à " + issuedAt.Format("15:04"),
	}
}

// AuthorizationLayout describes the image rights and transport authorization.
func AuthorizationLayout(rec *registration.Record, category registration.CategoryRule, issuedAt time.Time) Layout {
	return Layout{
		Kind:  KindAuthorization,
		Title: "AUTORISATION DE DROIT À L'IMAGE ET DE TRANSPORT",
		Sections: []Section{
			{
				Heading: "IDENTITÉ DE L'ENFANT",
				Lines: []Line{
					row("Nom", rec.Surname),
					row("Prénom", rec.GivenName),
					row("Né(e) le", formatDate(rec.BirthDate)),
					row("Unité", category.DisplayName),
				},
			},
			{
				Heading: "REPRÉSENTANT LÉGAL",
				Lines: []Line{
					row("Nom et prénom", rec.ParentName),
					row("Adresse", firstNonEmpty(rec.ParentAddress, rec.Address)),
					row("Téléphone", firstNonEmpty(rec.Guardian1.MobilePhone, rec.MobilePhone, rec.HomePhone)),
					row("Email", firstNonEmpty(rec.ParentEmail, rec.Email)),
				},
			},
			{
				Heading: "DROIT À L'IMAGE",
				Lines: []Line{
					paragraph(imageRightsText),
					row("Droit à l'image", yesNo(rec.ImageRights)),
					row("Droit de diffusion", yesNo(rec.DiffusionRights)),
					row("Mention", rec.ImageConsentAck),
				},
			},
			{
				Heading: "TRANSPORT",
				Lines: []Line{
					paragraph(transportText),
					row("Autorisation de transport", yesNo(rec.TransportAuthorization)),
				},
			},
		},
		Signature: Signature{
			Label:   "Signature du représentant légal (" + formatDate(rec.ImageRightsSignedAt) + ")",
			DataURI: rec.ImageRightsSignature,
		},
		Footer: footer(rec, issuedAt),
	}
}

// SanitaryLayout describes the medical sheet.
func SanitaryLayout(rec *registration.Record, category registration.CategoryRule, issuedAt time.Time) Layout {
	child := []Line{
		{Text: fmt.Sprintf("Enfant : %s %s - %d ans", rec.GivenName, rec.Surname, rec.Age)},
		row("Né(e) le", formatDate(rec.BirthDate)),
		row("Unité", category.DisplayName),
		row("Téléphone", firstNonEmpty(rec.MobilePhone, rec.HomePhone)),
	}
	if rec.Sex != "" {
		child = append(child, row("Sexe", sexLabel(rec.Sex)))
	}

	vaccines := []Line{row("Vaccins obligatoires", yesNoUpToDate(rec.MandatoryVaccinesValid))}
	for _, v := range rec.Vaccines.Entries() {
		vaccines = append(vaccines, row(v.Name, v.Status))
	}
	if rec.Vaccines.Other != "" {
		vaccines = append(vaccines, row("Autres", rec.Vaccines.Other))
	}

	m := rec.Medical
	allergies := []Line{
		row("Traitement", yesNo(m.OnTreatment)),
		row("Allergies", yesNoDetail(m.FoodAllergy || m.MedicationAllergy || m.OtherAllergy, m.AllergyDetails)),
	}
	if kinds := allergyKinds(m); kinds != "" {
		allergies = append(allergies, row("Types", kinds))
	}

	health := []Line{row("Problème", yesNoDetail(m.HealthIssue, m.HealthIssueDetails))}
	if m.ParentRecommendation != "" {
		health = append(health, row("Recommandations", m.ParentRecommendation))
	}
	if m.Physician != "" {
		health = append(health, row("Médecin traitant", m.Physician))
	}

	contacts := []Line{
		row("Responsable", rec.ParentName),
		row("Téléphone", firstNonEmpty(rec.Guardian1.MobilePhone, rec.Guardian1.HomePhone, rec.MobilePhone)),
	}
	if g := rec.Guardian2; g != nil {
		contacts = append(contacts,
			row("Second responsable", strings.TrimSpace(g.Surname+" "+g.GivenName)),
			row("Téléphone", firstNonEmpty(g.MobilePhone, g.HomePhone, g.WorkPhone)),
		)
	}
	contacts = append(contacts, row("Contact d'urgence", contactLabel(rec.Emergency)))
	if c := rec.SecondaryEmergency; c != nil {
		contacts = append(contacts, row("Contact secondaire", contactLabel(*c)))
	}

	return Layout{
		Kind:  KindSanitary,
		Title: "FICHE SANITAIRE",
		Sections: []Section{
			{Heading: "ENFANT", Lines: child},
			{Heading: "VACCINATIONS", Lines: vaccines},
			{Heading: "ALLERGIES ET TRAITEMENT", Lines: allergies},
			{Heading: "SANTÉ", Lines: health},
			{Heading: "RESPONSABLES ET CONTACTS", Lines: contacts},
		},
		Signature: Signature{
			Label:   "Signature du représentant légal (" + formatDate(rec.SanitarySignedAt) + ")",
			DataURI: rec.SanitarySignature,
		},
		Footer: footer(rec, issuedAt),
	}
}

func yesNoUpToDate(v bool) string {
	if v {
		return "à jour"
	}
	return "non à jour"
}

func sexLabel(s registration.Sex) string {
	switch s {
	case registration.SexMale:
		return "Masculin"
	case registration.SexFemale:
		return "Féminin"
	default:
		return string(s)
	}
}

func allergyKinds(m registration.Medical) string {
	var kinds []string
	if m.FoodAllergy {
		kinds = append(kinds, "alimentaires")
	}
	if m.MedicationAllergy {
		kinds = append(kinds, "médicamenteuses")
	}
	if m.OtherAllergy {
		kinds = append(kinds, "autres")
	}
	return strings.Join(kinds, ", ")
}

func contactLabel(c registration.Contact) string {
	label := strings.TrimSpace(c.GivenName + " " + c.Surname)
	if c.Relation != "" {
		label += " (" + c.Relation + ")"
	}
	if c.Phone != "" {
		label += " - " + c.Phone
	}
	return label
}
