package registration

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record is the persisted registration of one child. The category column
// partitions records instead of one table per unit.
type Record struct {
	bun.BaseModel `bun:"table:registrations,alias:r"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Category  Category  `bun:"category,notnull" json:"categorie"`
	Surname   string    `bun:"surname,notnull" json:"nom"`
	GivenName string    `bun:"given_name,notnull" json:"prenom"`
	BirthDate time.Time `bun:"birth_date,type:date,notnull" json:"dateNaissance"`
	Sex       Sex       `bun:"sex" json:"sexe,omitempty"`
	Age       int       `bun:"age,notnull" json:"age"`

	Address     string `bun:"address" json:"adresse"`
	City        string `bun:"city" json:"ville"`
	PostalCode  string `bun:"postal_code" json:"codePostal"`
	Email       string `bun:"email" json:"email"`
	HomePhone   string `bun:"home_phone" json:"telDomicile"`
	MobilePhone string `bun:"mobile_phone" json:"telPortable"`

	Emergency          Contact  `bun:"emergency_contact,type:jsonb" json:"contactUrgence"`
	SecondaryEmergency *Contact `bun:"secondary_emergency_contact,type:jsonb" json:"contactUrgenceSecondaire,omitempty"`

	OtherClub     bool   `bun:"other_club,notnull" json:"autreClub"`
	OtherClubName string `bun:"other_club_name" json:"nomAutreClub,omitempty"`

	ParentName    string    `bun:"parent_name" json:"parentNomPrenom"`
	ParentAddress string    `bun:"parent_address" json:"parentAdresse"`
	ParentEmail   string    `bun:"parent_email" json:"parentEmail"`
	Guardian1     Guardian  `bun:"guardian1,type:jsonb" json:"responsable1"`
	Guardian2     *Guardian `bun:"guardian2,type:jsonb" json:"responsable2,omitempty"`

	ImageRights            bool   `bun:"image_rights,notnull" json:"droitImage"`
	DiffusionRights        bool   `bun:"diffusion_rights,notnull" json:"droitDiffusion"`
	TransportAuthorization bool   `bun:"transport_authorization,notnull" json:"autorisationTransport"`
	ImageConsentAck        string `bun:"image_consent_ack,notnull" json:"luEtApprouveDroitImageText"`
	RegistrationConsentAck string `bun:"registration_consent_ack,notnull" json:"luEtApprouveInscriptionText"`

	ImageRightsSignature   string    `bun:"image_rights_signature,notnull" json:"-"`
	ImageRightsSignedAt    time.Time `bun:"image_rights_signed_at,notnull" json:"dateSignatureDroitImage"`
	SanitarySignature      string    `bun:"sanitary_signature,notnull" json:"-"`
	SanitarySignedAt       time.Time `bun:"sanitary_signed_at,notnull" json:"dateSignatureSanitaire"`
	RegistrationPlace      string    `bun:"registration_place,notnull" json:"lieuInscription"`
	RegisteredAt           time.Time `bun:"registered_at,notnull" json:"dateInscription"`
	SectionRemarks         []string  `bun:"section_remarks,array" json:"remarques,omitempty"`
	MandatoryVaccinesValid bool      `bun:"mandatory_vaccines,notnull" json:"vaccinsObligatoires"`
	Vaccines               Vaccines  `bun:"vaccines,type:jsonb" json:"vaccinsRecommandes"`
	Medical                Medical   `bun:"medical,type:jsonb" json:"sante"`

	VaccinationProof string   `bun:"vaccination_proof" json:"vaccinScan,omitempty"`
	MedicationScans  []string `bun:"medication_scans,array" json:"medicationScan,omitempty"`
	OtherDocuments   []string `bun:"other_documents,array" json:"otherDocuments,omitempty"`

	AuthorizationPdfURL string `bun:"authorization_pdf_url" json:"pdfUrl,omitempty"`
	SanitaryPdfURL      string `bun:"sanitary_pdf_url" json:"sanitaryPdfUrl,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// Vaccines is the recommended immunization list of the sanitary sheet.
type Vaccines struct {
	Diphtheria   string `json:"diphtérie"`
	Pertussis    string `json:"coqueluche"`
	Tetanus      string `json:"tétanos"`
	Haemophilus  string `json:"haemophilus"`
	Polio        string `json:"poliomyélite"`
	Measles      string `json:"rougeole"`
	Pneumococcus string `json:"pneumocoque"`
	BCG          string `json:"bcg"`
	Other        string `json:"autres"`
}

// Entries lists the named vaccines in the order they are printed.
func (v Vaccines) Entries() []VaccineEntry {
	return []VaccineEntry{
		{Name: "Diphtérie", Status: v.Diphtheria},
		{Name: "Coqueluche", Status: v.Pertussis},
		{Name: "Tétanos", Status: v.Tetanus},
		{Name: "Haemophilus", Status: v.Haemophilus},
		{Name: "Poliomyélite", Status: v.Polio},
		{Name: "Rougeole", Status: v.Measles},
		{Name: "Pneumocoque", Status: v.Pneumococcus},
		{Name: "BCG", Status: v.BCG},
	}
}

type VaccineEntry struct {
	Name   string
	Status string
}

// FileRefs are the stored attachment references of one submission.
type FileRefs struct {
	VaccinationProof string
	MedicationScans  []string
	OtherDocuments   []string
}

// Documents are the locations of the two rendered PDFs.
type Documents struct {
	AuthorizationURL string
	SanitaryURL      string
}
