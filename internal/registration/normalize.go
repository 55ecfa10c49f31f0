package registration

import (
	"net/url"
	"strings"
	"time"
)

// Form is the flat submitted payload. Absent keys and empty values are
// treated the same way except where noted.
type Form map[string]string

// FormFromValues keeps the first value of every key.
func FormFromValues(values url.Values) Form {
	form := make(Form, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			form[key] = vals[0]
		}
	}
	return form
}

func (f Form) has(key string) bool {
	_, ok := f[key]
	return ok
}

// clean returns the sanitized value of key.
func (f Form) clean(key string) string {
	return Sanitize(f[key])
}

// flag returns the checkbox value of key.
func (f Form) flag(key string) bool {
	return CoerceBoolean(f[key])
}

const markupChars = `<>&"'`

// Sanitize trims surrounding whitespace and removes the characters
// < > & " ' so that the value is inert in HTML and PDF output.
func Sanitize(value string) string {
	stripped := strings.Map(func(r rune) rune {
		if strings.ContainsRune(markupChars, r) {
			return -1
		}
		return r
	}, value)
	return strings.TrimSpace(stripped)
}

// CoerceBoolean interprets a checkbox value: "on" and "true" are true,
// anything else, including the empty string, is false.
func CoerceBoolean(value string) bool {
	return value == "on" || value == "true"
}

// ComputeAge returns the number of whole years between birth and now,
// comparing calendar dates: the count only increases on the birthday
// itself. A 29 February birthday is reached on 1 March in common years.
func ComputeAge(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// ParseBirthDate accepts an ISO calendar date, optionally followed by a
// time component.
func ParseBirthDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if d, err := time.Parse(time.DateOnly, raw); err == nil {
		return d, true
	}
	if d, err := time.Parse(time.RFC3339, raw); err == nil {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// Sex is the child's sex as recorded on the sanitary sheet.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

func ParseSex(raw string) Sex {
	switch strings.ToLower(Sanitize(raw)) {
	case "masculin", "m", "male", "garçon", "garcon":
		return SexMale
	case "féminin", "feminin", "f", "female", "fille":
		return SexFemale
	default:
		return ""
	}
}

// Contact is an emergency contact.
type Contact struct {
	Surname   string `json:"nom"`
	GivenName string `json:"prenom"`
	Phone     string `json:"telPortable"`
	Sex       string `json:"sexe,omitempty"`
	Relation  string `json:"lien,omitempty"`
}

// Guardian is a legal guardian listed on the sanitary sheet.
type Guardian struct {
	Surname     string `json:"nom"`
	GivenName   string `json:"prenom"`
	Address     string `json:"adresse,omitempty"`
	HomePhone   string `json:"telDomicile,omitempty"`
	WorkPhone   string `json:"telTravail,omitempty"`
	MobilePhone string `json:"telPortable,omitempty"`
}

// Medical groups the health flags of the sanitary sheet.
type Medical struct {
	OnTreatment          bool   `json:"traitementMedical"`
	FoodAllergy          bool   `json:"allergiesAlimentaires"`
	MedicationAllergy    bool   `json:"allergiesMedicament"`
	OtherAllergy         bool   `json:"allergiesAutres"`
	AllergyDetails       string `json:"allergiesDetails,omitempty"`
	HealthIssue          bool   `json:"problemeSante"`
	HealthIssueDetails   string `json:"problemeSanteDetails,omitempty"`
	ParentRecommendation string `json:"recommandationsParents,omitempty"`
	Physician            string `json:"medecinTraitant,omitempty"`
}

// Fields is the normalized field set produced from one submission.
type Fields struct {
	Surname     string
	GivenName   string
	BirthDate   time.Time
	HasBirth    bool
	BirthRaw    string
	Age         int
	CategoryRaw string
	Sex         Sex

	Address     string
	City        string
	PostalCode  string
	Email       string
	HomePhone   string
	MobilePhone string

	Emergency          Contact
	SecondaryEmergency *Contact

	OtherClub     bool
	OtherClubName string

	ParentName    string
	ParentAddress string
	ParentEmail   string
	Guardian1     Guardian
	Guardian2     *Guardian

	ImageRights            bool
	DiffusionRights        bool
	TransportAuthorization bool
	ImageConsentAck        string
	RegistrationConsentAck string

	ImageRightsSignature string
	SanitarySignature    string

	RegistrationPlace string
	SectionRemarks    []string

	VaccineOverrides map[string]string
	OtherVaccines    string
	Medical          Medical
}

// vaccineFields maps a vaccine name to its form key.
var vaccineFields = []struct {
	name string
	key  string
}{
	{"diphtérie", "vaccinDiphtérie"},
	{"coqueluche", "vaccinCoqueluche"},
	{"tétanos", "vaccinTétanos"},
	{"haemophilus", "vaccinHaemophilus"},
	{"poliomyélite", "vaccinPoliomyélite"},
	{"rougeole", "vaccinRougeole"},
	{"pneumocoque", "vaccinPneumocoque"},
	{"bcg", "vaccinBcg"},
}

// Normalize turns a raw payload into a Fields set. It has no side effects;
// now is the submission time used for the age computation.
func Normalize(form Form, now time.Time) Fields {
	f := Fields{
		Surname:     form.clean("nom"),
		GivenName:   form.clean("prenom"),
		BirthRaw:    strings.TrimSpace(form["dateNaissance"]),
		CategoryRaw: string(ParseCategory(form["categorie"])),
		Sex:         ParseSex(form["sexe"]),

		City:        form.clean("ville"),
		PostalCode:  form.clean("codePostal"),
		HomePhone:   form.clean("telDomicile"),
		MobilePhone: form.clean("telPortable"),

		Emergency: Contact{
			Surname:   form.clean("contactUrgenceNom"),
			GivenName: form.clean("contactUrgencePrenom"),
			Phone:     form.clean("contactUrgenceTel"),
			Sex:       form.clean("contactUrgenceSexe"),
			Relation:  form.clean("contactUrgenceLien"),
		},

		OtherClub:     form.flag("autreClub"),
		OtherClubName: form.clean("nomAutreClub"),

		ParentAddress: form.clean("parentAdresse"),
		ParentEmail:   form.clean("parentEmail"),
		Guardian1:     guardian(form, "responsable1"),

		ImageRights:            form.flag("droitImage"),
		TransportAuthorization: form.flag("autorisationTransport"),
		ImageConsentAck:        strings.TrimSpace(form["luEtApprouveDroitImageText"]),
		RegistrationConsentAck: strings.TrimSpace(form["luEtApprouveInscriptionText"]),

		ImageRightsSignature: strings.TrimSpace(form["signatureDroitImage"]),
		SanitarySignature:    strings.TrimSpace(form["signatureSanitaire"]),

		RegistrationPlace: form.clean("lieuInscription"),

		OtherVaccines: form.clean("vaccinsAutres"),
		Medical: Medical{
			OnTreatment:          form.flag("traitementMedical"),
			FoodAllergy:          form.flag("allergiesAlimentaires"),
			MedicationAllergy:    form.flag("allergiesMedicament"),
			OtherAllergy:         form.flag("allergiesAutres"),
			AllergyDetails:       form.clean("allergiesDetails"),
			HealthIssue:          form.flag("problemeSante"),
			HealthIssueDetails:   form.clean("problemeSanteDetails"),
			ParentRecommendation: form.clean("recommandationsParents"),
			Physician:            form.clean("medecinTraitant"),
		},
	}

	if f.BirthRaw != "" {
		f.BirthDate, f.HasBirth = ParseBirthDate(f.BirthRaw)
		if f.HasBirth {
			f.Age = ComputeAge(f.BirthDate, now)
		}
	}

	f.Address = form.clean("adresse")
	if f.Address == "" {
		f.Address = strings.TrimSpace(f.City + " " + f.PostalCode)
	}

	f.Email = form.clean("email")
	if f.Email == "" {
		f.Email = f.ParentEmail
	}

	f.ParentName = form.clean("parentNomPrenom")
	if f.ParentName == "" {
		f.ParentName = strings.TrimSpace(f.Guardian1.Surname + " " + f.Guardian1.GivenName)
	}

	// an explicit value wins, otherwise diffusion follows image consent
	if form.has("droitDiffusion") {
		f.DiffusionRights = form.flag("droitDiffusion")
	} else {
		f.DiffusionRights = f.ImageRights
	}

	if form.clean("contactUrgenceSecondaireNom") != "" {
		f.SecondaryEmergency = &Contact{
			Surname:   form.clean("contactUrgenceSecondaireNom"),
			GivenName: form.clean("contactUrgenceSecondairePrenom"),
			Phone:     form.clean("contactUrgenceSecondaireTel"),
			Sex:       form.clean("contactUrgenceSecondaireSexe"),
			Relation:  form.clean("contactUrgenceSecondaireLien"),
		}
	}

	if g := guardian(form, "responsable2"); g.Surname != "" {
		f.Guardian2 = &g
	}

	for i := 1; i <= 5; i++ {
		if remark := form.clean("remarqueSection" + string(rune('0'+i))); remark != "" {
			f.SectionRemarks = append(f.SectionRemarks, remark)
		}
	}

	for _, v := range vaccineFields {
		if value := form.clean(v.key); value != "" {
			if f.VaccineOverrides == nil {
				f.VaccineOverrides = make(map[string]string)
			}
			f.VaccineOverrides[v.name] = value
		}
	}

	return f
}

func guardian(form Form, prefix string) Guardian {
	return Guardian{
		Surname:     form.clean(prefix + "Nom"),
		GivenName:   form.clean(prefix + "Prenom"),
		Address:     form.clean(prefix + "Adresse"),
		HomePhone:   form.clean(prefix + "TelDomicile"),
		WorkPhone:   form.clean(prefix + "TelTravail"),
		MobilePhone: form.clean(prefix + "TelPortable"),
	}
}
