package registration

import "time"

const (
	DefaultRegistrationPlace = "Cluses"
	DefaultVaccineStatus     = "OK"

	// MaxAttachments caps the medication and other document lists.
	MaxAttachments = 5
)

// Build assembles the record of a validated submission. It performs no
// checks of its own; the id is assigned by the caller.
func Build(v *Validated, files FileRefs, now time.Time) *Record {
	f := v.Fields

	place := f.RegistrationPlace
	if place == "" {
		place = DefaultRegistrationPlace
	}

	return &Record{
		Category:  v.Category,
		Surname:   f.Surname,
		GivenName: f.GivenName,
		BirthDate: f.BirthDate,
		Sex:       f.Sex,
		Age:       f.Age,

		Address:     f.Address,
		City:        f.City,
		PostalCode:  f.PostalCode,
		Email:       f.Email,
		HomePhone:   f.HomePhone,
		MobilePhone: f.MobilePhone,

		Emergency:          f.Emergency,
		SecondaryEmergency: f.SecondaryEmergency,

		OtherClub:     f.OtherClub,
		OtherClubName: f.OtherClubName,

		ParentName:    f.ParentName,
		ParentAddress: f.ParentAddress,
		ParentEmail:   f.ParentEmail,
		Guardian1:     f.Guardian1,
		Guardian2:     f.Guardian2,

		ImageRights:            f.ImageRights,
		DiffusionRights:        f.DiffusionRights,
		TransportAuthorization: f.TransportAuthorization,
		ImageConsentAck:        f.ImageConsentAck,
		RegistrationConsentAck: f.RegistrationConsentAck,

		ImageRightsSignature:   f.ImageRightsSignature,
		ImageRightsSignedAt:    now,
		SanitarySignature:      f.SanitarySignature,
		SanitarySignedAt:       now,
		RegistrationPlace:      place,
		RegisteredAt:           now,
		SectionRemarks:         f.SectionRemarks,
		MandatoryVaccinesValid: true,
		Vaccines:               buildVaccines(f.VaccineOverrides, f.OtherVaccines),
		Medical:                f.Medical,

		VaccinationProof: files.VaccinationProof,
		MedicationScans:  capRefs(files.MedicationScans),
		OtherDocuments:   capRefs(files.OtherDocuments),
	}
}

func buildVaccines(overrides map[string]string, other string) Vaccines {
	status := func(name string) string {
		if s, ok := overrides[name]; ok && s != "" {
			return s
		}
		return DefaultVaccineStatus
	}
	return Vaccines{
		Diphtheria:   status("diphtérie"),
		Pertussis:    status("coqueluche"),
		Tetanus:      status("tétanos"),
		Haemophilus:  status("haemophilus"),
		Polio:        status("poliomyélite"),
		Measles:      status("rougeole"),
		Pneumococcus: status("pneumocoque"),
		BCG:          status("bcg"),
		Other:        other,
	}
}

func capRefs(refs []string) []string {
	if len(refs) > MaxAttachments {
		return refs[:MaxAttachments]
	}
	return refs
}
