package registration

// ConsentAcknowledgment is the literal the submitter must reproduce for
// each consent section.
const ConsentAcknowledgment = "Lu et approuvé"

// Validated is a field set that passed every eligibility check. Only
// Validate produces it, so the builder never sees unchecked input.
type Validated struct {
	Fields   Fields
	Category Category
	Rule     CategoryRule
}

// Validate runs the eligibility checks in order and returns the first
// failure as a *ValidationError.
func Validate(f Fields, table CategoryTable) (*Validated, error) {
	var missing []string
	if f.Surname == "" {
		missing = append(missing, "nom")
	}
	if f.GivenName == "" {
		missing = append(missing, "prenom")
	}
	if f.BirthRaw == "" {
		missing = append(missing, "dateNaissance")
	}
	if f.CategoryRaw == "" {
		missing = append(missing, "categorie")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Kind: ErrMissingRequiredField, Fields: missing}
	}
	if !f.HasBirth {
		return nil, &ValidationError{Kind: ErrInvalidBirthDate, Fields: []string{"dateNaissance"}}
	}

	category := Category(f.CategoryRaw)
	rule, ok := table.Lookup(category)
	if !ok {
		return nil, &ValidationError{Kind: ErrInvalidCategory, Category: category}
	}

	if !rule.Allows(f.Age) {
		return nil, &ValidationError{Kind: ErrAgeOutOfRange, Category: category, Age: f.Age}
	}

	var unacknowledged []string
	if f.ImageConsentAck != ConsentAcknowledgment {
		unacknowledged = append(unacknowledged, "luEtApprouveDroitImageText")
	}
	if f.RegistrationConsentAck != ConsentAcknowledgment {
		unacknowledged = append(unacknowledged, "luEtApprouveInscriptionText")
	}
	if len(unacknowledged) > 0 {
		return nil, &ValidationError{Kind: ErrConsentNotAcknowledged, Fields: unacknowledged}
	}

	var unsigned []string
	if f.ImageRightsSignature == "" {
		unsigned = append(unsigned, "signatureDroitImage")
	}
	if f.SanitarySignature == "" {
		unsigned = append(unsigned, "signatureSanitaire")
	}
	if len(unsigned) > 0 {
		return nil, &ValidationError{Kind: ErrMissingSignature, Fields: unsigned}
	}

	return &Validated{Fields: f, Category: category, Rule: rule}, nil
}
