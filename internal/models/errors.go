// Package models defines the data structures for the scheme recommendation engine.
package models

import (
	"errors"
	"strings"
)

// Common errors
var (
	ErrNilProfile        = errors.New("profile must not be nil")
	ErrNilScheme         = errors.New("scheme must not be nil")
	ErrInvalidOccupation = errors.New("invalid occupation")
	ErrInvalidCategory   = errors.New("invalid social category")
	ErrInvalidAge        = errors.New("age must be between 0 and 120")
	ErrInvalidIncome     = errors.New("annual income cannot be negative")
	ErrEmptySchemeID     = errors.New("scheme id cannot be empty")
	ErrEmptySchemeName   = errors.New("scheme name cannot be empty")
	ErrSchemeNotFound    = errors.New("scheme not found")
	ErrDuplicateSchemeID = errors.New("duplicate scheme id")
)

// NormalizeOccupation converts various occupation spellings to standard values.
func NormalizeOccupation(occupation string) Occupation {
	normalized := strings.ToLower(strings.TrimSpace(occupation))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	occupationMap := map[string]Occupation{
		"salaried":       OccupationSalaried,
		"employed":       OccupationSalaried,
		"service":        OccupationSalaried,
		"job":            OccupationSalaried,
		"private_job":    OccupationSalaried,
		"government_job": OccupationSalaried,
		"self_employed":  OccupationSelfEmployed,
		"selfemployed":   OccupationSelfEmployed,
		"business":       OccupationSelfEmployed,
		"business_owner": OccupationSelfEmployed,
		"entrepreneur":   OccupationSelfEmployed,
		"freelancer":     OccupationSelfEmployed,
		"shopkeeper":     OccupationSelfEmployed,
		"farmer":         OccupationFarmer,
		"kisan":          OccupationFarmer,
		"agriculture":    OccupationFarmer,
		"farming":        OccupationFarmer,
		"student":        OccupationStudent,
		"studying":       OccupationStudent,
		"unemployed":     OccupationUnemployed,
		"jobless":        OccupationUnemployed,
		"not_employed":   OccupationUnemployed,
		"retired":        OccupationRetired,
		"pensioner":      OccupationRetired,
		"homemaker":      OccupationHomemaker,
		"housewife":      OccupationHomemaker,
		"daily_wage":     OccupationDailyWage,
		"labourer":       OccupationDailyWage,
		"laborer":        OccupationDailyWage,
		"worker":         OccupationDailyWage,
	}

	if mapped, ok := occupationMap[normalized]; ok {
		return mapped
	}

	// Return as-is if no mapping found (will fail validation)
	return Occupation(normalized)
}

// NormalizeCategory converts various category spellings to standard values.
func NormalizeCategory(category string) SocialCategory {
	normalized := strings.ToLower(strings.TrimSpace(category))

	categoryMap := map[string]SocialCategory{
		"general":         CategoryGeneral,
		"gen":             CategoryGeneral,
		"ur":              CategoryGeneral,
		"unreserved":      CategoryGeneral,
		"obc":             CategoryOBC,
		"other backward":  CategoryOBC,
		"backward":        CategoryOBC,
		"sc":              CategorySC,
		"scheduled caste": CategorySC,
		"st":              CategoryST,
		"scheduled tribe": CategoryST,
	}

	if mapped, ok := categoryMap[normalized]; ok {
		return mapped
	}

	return SocialCategory(normalized)
}

// NormalizeGender converts various gender spellings to standard values.
func NormalizeGender(gender string) Gender {
	normalized := strings.ToLower(strings.TrimSpace(gender))

	switch normalized {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	case "other", "transgender", "third gender":
		return GenderOther
	}

	return Gender(normalized)
}

// ValidateProfile validates an intake profile before matching. These are
// boundary errors: catalog data-quality problems inside the matching pass
// degrade to failed rules instead (see the engine package).
func ValidateProfile(p *Profile) error {
	if p == nil {
		return ErrNilProfile
	}

	if p.Age < 0 || p.Age > 120 {
		return ErrInvalidAge
	}

	if p.AnnualIncome != nil && *p.AnnualIncome < 0 {
		return ErrInvalidIncome
	}

	if p.Occupation != "" && !p.Occupation.IsValid() {
		return ErrInvalidOccupation
	}

	if p.Category != "" && !p.Category.IsValid() {
		return ErrInvalidCategory
	}

	return nil
}

// ValidateSchemeCreate validates scheme creation data.
func ValidateSchemeCreate(s *SchemeCreate) error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrEmptySchemeID
	}

	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptySchemeName
	}

	return nil
}
