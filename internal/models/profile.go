// Package models defines the data structures for the scheme recommendation engine.
package models

import (
	"strings"
)

// Occupation represents the declared occupation of a citizen.
type Occupation string

const (
	OccupationSalaried     Occupation = "salaried"
	OccupationSelfEmployed Occupation = "self_employed"
	OccupationFarmer       Occupation = "farmer"
	OccupationStudent      Occupation = "student"
	OccupationUnemployed   Occupation = "unemployed"
	OccupationRetired      Occupation = "retired"
	OccupationHomemaker    Occupation = "homemaker"
	OccupationDailyWage    Occupation = "daily_wage"
)

// ValidOccupations returns all valid occupation values.
func ValidOccupations() []Occupation {
	return []Occupation{
		OccupationSalaried,
		OccupationSelfEmployed,
		OccupationFarmer,
		OccupationStudent,
		OccupationUnemployed,
		OccupationRetired,
		OccupationHomemaker,
		OccupationDailyWage,
	}
}

// IsValid checks if the occupation is valid.
func (o Occupation) IsValid() bool {
	for _, valid := range ValidOccupations() {
		if o == valid {
			return true
		}
	}
	return false
}

// SocialCategory represents the reservation category of a citizen.
type SocialCategory string

const (
	CategoryGeneral SocialCategory = "general"
	CategoryOBC     SocialCategory = "obc"
	CategorySC      SocialCategory = "sc"
	CategoryST      SocialCategory = "st"
)

// ValidSocialCategories returns all valid social category values.
func ValidSocialCategories() []SocialCategory {
	return []SocialCategory{CategoryGeneral, CategoryOBC, CategorySC, CategoryST}
}

// IsValid checks if the social category is valid.
func (c SocialCategory) IsValid() bool {
	for _, valid := range ValidSocialCategories() {
		if c == valid {
			return true
		}
	}
	return false
}

// Gender represents the declared gender of a citizen.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Education represents the highest completed education level.
type Education string

const (
	EducationNone         Education = "none"
	EducationPrimary      Education = "primary"
	EducationSecondary    Education = "secondary"
	EducationGraduate     Education = "graduate"
	EducationPostGraduate Education = "post_graduate"
)

// MaritalStatus represents the marital status of a citizen.
type MaritalStatus string

const (
	MaritalStatusSingle   MaritalStatus = "single"
	MaritalStatusMarried  MaritalStatus = "married"
	MaritalStatusWidowed  MaritalStatus = "widowed"
	MaritalStatusDivorced MaritalStatus = "divorced"
)

// Profile represents the self-declared attributes of a citizen used for
// matching. It is created once per intake submission and never mutated.
// AnnualIncome is optional: intake forms allow it to be left blank and
// income rules fail closed when it is absent.
type Profile struct {
	Age           int            `json:"age"`
	AnnualIncome  *int           `json:"annual_income,omitempty"`
	Occupation    Occupation     `json:"occupation"`
	Category      SocialCategory `json:"category"`
	State         string         `json:"state"`
	Gender        Gender         `json:"gender"`
	Education     Education      `json:"education,omitempty"`
	MaritalStatus MaritalStatus  `json:"marital_status,omitempty"`
	IsBPL         bool           `json:"is_bpl"`
	IsFarmer      bool           `json:"is_farmer"`
	IsStudent     bool           `json:"is_student"`
	Disability    bool           `json:"disability"`
	IsMinority    bool           `json:"is_minority"`
	Language      string         `json:"language,omitempty"`
}

// stateAliases maps common abbreviations and spellings to canonical
// lowercase state names.
var stateAliases = map[string]string{
	"ap":          "andhra pradesh",
	"ar":          "arunachal pradesh",
	"as":          "assam",
	"br":          "bihar",
	"cg":          "chhattisgarh",
	"chattisgarh": "chhattisgarh",
	"dl":          "delhi",
	"new delhi":   "delhi",
	"ga":          "goa",
	"gj":          "gujarat",
	"hr":          "haryana",
	"hp":          "himachal pradesh",
	"jh":          "jharkhand",
	"jk":          "jammu and kashmir",
	"j&k":         "jammu and kashmir",
	"ka":          "karnataka",
	"bengaluru":   "karnataka",
	"kl":          "kerala",
	"mp":          "madhya pradesh",
	"mh":          "maharashtra",
	"mn":          "manipur",
	"ml":          "meghalaya",
	"mz":          "mizoram",
	"nl":          "nagaland",
	"od":          "odisha",
	"orissa":      "odisha",
	"pb":          "punjab",
	"rj":          "rajasthan",
	"sk":          "sikkim",
	"tn":          "tamil nadu",
	"tamilnadu":   "tamil nadu",
	"ts":          "telangana",
	"tg":          "telangana",
	"tr":          "tripura",
	"up":          "uttar pradesh",
	"uk":          "uttarakhand",
	"uttaranchal": "uttarakhand",
	"wb":          "west bengal",
	"bengal":      "west bengal",
}

// stateNames is the canonical lowercase list of states and major union
// territories, used both for alias resolution and as classifier markers.
var stateNames = []string{
	"andhra pradesh", "arunachal pradesh", "assam", "bihar", "chhattisgarh",
	"delhi", "goa", "gujarat", "haryana", "himachal pradesh",
	"jammu and kashmir", "jharkhand", "karnataka", "kerala",
	"madhya pradesh", "maharashtra", "manipur", "meghalaya", "mizoram",
	"nagaland", "odisha", "punjab", "rajasthan", "sikkim", "tamil nadu",
	"telangana", "tripura", "uttar pradesh", "uttarakhand", "west bengal",
}

// StateNames returns the canonical lowercase state names.
func StateNames() []string {
	names := make([]string, len(stateNames))
	copy(names, stateNames)
	return names
}

// ResolveState normalizes a user-typed state name to its canonical
// lowercase form. Unknown input is returned lowercased and trimmed so
// that rule matching stays case-insensitive either way.
func ResolveState(input string) string {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if canonical, ok := stateAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// HasIncome reports whether the profile declared an annual income.
func (p *Profile) HasIncome() bool {
	return p.AnnualIncome != nil
}

// ProfileSummary is a lightweight view of a profile for logging.
type ProfileSummary struct {
	Age        int            `json:"age"`
	Occupation Occupation     `json:"occupation"`
	Category   SocialCategory `json:"category"`
	State      string         `json:"state"`
}

// ToSummary converts a Profile to ProfileSummary.
func (p *Profile) ToSummary() ProfileSummary {
	return ProfileSummary{
		Age:        p.Age,
		Occupation: p.Occupation,
		Category:   p.Category,
		State:      p.State,
	}
}
