// Package models defines the data structures for the scheme recommendation engine.
package models

import (
	"time"
)

// SchemeLevel is the declared administrative level of a scheme. An empty
// value means the catalog record does not declare one and the origin
// classifier falls back to its keyword heuristic.
type SchemeLevel string

const (
	SchemeLevelCentral     SchemeLevel = "central"
	SchemeLevelNational    SchemeLevel = "national"
	SchemeLevelState       SchemeLevel = "state"
	SchemeLevelUnspecified SchemeLevel = ""
)

// RuleField names a profile field an eligibility rule predicates over.
type RuleField string

const (
	RuleFieldAge           RuleField = "age"
	RuleFieldAnnualIncome  RuleField = "annual_income"
	RuleFieldOccupation    RuleField = "occupation"
	RuleFieldCategory      RuleField = "category"
	RuleFieldState         RuleField = "state"
	RuleFieldGender        RuleField = "gender"
	RuleFieldEducation     RuleField = "education"
	RuleFieldMaritalStatus RuleField = "marital_status"
	RuleFieldIsBPL         RuleField = "is_bpl"
	RuleFieldIsFarmer      RuleField = "is_farmer"
	RuleFieldIsStudent     RuleField = "is_student"
	RuleFieldDisability    RuleField = "disability"
	RuleFieldIsMinority    RuleField = "is_minority"
)

// RuleOperator is the comparison kind of an eligibility rule.
type RuleOperator string

const (
	// RuleOperatorRange compares a numeric field against inclusive bounds.
	RuleOperatorRange RuleOperator = "range"
	// RuleOperatorEquals compares a string field case-insensitively.
	RuleOperatorEquals RuleOperator = "equals"
	// RuleOperatorIn checks case-insensitive membership in a value set.
	RuleOperatorIn RuleOperator = "in"
	// RuleOperatorFlag checks that a boolean profile flag is set.
	RuleOperatorFlag RuleOperator = "flag"
)

// Rule is a single eligibility predicate over one profile field.
// Min/Max apply to range rules (either bound may be open), Value to
// equals rules and Values to set-membership rules. Flag rules carry no
// operand; they pass when the named profile flag is true.
type Rule struct {
	Field    RuleField    `json:"field"`
	Operator RuleOperator `json:"operator"`
	Value    string       `json:"value,omitempty"`
	Values   []string     `json:"values,omitempty"`
	Min      *int         `json:"min,omitempty"`
	Max      *int         `json:"max,omitempty"`
}

// Scheme represents a government welfare program record with eligibility
// rules and descriptive metadata. Read-only during matching.
type Scheme struct {
	ID               string      `json:"id" db:"id"`
	Name             string      `json:"name" db:"name"`
	Description      string      `json:"description" db:"description"`
	Ministry         string      `json:"ministry" db:"ministry"`
	Level            SchemeLevel `json:"level,omitempty" db:"level"`
	Category         string      `json:"category" db:"category"`
	Benefits         string      `json:"benefits" db:"benefits"`
	Documents        []string    `json:"documents" db:"documents"`
	HowToApply       string      `json:"how_to_apply" db:"how_to_apply"`
	ApplyLink        string      `json:"apply_link" db:"apply_link"`
	Popularity       *float64    `json:"popularity,omitempty" db:"popularity"`
	EligibilityRules []Rule      `json:"eligibility_rules" db:"eligibility_rules"`
	IsActive         bool        `json:"is_active" db:"is_active"`
	CreatedAt        time.Time   `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at,omitempty" db:"updated_at"`
}

// SchemeCreate represents data needed to insert a new scheme record.
type SchemeCreate struct {
	ID               string      `json:"id" validate:"required,min=1,max=64"`
	Name             string      `json:"name" validate:"required,min=1,max=300"`
	Description      string      `json:"description"`
	Ministry         string      `json:"ministry"`
	Level            SchemeLevel `json:"level,omitempty"`
	Category         string      `json:"category"`
	Benefits         string      `json:"benefits"`
	Documents        []string    `json:"documents"`
	HowToApply       string      `json:"how_to_apply"`
	ApplyLink        string      `json:"apply_link"`
	Popularity       *float64    `json:"popularity,omitempty"`
	EligibilityRules []Rule      `json:"eligibility_rules"`
}

// SchemeSummary is a lightweight view of a scheme for list responses.
type SchemeSummary struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Ministry string      `json:"ministry"`
	Level    SchemeLevel `json:"level,omitempty"`
	Category string      `json:"category"`
	Benefits string      `json:"benefits"`
}

// ToSummary converts a Scheme to SchemeSummary.
func (s *Scheme) ToSummary() SchemeSummary {
	return SchemeSummary{
		ID:       s.ID,
		Name:     s.Name,
		Ministry: s.Ministry,
		Level:    s.Level,
		Category: s.Category,
		Benefits: s.Benefits,
	}
}
