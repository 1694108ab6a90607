// Package engine implements the eligibility and relevance matching pipeline:
// rule evaluation, eligibility checking, relevance scoring, origin
// classification and recommendation orchestration. Everything in this
// package is pure: no I/O, no shared mutable state.
package engine

import (
	"fmt"
	"strings"

	"scheme-recommendation-engine/internal/models"
)

// EvaluateRule evaluates a single eligibility rule against a profile.
// Catalog data problems (unknown field, unknown operator, operator applied
// to the wrong field kind) and missing profile values fail the rule closed
// instead of returning an error, so one bad catalog record degrades that
// scheme rather than crashing the whole recommendation pass.
func EvaluateRule(profile *models.Profile, rule models.Rule) models.RuleResult {
	switch rule.Operator {
	case models.RuleOperatorRange:
		return evaluateRange(profile, rule)
	case models.RuleOperatorEquals:
		return evaluateEquals(profile, rule)
	case models.RuleOperatorIn:
		return evaluateIn(profile, rule)
	case models.RuleOperatorFlag:
		return evaluateFlag(profile, rule)
	default:
		return failed(rule, fmt.Sprintf("unknown rule operator %q", rule.Operator))
	}
}

func evaluateRange(profile *models.Profile, rule models.Rule) models.RuleResult {
	value, ok := numericField(profile, rule.Field)
	if !ok {
		return failed(rule, fmt.Sprintf("%s is not declared on the profile", rule.Field))
	}

	// Bounds are inclusive; either side may be open.
	if rule.Min != nil && value < *rule.Min {
		return failed(rule, fmt.Sprintf("%s %d is below the required minimum %d", rule.Field, value, *rule.Min))
	}
	if rule.Max != nil && value > *rule.Max {
		return failed(rule, fmt.Sprintf("%s %d is above the allowed maximum %d", rule.Field, value, *rule.Max))
	}

	return passed(rule, fmt.Sprintf("%s %d is within the required range", rule.Field, value))
}

func evaluateEquals(profile *models.Profile, rule models.Rule) models.RuleResult {
	value, ok := stringField(profile, rule.Field)
	if !ok {
		return failed(rule, fmt.Sprintf("%s is not a comparable profile field", rule.Field))
	}
	if value == "" {
		return failed(rule, fmt.Sprintf("%s is not declared on the profile", rule.Field))
	}

	required := normalizeOperand(rule.Field, rule.Value)
	if value == required {
		return passed(rule, fmt.Sprintf("%s matches %q", rule.Field, rule.Value))
	}
	return failed(rule, fmt.Sprintf("%s %q does not match required %q", rule.Field, value, rule.Value))
}

func evaluateIn(profile *models.Profile, rule models.Rule) models.RuleResult {
	value, ok := stringField(profile, rule.Field)
	if !ok {
		return failed(rule, fmt.Sprintf("%s is not a comparable profile field", rule.Field))
	}
	if value == "" {
		return failed(rule, fmt.Sprintf("%s is not declared on the profile", rule.Field))
	}

	for _, candidate := range rule.Values {
		if value == normalizeOperand(rule.Field, candidate) {
			return passed(rule, fmt.Sprintf("%s %q is in the accepted set", rule.Field, value))
		}
	}
	return failed(rule, fmt.Sprintf("%s %q is not in the accepted set %v", rule.Field, value, rule.Values))
}

func evaluateFlag(profile *models.Profile, rule models.Rule) models.RuleResult {
	value, ok := flagField(profile, rule.Field)
	if !ok {
		return failed(rule, fmt.Sprintf("%s is not a known profile flag", rule.Field))
	}
	if value {
		return passed(rule, fmt.Sprintf("%s is set", rule.Field))
	}
	return failed(rule, fmt.Sprintf("%s is not set on the profile", rule.Field))
}

// numericField resolves a numeric profile field. The second return is
// false both for unknown fields and for declared-but-absent values, which
// the caller treats identically (rule fails closed).
func numericField(p *models.Profile, field models.RuleField) (int, bool) {
	switch field {
	case models.RuleFieldAge:
		return p.Age, true
	case models.RuleFieldAnnualIncome:
		if p.AnnualIncome == nil {
			return 0, false
		}
		return *p.AnnualIncome, true
	default:
		return 0, false
	}
}

// stringField resolves a string profile field, lowercased for
// case-insensitive comparison. State values go through ResolveState so
// "UP" and "Uttar Pradesh" compare equal.
func stringField(p *models.Profile, field models.RuleField) (string, bool) {
	switch field {
	case models.RuleFieldOccupation:
		return strings.ToLower(string(p.Occupation)), true
	case models.RuleFieldCategory:
		return strings.ToLower(string(p.Category)), true
	case models.RuleFieldState:
		return models.ResolveState(p.State), true
	case models.RuleFieldGender:
		return strings.ToLower(string(p.Gender)), true
	case models.RuleFieldEducation:
		return strings.ToLower(string(p.Education)), true
	case models.RuleFieldMaritalStatus:
		return strings.ToLower(string(p.MaritalStatus)), true
	default:
		return "", false
	}
}

func flagField(p *models.Profile, field models.RuleField) (bool, bool) {
	switch field {
	case models.RuleFieldIsBPL:
		return p.IsBPL, true
	case models.RuleFieldIsFarmer:
		return p.IsFarmer, true
	case models.RuleFieldIsStudent:
		return p.IsStudent, true
	case models.RuleFieldDisability:
		return p.Disability, true
	case models.RuleFieldIsMinority:
		return p.IsMinority, true
	default:
		return false, false
	}
}

// normalizeOperand lowercases a rule operand, resolving state aliases for
// state rules so catalog records may use abbreviations too.
func normalizeOperand(field models.RuleField, value string) string {
	if field == models.RuleFieldState {
		return models.ResolveState(value)
	}
	return strings.ToLower(strings.TrimSpace(value))
}

func passed(rule models.Rule, reason string) models.RuleResult {
	return models.RuleResult{Rule: rule, Passed: true, Reason: reason}
}

func failed(rule models.Rule, reason string) models.RuleResult {
	return models.RuleResult{Rule: rule, Passed: false, Reason: reason}
}
