// Package utils provides utility functions for the scheme recommendation engine.
package utils

import (
	"regexp"
	"strconv"
	"strings"
)

// Amount text shows up in the catalog in every format a government PDF
// ever used: "₹6,000 per year", "1.5 lakh", "2L", "5 lpa", "10k/month",
// "2 crore". ParseAnnualAmount normalizes all of them to annual rupees.
var (
	currencyPattern = regexp.MustCompile(`(?i)(₹|rs\.?|inr|\$)`)
	crorePattern    = regexp.MustCompile(`([\d.]+)\s*(?:cr|crore)`)
	lakhPattern     = regexp.MustCompile(`([\d.]+)\s*(?:l\b|lakh|lac|lpa)`)
	thousandPattern = regexp.MustCompile(`([\d.]+)\s*(?:k\b|thousand|hazar)`)
	monthlyPattern  = regexp.MustCompile(`([\d,]+)\s*(?:pm\b|per\s*month|monthly|/month)`)
	numberPattern   = regexp.MustCompile(`([\d,]+)`)
)

// ParseAnnualAmount extracts an annual rupee amount from free text.
// Returns false when no amount can be parsed.
func ParseAnnualAmount(text string) (int, bool) {
	if text == "" {
		return 0, false
	}

	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = strings.TrimSpace(currencyPattern.ReplaceAllString(normalized, ""))
	if normalized == "" {
		return 0, false
	}

	// Direct number, possibly with commas
	plain := strings.ReplaceAll(normalized, ",", "")
	if value, err := strconv.Atoi(plain); err == nil {
		return value, true
	}

	if match := crorePattern.FindStringSubmatch(normalized); match != nil {
		if value, err := strconv.ParseFloat(match[1], 64); err == nil {
			return int(value * 1e7), true
		}
	}

	if match := lakhPattern.FindStringSubmatch(normalized); match != nil {
		if value, err := strconv.ParseFloat(match[1], 64); err == nil {
			return int(value * 1e5), true
		}
	}

	if match := thousandPattern.FindStringSubmatch(normalized); match != nil {
		if value, err := strconv.ParseFloat(match[1], 64); err == nil {
			return int(value * 1e3), true
		}
	}

	// Monthly amounts are annualized
	if match := monthlyPattern.FindStringSubmatch(normalized); match != nil {
		monthly := strings.ReplaceAll(match[1], ",", "")
		if value, err := strconv.Atoi(monthly); err == nil {
			return value * 12, true
		}
	}

	// First number anywhere in the text
	if match := numberPattern.FindStringSubmatch(normalized); match != nil {
		grouped := strings.ReplaceAll(match[1], ",", "")
		if value, err := strconv.Atoi(grouped); err == nil {
			return value, true
		}
	}

	return 0, false
}

// FormatINR renders an amount in short Indian notation for display and
// email digests: 1.5 Cr, 2.4 L, 50K, 900.
func FormatINR(amount int) string {
	switch {
	case amount >= 1e7:
		return trimZero(float64(amount)/1e7) + " Cr"
	case amount >= 1e5:
		return trimZero(float64(amount)/1e5) + " L"
	case amount >= 1e3:
		return trimZero(float64(amount)/1e3) + "K"
	default:
		return strconv.Itoa(amount)
	}
}

func trimZero(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}
