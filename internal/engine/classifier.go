package engine

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"scheme-recommendation-engine/internal/models"
)

// KeywordConfig holds the keyword sets the origin classifier scans when a
// scheme does not declare its level. Injected at construction so tests
// and deployments can swap the sets without touching shared state.
type KeywordConfig struct {
	Central []string
	State   []string
}

// DefaultKeywords returns the stock keyword sets. Central markers cover
// union-government naming conventions; state markers cover state-scheme
// naming plus the state names themselves.
func DefaultKeywords() KeywordConfig {
	central := []string{
		"national",
		"union",
		"ministry of",
		"pradhan mantri",
		"pm-",
		"pm ",
		"bharat",
		"india",
		"central sector",
		"centrally sponsored",
		"jan dhan",
		"atal",
		"ayushman",
	}

	state := []string{
		"mukhyamantri",
		"chief minister",
		"rajya",
		"state government",
		"state scheme",
	}
	state = append(state, models.StateNames()...)

	return KeywordConfig{Central: central, State: state}
}

// classifyStrategy inspects a scheme and either yields an origin label or
// defers to the next strategy in the chain.
type classifyStrategy func(scheme *models.Scheme) (models.SchemeOrigin, bool)

// Classifier labels schemes as central or state using an explicit ordered
// strategy chain: declared level first, then the keyword heuristic, then
// the central default for ambiguous or unmatched text.
type Classifier struct {
	strategies []classifyStrategy
}

// NewClassifier creates a classifier with the given keyword configuration.
func NewClassifier(keywords KeywordConfig) *Classifier {
	return &Classifier{
		strategies: []classifyStrategy{
			classifyByDeclaredLevel,
			classifyByKeywords(keywords),
		},
	}
}

// Classify returns the origin label for a scheme. The first strategy that
// yields a label wins; when none does, the result is central. Ambiguous
// text (both keyword sets match) also lands on central, which over-counts
// central schemes by design.
func (c *Classifier) Classify(scheme *models.Scheme) models.SchemeOrigin {
	for _, strategy := range c.strategies {
		if origin, ok := strategy(scheme); ok {
			return origin
		}
	}
	return models.OriginCentral
}

// classifyByDeclaredLevel trusts catalog metadata when present. A
// declared level always beats keyword content.
func classifyByDeclaredLevel(scheme *models.Scheme) (models.SchemeOrigin, bool) {
	switch scheme.Level {
	case models.SchemeLevelCentral, models.SchemeLevelNational:
		return models.OriginCentral, true
	case models.SchemeLevelState:
		return models.OriginState, true
	default:
		return "", false
	}
}

// classifyByKeywords scans the combined name, description, ministry and
// level text. It only yields a label when exactly one keyword set
// matches; both-or-neither defers to the default.
func classifyByKeywords(keywords KeywordConfig) classifyStrategy {
	return func(scheme *models.Scheme) (models.SchemeOrigin, bool) {
		combined := strings.ToLower(strings.Join([]string{
			scheme.Name,
			scheme.Description,
			scheme.Ministry,
			string(scheme.Level),
		}, " "))

		centralHit := containsAny(combined, keywords.Central)
		stateHit := containsAny(combined, keywords.State)

		switch {
		case centralHit && !stateHit:
			return models.OriginCentral, true
		case stateHit && !centralHit:
			return models.OriginState, true
		default:
			return "", false
		}
	}
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if needle != "" && containsWord(text, needle) {
			return true
		}
	}
	return false
}

// containsWord reports whether needle occurs in text at a word boundary.
// Plain substring matching lets short state names fire inside longer words
// ("goa" in "goal", "assam" in "assamese"); matches flanked by letters or
// digits do not count. Needle ends that are themselves non-word characters
// (the trailing space in "pm ", the hyphen in "pm-") carry no constraint.
func containsWord(text, needle string) bool {
	for start := 0; start <= len(text)-len(needle); {
		idx := strings.Index(text[start:], needle)
		if idx < 0 {
			return false
		}
		idx += start
		if wordBounded(text, idx, idx+len(needle)) {
			return true
		}
		start = idx + 1
	}
	return false
}

func wordBounded(text string, begin, end int) bool {
	first, _ := utf8.DecodeRuneInString(text[begin:end])
	if isWordRune(first) && begin > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:begin])
		if isWordRune(prev) {
			return false
		}
	}

	last, _ := utf8.DecodeLastRuneInString(text[begin:end])
	if isWordRune(last) && end < len(text) {
		next, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(next) {
			return false
		}
	}

	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
