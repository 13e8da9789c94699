package services

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// issue columns whose display names cannot be derived mechanically.
var specialIssueNames = map[string]string{
	"ABORTION_REPRODUCTIVE_RIGHTS":             "Abortion & Reproductive Rights",
	"ENVIRONMENT_REGULATIONS_RENEWABLE_ENERGY": "Environment Regulations & Renewable Energy",
	"SOCIAL_SECURITY_MEDICARE_EXPANSION":       "Social Security & Medicare Expansion",
	"LGBTQ_RIGHTS":                             "LGBTQ Rights",
	"DEI":                                      "DEI",
	"ISRAEL":                                   "Israel",
}

var issueTitleCaser = cases.Title(language.AmericanEnglish)

// IssueDisplayName converts a warehouse column name to the human-readable
// issue name stored in the database.
func IssueDisplayName(column string) string {
	if name, ok := specialIssueNames[column]; ok {
		return name
	}
	spaced := strings.ReplaceAll(column, "_", " ")
	return issueTitleCaser.String(strings.ToLower(spaced))
}

// TransformIssueValue maps a raw rating to the standardized position: 1 for
// support, -1 for opposition, 0 for neutral, unknown, or missing.
func TransformIssueValue(value any) int {
	switch v := value.(type) {
	case nil:
		return 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "pro", "1", "yes", "support", "for":
			return 1
		case "anti", "-1", "no", "oppose", "against":
			return -1
		default:
			return 0
		}
	case int:
		return signOf(float64(v))
	case int32:
		return signOf(float64(v))
	case int64:
		return signOf(float64(v))
	case float32:
		return signOf(float64(v))
	case float64:
		return signOf(v)
	default:
		return 0
	}
}

func signOf(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
