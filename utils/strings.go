package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleLabel turns a machine identifier into a human-readable label.
// Example: "invoices-extra" -> "Invoices Extra", "crm_leads" -> "Crm Leads".
func TitleLabel(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(s)
	return cases.Title(language.English).String(s)
}

// UpperCamelCase converts snake_case or kebab-case to UpperCamelCase.
func UpperCamelCase(s string) string {
	return strings.ReplaceAll(TitleLabel(s), " ", "")
}

// LowerCamelCase converts snake_case or kebab-case to lowerCamelCase.
// Example: "created_by_id" -> "createdById"
func LowerCamelCase(s string) string {
	upper := UpperCamelCase(s)
	if len(upper) == 0 {
		return upper
	}
	return strings.ToLower(upper[:1]) + upper[1:]
}
