package resumes

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeSkill folds a skill name to the dictionary key: NFKC, lower case,
// single spaces. Returns "" for blank input.
func NormalizeSkill(name string) string {
	name = norm.NFKC.String(name)
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	// Casers hold state, so each call gets its own.
	return cases.Lower(language.Und).String(name)
}

// normalizeSkills keeps the first occurrence of each normalized name.
func normalizeSkills(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, raw := range names {
		name := NormalizeSkill(raw)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
