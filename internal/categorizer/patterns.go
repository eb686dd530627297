package categorizer

import (
	"regexp"
	"sort"
	"strings"
)

// Project identifier patterns, most specific first. Quarter and fiscal
// codes are canonicalised to upper case; other matches keep their
// original form.
var projectPatterns = []struct {
	re        *regexp.Regexp
	uppercase bool
}{
	{regexp.MustCompile(`(?i)\bQ[1-4][-_ ]?(?:20)?\d{2}\b`), true},
	{regexp.MustCompile(`(?i)\bFY[-_ ]?(?:20)?\d{2}\b`), true},
	{regexp.MustCompile(`\b[A-Z]{2,5}-\d{1,4}\b`), true},
	{regexp.MustCompile(`(?i)\b(?:campaign|initiative|phase|version)[-_ ][A-Za-z0-9.]{1,16}\b`), false},
	{regexp.MustCompile(`(?i)\bv\d+(?:\.\d+){0,2}\b`), false},
	{regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*[-_ ](?:20)?\d{2}\b`), false},
}

// ExtractProjects returns up to max project identifiers found in the
// text. Matches are deduplicated case-insensitively and ordered longest
// first, longer matches being assumed more specific.
func ExtractProjects(text string, max int) []string {
	seen := make(map[string]struct{})
	var projects []string

	for _, p := range projectPatterns {
		for _, m := range p.re.FindAllString(text, -1) {
			m = strings.TrimSpace(m)
			if p.uppercase {
				m = strings.ToUpper(m)
			}
			key := strings.ToLower(m)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			projects = append(projects, m)
		}
	}

	sort.SliceStable(projects, func(i, j int) bool {
		if len(projects[i]) != len(projects[j]) {
			return len(projects[i]) > len(projects[j])
		}
		return projects[i] < projects[j]
	})

	if len(projects) > max {
		projects = projects[:max]
	}
	return projects
}

// departmentPatterns map department regexes to canonical team names.
// Tested in priority order before the generic team/squad patterns.
var departmentPatterns = []struct {
	re   *regexp.Regexp
	name string
}{
	{regexp.MustCompile(`(?i)\bcreative\s+team\b`), "Creative Team"},
	{regexp.MustCompile(`(?i)\bcontent\s+team\b`), "Content Team"},
	{regexp.MustCompile(`(?i)\bsocial\s+media\s+team\b`), "Social Media Team"},
	{regexp.MustCompile(`(?i)\banalytics\s+team\b`), "Analytics Team"},
	{regexp.MustCompile(`(?i)\bproduct\s+marketing\b`), "Product Marketing"},
	{regexp.MustCompile(`(?i)\bgrowth\s+team\b`), "Growth Team"},
}

var (
	genericTeamPattern  = regexp.MustCompile(`(?i)\bteam\s+([A-Za-z][A-Za-z0-9]*)\b`)
	genericSquadPattern = regexp.MustCompile(`(?i)\bsquad\s+(\d+)\b`)
)

// ExtractTeam returns the first matching team or department tag, or the
// empty string when none matches.
func ExtractTeam(text string) string {
	for _, d := range departmentPatterns {
		if d.re.MatchString(text) {
			return d.name
		}
	}
	if m := genericTeamPattern.FindStringSubmatch(text); m != nil {
		return "Team " + capitalise(m[1])
	}
	if m := genericSquadPattern.FindStringSubmatch(text); m != nil {
		return "Squad " + m[1]
	}
	return ""
}

func capitalise(s string) string {
	s = strings.ToLower(s)
	return strings.ToUpper(s[:1]) + s[1:]
}
