package resume

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// skillVocabulary is the closed set of technology terms the parser
// recognizes. Matching is case-insensitive substring matching, so
// multi-word entries must appear contiguously in the text.
var skillVocabulary = []string{
	"python", "java", "javascript", "typescript", "c++", "c#", "go",
	"sql", "nosql", "mysql", "postgresql", "mongodb", "redis",
	"aws", "azure", "gcp",
	"docker", "kubernetes", "terraform", "linux", "git",
	"html", "css", "react", "angular", "node",
	"fastapi", "django", "flask",
	"pandas", "numpy", "spark", "hadoop",
	"machine learning", "deep learning", "nlp",
	"data analysis", "data engineering",
	"scala", "rust", "php", "ruby",
}

// sectionHeaders maps canonical section names to the header phrases that
// open them. A line is a header only if it equals a phrase exactly
// (after trimming, lower-casing and dropping a trailing colon).
var sectionHeaders = map[string][]string{
	"experience": {"experience", "work experience", "employment", "professional experience"},
	"education":  {"education", "academic", "academics", "qualifications"},
	"skills":     {"skills", "technical skills", "core competencies"},
	"projects":   {"projects", "notable projects"},
}

var headerLookup = buildHeaderLookup()

func buildHeaderLookup() map[string]string {
	lookup := make(map[string]string)
	for section, phrases := range sectionHeaders {
		for _, phrase := range phrases {
			lookup[phrase] = section
		}
	}
	return lookup
}

var (
	emailPattern           = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern           = regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`)
	yearPattern            = regexp.MustCompile(`\d{4}`)
	experienceYearsPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:\+\s*)?(?:years?|yrs?)`)
)

// ParsedResume is the structured extraction result for one resume.
// Optional string fields are empty when nothing was found;
// ExperienceYears is nil when no duration was mentioned.
type ParsedResume struct {
	RawText          string
	CandidateName    string
	ContactEmail     string
	ContactPhone     string
	Skills           []string
	ExperienceYears  *float64
	EducationEntries []EducationEntry
	Sections         map[string]string
	SectionOrder     []string
}

// EducationEntry is one blank-line-separated block of the education
// section. Years holds the distinct 4-digit years of the block, sorted
// and hyphen-joined ("2017-2020"); empty if the block has none.
type EducationEntry struct {
	Summary string `json:"summary"`
	Years   string `json:"years,omitempty"`
}

// Parse extracts structured data from unstructured resume text. It is
// deterministic and never fails: empty or unrecognizable input yields a
// ParsedResume with empty fields.
func Parse(text string) *ParsedResume {
	normalized := strings.ReplaceAll(text, "\r", "")
	sections, order := splitIntoSections(normalized)

	parsed := &ParsedResume{
		RawText:          normalized,
		CandidateName:    inferName(normalized),
		ContactEmail:     findFirst(emailPattern, normalized),
		ContactPhone:     findFirst(phonePattern, normalized),
		Skills:           matchSkills(normalized),
		ExperienceYears:  estimateExperienceYears(normalized),
		EducationEntries: extractEducation(sections["education"]),
		Sections:         sections,
		SectionOrder:     order,
	}

	// Synthesize sections the resume lacked so downstream display has
	// something to show. Synthesized sections are not part of the order
	// list, which records only sections seen in the document.
	if _, ok := sections["skills"]; !ok && len(parsed.Skills) > 0 {
		parsed.Sections["skills"] = strings.Join(parsed.Skills, ", ")
	}
	if _, ok := sections["experience"]; !ok && parsed.ExperienceYears != nil {
		parsed.Sections["experience"] = fmt.Sprintf("Estimated %g years of experience", *parsed.ExperienceYears)
	}

	return parsed
}

// splitIntoSections walks the text line by line, routing content into the
// section opened by the most recent header line. Content before any
// header lands in "summary". Header lines themselves are not stored and
// blank lines are skipped entirely.
func splitIntoSections(text string) (map[string]string, []string) {
	buffers := map[string][]string{}
	order := []string{}
	current := "summary"

	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		normalized := strings.ToLower(stripped)
		if section, ok := matchHeader(normalized); ok {
			current = section
			if _, seen := buffers[current]; !seen {
				buffers[current] = nil
				order = append(order, current)
			}
			continue
		}
		if _, seen := buffers[current]; !seen {
			order = append(order, current)
		}
		buffers[current] = append(buffers[current], stripped)
	}

	sections := make(map[string]string, len(buffers))
	for name, lines := range buffers {
		sections[name] = strings.Join(lines, "\n")
	}
	return sections, order
}

func matchHeader(normalized string) (string, bool) {
	if section, ok := headerLookup[normalized]; ok {
		return section, true
	}
	if section, ok := headerLookup[strings.TrimRight(normalized, ":")]; ok {
		return section, true
	}
	return "", false
}

func findFirst(pattern *regexp.Regexp, text string) string {
	return pattern.FindString(text)
}

// inferName returns the first short non-contact line as a name proxy.
func inferName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		lowered := strings.ToLower(stripped)
		if loc := emailPattern.FindStringIndex(lowered); loc != nil && loc[0] == 0 {
			continue
		}
		if strings.Contains(lowered, "resume") || strings.Contains(lowered, "curriculum vitae") {
			continue
		}
		if len(strings.Fields(stripped)) <= 5 {
			return stripped
		}
	}
	return ""
}

func matchSkills(text string) []string {
	lowered := strings.ToLower(text)
	found := []string{}
	for _, skill := range skillVocabulary {
		if strings.Contains(lowered, skill) {
			found = append(found, skill)
		}
	}
	sort.Strings(found)
	return found
}

// estimateExperienceYears returns the largest "N years" / "N+ yrs"
// duration mentioned anywhere in the text, or nil if there is none.
func estimateExperienceYears(text string) *float64 {
	matches := experienceYearsPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	var best float64
	seen := false
	for _, m := range matches {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if !seen || value > best {
			best = value
			seen = true
		}
	}
	if !seen {
		return nil
	}
	return &best
}

func extractEducation(educationSection string) []EducationEntry {
	results := []EducationEntry{}
	if educationSection == "" {
		return results
	}
	for _, block := range strings.Split(educationSection, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		entry := EducationEntry{Summary: block}
		if years := yearPattern.FindAllString(block, -1); len(years) > 0 {
			entry.Years = joinYears(years)
		}
		results = append(results, entry)
	}
	return results
}

func joinYears(years []string) string {
	seen := make(map[string]struct{}, len(years))
	distinct := []string{}
	for _, year := range years {
		if _, ok := seen[year]; ok {
			continue
		}
		seen[year] = struct{}{}
		distinct = append(distinct, year)
	}
	sort.Strings(distinct)
	return strings.Join(distinct, "-")
}
