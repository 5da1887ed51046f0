package resume

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `Jane Doe
Email: jane.doe@example.com
Phone: +1 555 0100

Skills
Python, FastAPI, AWS, Docker

Experience
Senior Engineer at ExampleCorp (2018-2024)
Worked on deploying FastAPI microservices on AWS with Docker and Kubernetes.
Over 6 years of experience leading cloud-native teams.

Education
B.S. Computer Science, Example University, 2017`

func TestParseExtractsSkillsAndContact(t *testing.T) {
	parsed := Parse(sampleResume)

	assert.Equal(t, "Jane Doe", parsed.CandidateName)
	assert.Contains(t, parsed.Skills, "python")
	assert.Contains(t, parsed.Skills, "fastapi")
	assert.Contains(t, parsed.Skills, "docker")
	assert.Equal(t, "jane.doe@example.com", parsed.ContactEmail)
	assert.True(t, strings.HasSuffix(parsed.ContactPhone, "0100"), "phone %q should end with 0100", parsed.ContactPhone)
	require.NotNil(t, parsed.ExperienceYears)
	assert.Equal(t, 6.0, *parsed.ExperienceYears)
	require.NotEmpty(t, parsed.EducationEntries)
	assert.Equal(t, "2017", parsed.EducationEntries[0].Years)
}

func TestParseMinimalScenario(t *testing.T) {
	parsed := Parse("Jane Doe\nEmail: jane@x.com\nSkills\nPython, AWS\nExperience\n5 years of experience.")

	assert.Equal(t, "Jane Doe", parsed.CandidateName)
	assert.Contains(t, parsed.ContactEmail, "jane@x.com")
	assert.Contains(t, parsed.Skills, "python")
	assert.Contains(t, parsed.Skills, "aws")
	require.NotNil(t, parsed.ExperienceYears)
	assert.Equal(t, 5.0, *parsed.ExperienceYears)
}

func TestParseEmptyInput(t *testing.T) {
	parsed := Parse("")

	assert.Empty(t, parsed.CandidateName)
	assert.Empty(t, parsed.ContactEmail)
	assert.Empty(t, parsed.ContactPhone)
	assert.Empty(t, parsed.Skills)
	assert.Nil(t, parsed.ExperienceYears)
	assert.Empty(t, parsed.EducationEntries)
	assert.Empty(t, parsed.Sections)
	assert.Empty(t, parsed.SectionOrder)
}

func TestSplitIntoSectionsExcludesHeaderLines(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"plain", "Skills"},
		{"upper", "SKILLS"},
		{"trailing colon", "Skills:"},
		{"synonym", "Technical Skills"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections, _ := splitIntoSections(tt.header + "\nPython, SQL")
			require.Contains(t, sections, "skills")
			assert.Equal(t, "Python, SQL", sections["skills"])
			assert.NotContains(t, sections["skills"], tt.header)
		})
	}
}

func TestSplitIntoSectionsRecordsOrder(t *testing.T) {
	text := "Intro line\n\nEducation\nState University\n\nExperience\nACME Corp\nShipped things"
	sections, order := splitIntoSections(text)

	assert.Equal(t, []string{"summary", "education", "experience"}, order)
	assert.Equal(t, "Intro line", sections["summary"])
	assert.Equal(t, "State University", sections["education"])
	assert.Equal(t, "ACME Corp\nShipped things", sections["experience"])
}

func TestSplitIntoSectionsHeaderWithoutContent(t *testing.T) {
	sections, order := splitIntoSections("Skills\n\nExperience\nBuilt APIs")

	// An opened section with no content still exists with an empty body.
	require.Contains(t, sections, "skills")
	assert.Equal(t, "", sections["skills"])
	assert.Equal(t, []string{"skills", "experience"}, order)
}

func TestParseBackfillsSyntheticSections(t *testing.T) {
	parsed := Parse("Jane Doe\nShipped Python and Docker services for 4 years")

	assert.Equal(t, "docker, python", parsed.Sections["skills"])
	assert.Equal(t, "Estimated 4 years of experience", parsed.Sections["experience"])
	// Synthesized sections are not part of the observed order.
	assert.NotContains(t, parsed.SectionOrder, "skills")
	assert.NotContains(t, parsed.SectionOrder, "experience")
}

func TestParseDoesNotBackfillExplicitEmptySection(t *testing.T) {
	parsed := Parse("Jane Doe\nUses Python daily\nSkills")

	// The skills header was present, so the empty body is kept as-is.
	assert.Equal(t, "", parsed.Sections["skills"])
}

func TestInferName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"first short line", "Jane Doe\nSenior Engineer", "Jane Doe"},
		{"skips email line", "jane@example.com\nJane Doe", "Jane Doe"},
		{"skips resume banner", "Resume of 2024\nJane Doe", "Jane Doe"},
		{"skips curriculum vitae", "Curriculum Vitae\nJane Doe", "Jane Doe"},
		{"skips long lines", "one two three four five six\nJane Doe", "Jane Doe"},
		{"no candidate", "this line has way too many words to be a name\n", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inferName(tt.text))
		})
	}
}

func TestMatchSkillsIsSubstringBased(t *testing.T) {
	skills := matchSkills("Expert in JavaScript and Machine Learning")

	// Substring matching has a documented precision tradeoff: "javascript"
	// also matches the shorter vocabulary entry "java".
	assert.Contains(t, skills, "javascript")
	assert.Contains(t, skills, "java")
	assert.Contains(t, skills, "machine learning")
	assert.True(t, sortedStrings(skills), "skills must be sorted: %v", skills)
}

func sortedStrings(values []string) bool {
	for i := 1; i < len(values); i++ {
		if values[i-1] > values[i] {
			return false
		}
	}
	return true
}

func TestEstimateExperienceYears(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *float64
	}{
		{"none", "no durations here", nil},
		{"simple", "5 years of backend work", ptr(5.0)},
		{"plus suffix", "3+ years with Go", ptr(3.0)},
		{"decimal", "2.5 yrs of consulting", ptr(2.5)},
		{"takes the maximum", "2 years at A, then 7 years at B", ptr(7.0)},
		{"case insensitive", "10 YEARS in ops", ptr(10.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := estimateExperienceYears(tt.text)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func ptr(f float64) *float64 { return &f }

func TestExtractEducation(t *testing.T) {
	entries := extractEducation("B.S. Computer Science, 2017\n\nM.S. Data Engineering, 2019 to 2021\n\nCertificate program")

	require.Len(t, entries, 3)
	assert.Equal(t, "2017", entries[0].Years)
	assert.Equal(t, "2019-2021", entries[1].Years)
	assert.Empty(t, entries[2].Years)
	assert.Equal(t, "Certificate program", entries[2].Summary)
}

func TestExtractEducationDeduplicatesYears(t *testing.T) {
	entries := extractEducation("Exchange year 2020, thesis defended 2020, started 2017")

	require.Len(t, entries, 1)
	assert.Equal(t, "2017-2020", entries[0].Years)
}

func TestDocumentRoundTrip(t *testing.T) {
	parsed := Parse(sampleResume)

	restored := FromStored(parsed.RawText, parsed.AsDocument())

	assert.Equal(t, parsed.Skills, restored.Skills)
	assert.Equal(t, parsed.EducationEntries, restored.EducationEntries)
	require.NotNil(t, restored.ExperienceYears)
	assert.Equal(t, *parsed.ExperienceYears, *restored.ExperienceYears)
	assert.Equal(t, parsed.Sections, restored.Sections)
	assert.Equal(t, parsed.SectionOrder, restored.SectionOrder)
	assert.Equal(t, parsed.CandidateName, restored.CandidateName)
}

func TestDocumentRoundTripThroughJSON(t *testing.T) {
	parsed := Parse(sampleResume)

	raw, err := json.Marshal(parsed.AsDocument())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	restored := FromStored(parsed.RawText, doc)

	assert.Equal(t, parsed.Skills, restored.Skills)
	assert.Equal(t, parsed.EducationEntries, restored.EducationEntries)
	require.NotNil(t, restored.ExperienceYears)
	assert.Equal(t, *parsed.ExperienceYears, *restored.ExperienceYears)
	assert.Equal(t, parsed.Sections, restored.Sections)
	assert.Equal(t, parsed.SectionOrder, restored.SectionOrder)
}

func TestFromStoredToleratesWrongTypes(t *testing.T) {
	doc := map[string]any{
		"candidate_name":    42,
		"contact_email":     []string{"not", "a", "string"},
		"skills":            "python",
		"experience_years":  map[string]any{},
		"education_entries": "none",
		"sections":          []any{"broken"},
	}

	parsed := FromStored("raw", doc)

	assert.Empty(t, parsed.CandidateName)
	assert.Empty(t, parsed.ContactEmail)
	assert.Empty(t, parsed.Skills)
	assert.Nil(t, parsed.ExperienceYears)
	assert.Empty(t, parsed.EducationEntries)
	assert.Empty(t, parsed.Sections)
	assert.Equal(t, "raw", parsed.RawText)
}

func TestFromStoredCoercesNumericStrings(t *testing.T) {
	parsed := FromStored("", map[string]any{"experience_years": "6.5"})
	require.NotNil(t, parsed.ExperienceYears)
	assert.Equal(t, 6.5, *parsed.ExperienceYears)

	parsed = FromStored("", map[string]any{"experience_years": "not a number"})
	assert.Nil(t, parsed.ExperienceYears)
}

func TestFromStoredDropsNonStringSectionValues(t *testing.T) {
	parsed := FromStored("", map[string]any{
		"sections": map[string]any{
			"summary":       "kept",
			"broken":        12.0,
			"section_order": []any{"summary"},
		},
	})

	assert.Equal(t, map[string]string{"summary": "kept"}, parsed.Sections)
	assert.Equal(t, []string{"summary"}, parsed.SectionOrder)
}
