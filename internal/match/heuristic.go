package match

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"resume-screener/internal/resume"
)

// JobProfile is the job posting a resume is scored against. Required
// skills keep their display casing; comparisons are case-insensitive.
type JobProfile struct {
	Title          string
	Description    string
	RequiredSkills []string
}

// shortlistThreshold is the minimum score a match needs to be
// shortlisted, regardless of relative ranking.
const shortlistThreshold = 7.0

var requiredExperiencePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:\+\s*)?(?:years?|yrs?) of experience`)

// Heuristic deterministically scores a resume against a job: 70% skill
// overlap, 30% experience alignment, scaled to 0-10 and rounded to two
// decimals. It is the fallback whenever no model is available.
func Heuristic(parsed *resume.ParsedResume, job JobProfile) (float64, string) {
	skillScore := skillOverlap(parsed.Skills, job.RequiredSkills)

	resumeExperience := 0.0
	if parsed.ExperienceYears != nil {
		resumeExperience = *parsed.ExperienceYears
	}
	requiredExperience := estimateRequiredExperience(job.Description)
	experienceScore := experienceAlignment(resumeExperience, requiredExperience)

	overall := math.Round((0.7*skillScore+0.3*experienceScore)*10*100) / 100

	reasoningLines := []string{
		fmt.Sprintf("Skill match: %.0f%% overlap", skillScore*100),
		fmt.Sprintf("Experience: %.1f years vs requirement %.1f years", resumeExperience, requiredExperience),
	}
	if parsed.CandidateName != "" {
		reasoningLines = append([]string{"Candidate: " + parsed.CandidateName}, reasoningLines...)
	}

	return overall, strings.Join(reasoningLines, "\n")
}

func skillOverlap(resumeSkills, required []string) float64 {
	resumeSet := lowerSet(resumeSkills)
	requiredSet := lowerSet(required)
	if len(requiredSet) == 0 {
		// A job without stated requirements matches anyone with skills.
		if len(resumeSet) > 0 {
			return 1.0
		}
		return 0.0
	}
	overlap := 0
	for skill := range requiredSet {
		if _, ok := resumeSet[skill]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(requiredSet))
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}

// estimateRequiredExperience reads the first "N years of experience"
// mention out of the job description, defaulting to 3 years.
func estimateRequiredExperience(description string) float64 {
	m := requiredExperiencePattern.FindStringSubmatch(description)
	if m != nil {
		if years, err := strconv.ParseFloat(m[1], 64); err == nil {
			return years
		}
	}
	return 3.0
}

func experienceAlignment(resumeYears, requiredYears float64) float64 {
	if requiredYears <= 0 {
		return 1.0
	}
	ratio := resumeYears / requiredYears
	return math.Max(0.0, math.Min(ratio, 1.0))
}

// ShortlistEntry is one scored match considered for shortlisting.
type ShortlistEntry struct {
	Score     float64
	Reasoning string
	ID        int64
}

// Shortlist filters out entries below the threshold, sorts the rest by
// score descending (stable, so tied entries keep their incoming order)
// and truncates to limit.
func Shortlist(entries []ShortlistEntry, limit int) []ShortlistEntry {
	filtered := []ShortlistEntry{}
	for _, entry := range entries {
		if entry.Score >= shortlistThreshold {
			filtered = append(filtered, entry)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score > filtered[j].Score
	})
	if limit < 0 {
		limit = 0
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}
