package resume

import "strconv"

// AsDocument serializes the structured fields for persistence. Raw text
// is stored separately and is not part of the document. Section order is
// carried as a synthetic "section_order" entry inside the sections map so
// the stored shape stays a single JSON object.
func (p *ParsedResume) AsDocument() map[string]any {
	sections := make(map[string]any, len(p.Sections)+1)
	for name, body := range p.Sections {
		sections[name] = body
	}
	sections["section_order"] = p.SectionOrder

	entries := make([]map[string]string, 0, len(p.EducationEntries))
	for _, e := range p.EducationEntries {
		entry := map[string]string{"summary": e.Summary}
		if e.Years != "" {
			entry["years"] = e.Years
		}
		entries = append(entries, entry)
	}

	var experience any
	if p.ExperienceYears != nil {
		experience = *p.ExperienceYears
	}

	return map[string]any{
		"candidate_name":    p.CandidateName,
		"contact_email":     p.ContactEmail,
		"contact_phone":     p.ContactPhone,
		"skills":            p.Skills,
		"experience_years":  experience,
		"education_entries": entries,
		"sections":          sections,
	}
}

// FromStored rebuilds a ParsedResume from a previously persisted document
// without re-running extraction. Every field is type-checked: a value of
// an unexpected type is treated as absent rather than failing, so partial
// or hand-edited documents still load.
func FromStored(rawText string, doc map[string]any) *ParsedResume {
	parsed := &ParsedResume{
		RawText:          rawText,
		CandidateName:    stringValue(doc["candidate_name"]),
		ContactEmail:     stringValue(doc["contact_email"]),
		ContactPhone:     stringValue(doc["contact_phone"]),
		Skills:           stringSlice(doc["skills"]),
		ExperienceYears:  floatValue(doc["experience_years"]),
		EducationEntries: educationEntries(doc["education_entries"]),
	}
	parsed.Sections, parsed.SectionOrder = storedSections(doc["sections"])
	return parsed
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// floatValue accepts numbers and numeric strings; anything else is nil.
func floatValue(v any) *float64 {
	switch value := v.(type) {
	case float64:
		return &value
	case int:
		f := float64(value)
		return &f
	case string:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func stringSlice(v any) []string {
	out := []string{}
	switch values := v.(type) {
	case []string:
		out = append(out, values...)
	case []any:
		for _, item := range values {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

func educationEntries(v any) []EducationEntry {
	out := []EducationEntry{}
	switch values := v.(type) {
	case []EducationEntry:
		out = append(out, values...)
	case []map[string]string:
		for _, item := range values {
			out = append(out, EducationEntry{Summary: item["summary"], Years: item["years"]})
		}
	case []any:
		for _, item := range values {
			switch entry := item.(type) {
			case map[string]any:
				out = append(out, EducationEntry{
					Summary: stringValue(entry["summary"]),
					Years:   stringValue(entry["years"]),
				})
			case map[string]string:
				out = append(out, EducationEntry{Summary: entry["summary"], Years: entry["years"]})
			}
		}
	}
	return out
}

// storedSections splits the synthetic "section_order" entry back out of
// the persisted sections map. Non-string section bodies are dropped.
func storedSections(v any) (map[string]string, []string) {
	sections := map[string]string{}
	order := []string{}

	asMap, ok := v.(map[string]any)
	if !ok {
		if typed, ok := v.(map[string]string); ok {
			for name, body := range typed {
				sections[name] = body
			}
		}
		return sections, order
	}

	for name, body := range asMap {
		if name == "section_order" {
			order = stringSlice(body)
			continue
		}
		if text, ok := body.(string); ok {
			sections[name] = text
		}
	}
	return sections, order
}
