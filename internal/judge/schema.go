package judge

// BuildCandidateJSONSchema returns a JSON-Schema (draft 2020-12 subset)
// as a generic map. We pass this to the model as a structured output
// constraint and also use it locally to validate the response. Fields
// the CV does not state may be null or omitted; nothing is required, so
// a sparse but well-formed response still passes.
func BuildCandidateJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"first_name":       map[string]any{"type": []string{"string", "null"}},
			"last_name":        map[string]any{"type": []string{"string", "null"}},
			"email":            map[string]any{"type": []string{"string", "null"}},
			"phone":            map[string]any{"type": []string{"string", "null"}},
			"skills":           stringArrayProp(),
			"years_experience": map[string]any{"type": []string{"number", "null"}, "minimum": 0.0},
			"companies":        stringArrayProp(),
			"languages":        stringArrayProp(),
			"certifications":   stringArrayProp(),
			"education": map[string]any{
				"type": []string{"array", "null"},
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"institution": map[string]any{"type": []string{"string", "null"}},
						"degree":      map[string]any{"type": []string{"string", "null"}},
						"start_date":  map[string]any{"type": []string{"string", "null"}},
						"end_date":    map[string]any{"type": []string{"string", "null"}},
					},
				},
			},
		},
	}
}

// BuildJobJSONSchema constrains the parsed job-description record.
func BuildJobJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"skills_required":         stringArrayProp(),
			"years_required":          map[string]any{"type": []string{"number", "null"}, "minimum": 0.0},
			"languages_required":      stringArrayProp(),
			"certifications_required": stringArrayProp(),
		},
	}
}

// BuildScoreJSONSchema constrains the scoring verdict: the score is
// required and bounded; matching points are optional.
func BuildScoreJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":           map[string]any{"type": "number", "minimum": 0.0, "maximum": 100.0},
			"matching_points": stringArrayProp(),
		},
		"required": []string{"score"},
	}
}

func stringArrayProp() map[string]any {
	return map[string]any{
		"type":  []string{"array", "null"},
		"items": map[string]any{"type": "string"},
	}
}
