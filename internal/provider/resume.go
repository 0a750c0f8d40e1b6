package provider

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/quickai/quickai/internal/model"
)

// ParseResumeAnalysis extracts a ResumeAnalysis from raw provider output.
// The provider is asked for bare JSON but frequently wraps it in markdown
// code fences or leading prose; anything outside the outermost JSON object
// is discarded before parsing.
func ParseResumeAnalysis(raw string) (*model.ResumeAnalysis, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrMalformedResponse)
	}

	if !gjson.Valid(cleaned) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrMalformedResponse)
	}

	parsed := gjson.Parse(cleaned)

	score := parsed.Get("score")
	summary := parsed.Get("summary")
	if !score.Exists() || !summary.Exists() {
		return nil, fmt.Errorf("%w: missing score or summary", ErrMalformedResponse)
	}

	analysis := &model.ResumeAnalysis{
		Score:        int(score.Int()),
		Summary:      summary.String(),
		Strengths:    stringSlice(parsed.Get("strengths")),
		Improvements: stringSlice(parsed.Get("improvements")),
	}

	if !analysis.IsValid() {
		return nil, fmt.Errorf("%w: analysis fails shape validation", ErrMalformedResponse)
	}

	return analysis, nil
}

// extractJSON returns the outermost {...} region of the input, with any
// markdown code fences stripped.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Strip fenced code blocks: ```json ... ``` or ``` ... ```
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}

	return s[start : end+1]
}

// stringSlice converts a gjson array into []string, skipping non-strings.
func stringSlice(value gjson.Result) []string {
	items := []string{}
	for _, v := range value.Array() {
		if v.Type == gjson.String {
			items = append(items, v.String())
		}
	}
	return items
}
