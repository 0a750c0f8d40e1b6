package provider

import (
	"errors"
	"testing"
)

func TestParseResumeAnalysis(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantErr bool
		score   int
		summary string
	}{
		{
			name:    "bare json",
			raw:     `{"score": 75, "summary": "Decent resume.", "strengths": ["clear layout"], "improvements": ["add metrics"]}`,
			score:   75,
			summary: "Decent resume.",
		},
		{
			name: "json fence",
			raw: "```json\n" +
				`{"score": 90, "summary": "Strong candidate."}` +
				"\n```",
			score:   90,
			summary: "Strong candidate.",
		},
		{
			name: "bare fence",
			raw: "```\n" +
				`{"score": 10, "summary": "Needs work."}` +
				"\n```",
			score:   10,
			summary: "Needs work.",
		},
		{
			name:    "leading prose",
			raw:     `Here is the analysis you asked for: {"score": 55, "summary": "Average."} Hope this helps!`,
			score:   55,
			summary: "Average.",
		},
		{
			name:    "no json at all",
			raw:     "I cannot review this document.",
			wantErr: true,
		},
		{
			name:    "invalid json",
			raw:     `{"score": 75, "summary": `,
			wantErr: true,
		},
		{
			name:    "missing summary",
			raw:     `{"score": 75}`,
			wantErr: true,
		},
		{
			name:    "missing score",
			raw:     `{"summary": "ok"}`,
			wantErr: true,
		},
		{
			name:    "score out of range",
			raw:     `{"score": 150, "summary": "Too good."}`,
			wantErr: true,
		},
		{
			name:    "empty summary",
			raw:     `{"score": 50, "summary": ""}`,
			wantErr: true,
		},
		{
			name:    "empty input",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			analysis, err := ParseResumeAnalysis(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Fatalf("error = %v, want ErrMalformedResponse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseResumeAnalysis() error = %v", err)
			}

			if analysis.Score != tt.score {
				t.Errorf("score = %d, want %d", analysis.Score, tt.score)
			}
			if analysis.Summary != tt.summary {
				t.Errorf("summary = %q, want %q", analysis.Summary, tt.summary)
			}
		})
	}
}

func TestParseResumeAnalysis_Lists(t *testing.T) {
	t.Parallel()

	raw := `{"score": 60, "summary": "ok", "strengths": ["a", "b", 3], "improvements": []}`

	analysis, err := ParseResumeAnalysis(raw)
	if err != nil {
		t.Fatalf("ParseResumeAnalysis() error = %v", err)
	}

	// Non-string entries are dropped, never surfaced.
	if len(analysis.Strengths) != 2 {
		t.Errorf("strengths = %v, want the two string entries", analysis.Strengths)
	}
	if analysis.Improvements == nil || len(analysis.Improvements) != 0 {
		t.Errorf("improvements = %v, want empty non-nil slice", analysis.Improvements)
	}
}
