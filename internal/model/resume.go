package model

// ResumeAnalysis is the structured result of a resume review.
type ResumeAnalysis struct {
	Score        int      `json:"score"`
	Summary      string   `json:"summary"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// IsValid checks the analysis satisfies the expected shape:
// a score within 0..100 and a non-empty summary.
func (a *ResumeAnalysis) IsValid() bool {
	return a.Score >= 0 && a.Score <= 100 && a.Summary != ""
}
