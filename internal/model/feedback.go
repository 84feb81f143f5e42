package model

import "time"

// The five fixed scoring categories, in the order they are stored and shown.
const (
	CategoryCommunication  = "Communication Skills"
	CategoryTechnical      = "Technical Knowledge"
	CategoryProblemSolving = "Problem-Solving"
	CategoryCulturalFit    = "Cultural & Role Fit"
	CategoryConfidence     = "Confidence & Clarity"
)

// Score bounds for both category scores and the total score.
const (
	MinScore = 0
	MaxScore = 100
)

// Categories lists the scoring categories in canonical order.
var Categories = []string{
	CategoryCommunication,
	CategoryTechnical,
	CategoryProblemSolving,
	CategoryCulturalFit,
	CategoryConfidence,
}

// CategoryScore is the score and comment for one category.
type CategoryScore struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// Feedback is the AI assessment of one interview attempt by one user.
//
// Only one feedback per (InterviewID, UserID) is ever consulted: lookups take
// the newest match. Storage does not enforce uniqueness.
type Feedback struct {
	ID                  string          `json:"id"`
	InterviewID         string          `json:"interviewId"`
	UserID              string          `json:"userId"`
	TotalScore          int             `json:"totalScore"`
	CategoryScores      []CategoryScore `json:"categoryScores"`
	Strengths           []string        `json:"strengths"`
	AreasForImprovement []string        `json:"areasForImprovement"`
	FinalAssessment     string          `json:"finalAssessment"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// TranscriptTurn is one spoken turn of an interview session.
type TranscriptTurn struct {
	Role    string `json:"role"` // "user", "assistant" or "system"
	Content string `json:"content"`
}
