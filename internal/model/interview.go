package model

import "time"

// Interview is a generated mock interview owned by one user.
//
// Questions keeps its order: the interview agent asks them in sequence.
// Finalized interviews appear in other users' "latest" feed.
type Interview struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Role       string    `json:"role"`
	Type       string    `json:"type"` // "technical", "behavioral" or "mixed"
	Level      string    `json:"level"`
	TechStack  []string  `json:"techstack"`
	Questions  []string  `json:"questions"`
	CoverImage string    `json:"coverImage"`
	Finalized  bool      `json:"finalized"`
	CreatedAt  time.Time `json:"createdAt"`
}
