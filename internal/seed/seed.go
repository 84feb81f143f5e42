// Package seed loads interviews from a YAML file into storage.
//
// There is no public endpoint for creating interviews, so local setups and
// demos populate the "latest interviews" feed this way:
//
//	interviews:
//	  - id: frontend-junior
//	    userId: demo
//	    role: Frontend Developer
//	    type: technical
//	    level: Junior
//	    techstack: [React, TypeScript]
//	    questions:
//	      - What does useEffect's dependency array do?
//	    finalized: true
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sakif/interview-coach/internal/apperror"
	"github.com/sakif/interview-coach/internal/model"
	"github.com/sakif/interview-coach/internal/repository"
)

var interviewTypes = map[string]bool{
	"technical":  true,
	"behavioral": true,
	"mixed":      true,
}

type file struct {
	Interviews []entry `yaml:"interviews"`
}

type entry struct {
	ID         string    `yaml:"id"`
	UserID     string    `yaml:"userId"`
	Role       string    `yaml:"role"`
	Type       string    `yaml:"type"`
	Level      string    `yaml:"level"`
	TechStack  []string  `yaml:"techstack"`
	Questions  []string  `yaml:"questions"`
	CoverImage string    `yaml:"coverImage"`
	Finalized  bool      `yaml:"finalized"`
	CreatedAt  time.Time `yaml:"createdAt"`
}

// Load parses and validates a seed file. Every entry needs a userId and a
// role; type, when set, must be technical, behavioral or mixed.
func Load(r io.Reader) ([]model.Interview, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("seed: parsing: %w", err)
	}

	out := make([]model.Interview, 0, len(f.Interviews))
	for i, e := range f.Interviews {
		e.Type = strings.ToLower(strings.TrimSpace(e.Type))
		switch {
		case strings.TrimSpace(e.UserID) == "":
			return nil, fmt.Errorf("seed: interview %d: userId is required", i)
		case strings.TrimSpace(e.Role) == "":
			return nil, fmt.Errorf("seed: interview %d: role is required", i)
		case e.Type != "" && !interviewTypes[e.Type]:
			return nil, fmt.Errorf("seed: interview %d: unknown type %q", i, e.Type)
		}
		out = append(out, model.Interview{
			ID:         e.ID,
			UserID:     e.UserID,
			Role:       e.Role,
			Type:       e.Type,
			Level:      e.Level,
			TechStack:  e.TechStack,
			Questions:  e.Questions,
			CoverImage: e.CoverImage,
			Finalized:  e.Finalized,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out, nil
}

// Stats counts what Apply did.
type Stats struct {
	Created int
	Skipped int // ID already present
}

// Apply stores the interviews. Entries whose ID already exists are skipped,
// so running the same file twice is harmless.
func Apply(ctx context.Context, repo repository.InterviewRepository, interviews []model.Interview) (Stats, error) {
	var stats Stats
	for i := range interviews {
		err := repo.Create(ctx, &interviews[i])
		switch {
		case err == nil:
			stats.Created++
		case apperror.IsConflictOn(err, "id"):
			stats.Skipped++
		default:
			return stats, fmt.Errorf("seed: creating interview %q: %w", interviews[i].Role, err)
		}
	}
	return stats, nil
}
