package generator

import (
	"google.golang.org/genai"

	"github.com/sakif/interview-coach/internal/model"
)

// Schema is the subset of JSON Schema both providers understand.
// Property order is kept in Order so rendered schemas are deterministic.
type Schema struct {
	Type        string // "object", "array", "string" or "integer"
	Description string
	Enum        []string
	Minimum     *float64
	Maximum     *float64
	Properties  map[string]*Schema
	Order       []string
	Items       *Schema
}

// scoreSchema is an integer bounded to the score range.
func scoreSchema(description string) *Schema {
	lo, hi := float64(model.MinScore), float64(model.MaxScore)
	return &Schema{Type: "integer", Description: description, Minimum: &lo, Maximum: &hi}
}

// FeedbackSchema describes the document the model must return.
func FeedbackSchema() *Schema {
	category := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"name":    {Type: "string", Enum: append([]string(nil), model.Categories...)},
			"score":   scoreSchema("Score from 0 to 100."),
			"comment": {Type: "string"},
		},
		Order: []string{"name", "score", "comment"},
	}
	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"totalScore":          scoreSchema("Overall score from 0 to 100."),
			"categoryScores":      {Type: "array", Description: "Exactly one entry per category.", Items: category},
			"strengths":           {Type: "array", Items: &Schema{Type: "string"}},
			"areasForImprovement": {Type: "array", Items: &Schema{Type: "string"}},
			"finalAssessment":     {Type: "string"},
		},
		Order: []string{"totalScore", "categoryScores", "strengths", "areasForImprovement", "finalAssessment"},
	}
}

// jsonSchema renders s as a standard JSON Schema document. In strict mode
// every property is required and additional properties are rejected, which
// OpenAI structured outputs demand.
func (s *Schema) jsonSchema(strict bool) map[string]any {
	out := map[string]any{"type": s.Type}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.Minimum != nil {
		out["minimum"] = *s.Minimum
	}
	if s.Maximum != nil {
		out["maximum"] = *s.Maximum
	}
	if s.Items != nil {
		out["items"] = s.Items.jsonSchema(strict)
	}
	if s.Type == "object" {
		props := make(map[string]any, len(s.Properties))
		for _, name := range s.Order {
			props[name] = s.Properties[name].jsonSchema(strict)
		}
		out["properties"] = props
		out["required"] = s.Order
		if strict {
			out["additionalProperties"] = false
		}
	}
	return out
}

var genaiTypes = map[string]genai.Type{
	"object":  genai.TypeObject,
	"array":   genai.TypeArray,
	"string":  genai.TypeString,
	"integer": genai.TypeInteger,
}

// genaiSchema renders s as a Gemini responseSchema. Gemini keeps output
// fields in PropertyOrdering; enums need the "enum" format.
func (s *Schema) genaiSchema() *genai.Schema {
	out := &genai.Schema{
		Type:        genaiTypes[s.Type],
		Description: s.Description,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
	}
	if len(s.Enum) > 0 {
		out.Format = "enum"
		out.Enum = s.Enum
	}
	if s.Items != nil {
		out.Items = s.Items.genaiSchema()
	}
	if s.Type == "object" {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for _, name := range s.Order {
			out.Properties[name] = s.Properties[name].genaiSchema()
		}
		out.Required = s.Order
		out.PropertyOrdering = s.Order
	}
	return out
}
