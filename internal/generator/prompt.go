package generator

import (
	"fmt"
	"strings"

	"github.com/sakif/interview-coach/internal/model"
)

// SystemInstruction is sent as the system message of every feedback call.
const SystemInstruction = "You are a professional interviewer analyzing a mock interview. Your task is to evaluate the candidate based on structured categories"

// categoryDescriptions explains each category to the model.
var categoryDescriptions = map[string]string{
	model.CategoryCommunication:  "Clarity, articulation, structured responses.",
	model.CategoryTechnical:      "Understanding of key concepts for the role.",
	model.CategoryProblemSolving: "Ability to analyze problems and propose solutions.",
	model.CategoryCulturalFit:    "Alignment with company values and job role.",
	model.CategoryConfidence:     "Confidence in responses, engagement, and clarity.",
}

// FormatTranscript renders each turn as "- {role}: {content}\n".
func FormatTranscript(turns []model.TranscriptTurn) string {
	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "- %s: %s\n", t.Role, t.Content)
	}
	return b.String()
}

// BuildPrompt places a formatted transcript into the evaluation instructions.
func BuildPrompt(formattedTranscript string) string {
	var b strings.Builder
	b.WriteString("You are an AI interviewer analyzing a mock interview. Your task is to evaluate the candidate based on structured categories. ")
	b.WriteString("Be thorough and detailed in your analysis. Don't be lenient with the candidate. ")
	b.WriteString("If there are mistakes or areas for improvement, point them out.\n")
	b.WriteString("Transcript:\n")
	b.WriteString(formattedTranscript)
	b.WriteString("\nPlease score the candidate from 0 to 100 in the following areas. Do not add categories other than the ones provided:\n")
	for _, name := range model.Categories {
		fmt.Fprintf(&b, "- **%s**: %s\n", name, categoryDescriptions[name])
	}
	return b.String()
}
