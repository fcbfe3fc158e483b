package llm

import (
	_ "embed"
	"strings"
)

const resumeTextPlaceholder = "{{RESUME_TEXT}}"

//go:embed prompts/ats_v1.txt
var atsPromptV1 string

// ATSPromptVersion identifies the embedded analysis prompt.
const ATSPromptVersion = "ats_v1"

// BuildATSPrompt interpolates resume text into the analysis prompt.
func BuildATSPrompt(resumeText string) string {
	return strings.Replace(atsPromptV1, resumeTextPlaceholder, resumeText, 1)
}
