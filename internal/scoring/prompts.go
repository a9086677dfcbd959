package scoring

import (
	_ "embed"
	"strings"
)

//go:embed prompts/ngmi.txt
var ngmiTemplate string

//go:embed prompts/skills.txt
var skillsTemplate string

func buildScorePrompt(resumeText, jobDescription string) string {
	return strings.NewReplacer(
		"{{resume_text}}", strings.TrimSpace(resumeText),
		"{{job_description}}", strings.TrimSpace(jobDescription),
	).Replace(ngmiTemplate)
}

func buildSkillsPrompt(resumeText string) string {
	return strings.NewReplacer("{{resume_text}}", strings.TrimSpace(resumeText)).Replace(skillsTemplate)
}
