package roadmap

import (
	"fmt"
	"strings"

	types "github.com/yungbote/unipilot-backend/internal/domain"
)

// PlanHorizon is how many semesters past the current one a roadmap covers.
const PlanHorizon = 4

// PromptInput is the student and target context rendered into a prompt.
type PromptInput struct {
	TargetName        string
	TargetDescription string
	// Job is set when the target is a career-tree job rather than a topic field.
	Job bool

	StudyProgram    string
	CurrentSemester int
	Skills          string
	Modules         []*types.Module
}

const itemSchema = `{
  "name": "string",
  "description": "string",
  "items": [
    {
      "id": 1,
      "item_type": "COURSE|MODULE|PROJECT|SKILL|BOOK|CERTIFICATE|INTERNSHIP|BOOTCAMP|CAREER",
      "title": "string",
      "description": "string",
      "semester": 1,
      "is_semester_break": false,
      "order": 0,
      "parent_id": null,
      "level": 0,
      "is_leaf": false,
      "is_career_goal": false,
      "module_id": null,
      "is_important": false,
      "top_skills": [{"skill": "string", "score": 90}]
    }
  ]
}`

const systemPrompt = `You plan university study roadmaps. Reply with a single JSON object and nothing else.`

// BuildPrompt returns the system and user prompt for one generation call.
func BuildPrompt(in PromptInput) (system, user string) {
	current := in.CurrentSemester
	if current < 1 {
		current = 1
	}
	last := current + PlanHorizon

	var b strings.Builder
	if in.Job {
		fmt.Fprintf(&b, "Create a roadmap that prepares the student for the job %q.\n", in.TargetName)
	} else {
		fmt.Fprintf(&b, "Create a roadmap for the topic field %q.\n", in.TargetName)
	}
	if d := strings.TrimSpace(in.TargetDescription); d != "" {
		fmt.Fprintf(&b, "About the target: %s\n", d)
	}
	fmt.Fprintf(&b, "\nStudy program: %s\n", in.StudyProgram)
	fmt.Fprintf(&b, "Current semester: %d. Plan semesters %d to %d.\n", current, current, last)
	if s := strings.TrimSpace(in.Skills); s != "" {
		fmt.Fprintf(&b, "Existing skills: %s\n", s)
	}

	b.WriteString("\nModules the student has not completed yet (id: name, type, semester):\n")
	if len(in.Modules) == 0 {
		b.WriteString("- none\n")
	}
	for _, m := range in.Modules {
		sem := "-"
		if m.Semester != nil {
			sem = fmt.Sprint(*m.Semester)
		}
		fmt.Fprintf(&b, "- %d: %s, %s, %s\n", m.ID, m.Name, m.ModuleType, sem)
	}

	b.WriteString(`
Rules:
- Level 0 is the single root. Every other item has the parent_id of an item exactly one level up.
- Every item has an integer semester. Semester breaks use is_semester_break=true, never a special item_type.
- Only the final CAREER item has is_career_goal=true and is_leaf=true, and only it carries top_skills (score 0-100).
- Link university modules through module_id when an item is one of the modules above.

Answer with JSON matching this shape:
`)
	b.WriteString(itemSchema)
	return systemPrompt, b.String()
}
