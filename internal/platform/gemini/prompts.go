package gemini

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Prompt templates for each generation kind. All templates demand strict
// JSON output matching the response schemas in types.go.
const (
	diagnosticPromptText = `You are a tutor preparing a diagnostic quiz.
Read the course material below and write exactly 5 multiple-choice questions
covering its most important ideas. Tag every question with the single concept
it tests, using a short stable name.

Course material:
{{.CourseText}}

Respond with JSON only, in this shape:
{"questions":[{"question":"...","options":["...","...","...","..."],"correct_index":0,"concept":"..."}]}`

	remediationPromptText = `You are a tutor helping a student who struggled with
these concepts: {{.Concepts}}.
Using the course material below, write a focused {{.Tier}} lesson that
re-explains those concepts, then write flashcards (one fact each) the student
should memorize.

Course material:
{{.CourseText}}

Respond with JSON only, in this shape:
{"lesson_text":"...","flashcards":[{"front":"...","back":"..."}]}`

	validationPromptText = `You are a tutor checking whether a student has
recovered from weaknesses in these concepts: {{.Concepts}}.
Using the course material below, write 3 {{.Tier}} multiple-choice questions
restricted to those concepts, each tagged with the concept it tests.

Course material:
{{.CourseText}}

Respond with JSON only, in this shape:
{"questions":[{"question":"...","options":["...","...","...","..."],"correct_index":0,"concept":"..."}]}`

	practicePromptText = `You are a tutor writing a {{.Difficulty}} free-response
exercise that makes the student apply the course material below. Give a clear
instruction and any supporting context the student needs.

Course material:
{{.CourseText}}

Respond with JSON only, in this shape:
{"instruction":"...","context":"..."}`

	evaluationPromptText = `You are a tutor grading a student's free-response
answer.

Exercise instruction:
{{.Instruction}}

Student answer:
{{.StudentAnswer}}

Course material:
{{.CourseText}}

Score the answer from 0 to 100, decide whether it is essentially correct,
give short feedback, and show a corrected answer if needed.

Respond with JSON only, in this shape:
{"score":0,"is_correct":false,"feedback":"...","correction":"..."}`
)

// promptSet holds the parsed templates, one per generation kind.
type promptSet struct {
	diagnostic  *template.Template
	remediation *template.Template
	validation  *template.Template
	practice    *template.Template
	evaluation  *template.Template
}

func newPromptSet() (*promptSet, error) {
	parse := func(name, text string) (*template.Template, error) {
		tmpl, err := template.New(name).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s prompt template: %w", name, err)
		}
		return tmpl, nil
	}

	set := &promptSet{}
	var err error
	if set.diagnostic, err = parse("diagnostic", diagnosticPromptText); err != nil {
		return nil, err
	}
	if set.remediation, err = parse("remediation", remediationPromptText); err != nil {
		return nil, err
	}
	if set.validation, err = parse("validation", validationPromptText); err != nil {
		return nil, err
	}
	if set.practice, err = parse("practice", practicePromptText); err != nil {
		return nil, err
	}
	if set.evaluation, err = parse("evaluation", evaluationPromptText); err != nil {
		return nil, err
	}

	return set, nil
}

// render executes a template with the given data.
func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s prompt template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// joinConcepts renders a concept list for prompt interpolation.
func joinConcepts(concepts []string) string {
	return strings.Join(concepts, ", ")
}
