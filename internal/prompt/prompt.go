// Package prompt renders the three LLM prompts used by the coordinator.
// Every builder is pure: inputs are embedded verbatim and nothing is
// truncated here.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kalambet/jobfill/internal/model"
)

const notSpecified = "Not specified"

const extractionTemplate = `Extract job information from the following content and return it as a JSON object. Focus on the most important details.

Content:
%s

URL: %s

Please extract and return a JSON object with the following structure:
{
  "title": "Job title",
  "company": "Company name",
  "description": "Job description (first 500 characters)",
  "requirements": ["requirement1", "requirement2", "requirement3"],
  "location": "Job location",
  "employmentType": "Full-time/Part-time/Contract",
  "salary": "Salary range if mentioned",
  "technologies": ["tech1", "tech2", "tech3"]
}

Only return the JSON object, no additional text.`

const formAnalysisTemplate = `Analyze the following HTML form and identify all input fields. Return a JSON array of field objects.

Form HTML:
%s

For each field, return an object with:
{
  "selector": "CSS selector to find the field",
  "label": "Field label or placeholder text",
  "type": "Field type (text, email, textarea, select, checkbox, radio)",
  "purpose": "What this field is asking for (name, email, cover_letter, experience, etc.)",
  "required": true/false
}

Only return the JSON array, no additional text.`

const answerInstructions = `Generate a concise, professional answer (1-3 sentences) that:
1. Directly addresses what the field is asking for
2. Highlights relevant experience from the resume
3. Shows how your skills match the job requirements
4. Is specific and personalized

Only return the answer text, no additional formatting or explanation.`

// Extraction asks the model for a single JSON object describing the job
// posting found in content.
func Extraction(content, url string) string {
	return fmt.Sprintf(extractionTemplate, content, url)
}

// FormAnalysis asks the model for a JSON array describing every field of
// the serialized form.
func FormAnalysis(formHTML string) string {
	return fmt.Sprintf(formAnalysisTemplate, formHTML)
}

// Answer asks the model for a short plain-text answer to one form field,
// grounded in the job posting and the résumé.
func Answer(field model.FieldDescriptor, job model.JobRecord, resume string) string {
	var sb strings.Builder
	sb.WriteString("Generate a personalized answer for a job application form field based on the job requirements and resume data.\n\n")

	sb.WriteString("Field Information:\n")
	fmt.Fprintf(&sb, "- Label: %s\n", field.Label)
	fmt.Fprintf(&sb, "- Type: %s\n", field.Type)
	fmt.Fprintf(&sb, "- Purpose: %s\n\n", field.Purpose)

	sb.WriteString("Job Information:\n")
	fmt.Fprintf(&sb, "- Title: %s\n", job.Title)
	fmt.Fprintf(&sb, "- Company: %s\n", job.Company)
	fmt.Fprintf(&sb, "- Description: %s\n", job.Description)
	fmt.Fprintf(&sb, "- Requirements: %s\n", joinList(job.Requirements))
	fmt.Fprintf(&sb, "- Technologies: %s\n\n", joinList(job.Technologies))

	sb.WriteString("Resume/CV Data:\n")
	sb.WriteString(resume)
	sb.WriteString("\n\n")

	sb.WriteString(answerInstructions)
	return sb.String()
}

func joinList(items []string) string {
	if len(items) == 0 {
		return notSpecified
	}
	return strings.Join(items, ", ")
}
