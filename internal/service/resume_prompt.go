package service

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"recruitflow/internal/model"
)

const (
	maxFieldRunes          = 4000
	maxJobDescriptionRunes = 8000

	candidateBegin = "BEGIN CANDIDATE DATA"
	candidateEnd   = "END CANDIDATE DATA"
	jobBegin       = "BEGIN JOB DESCRIPTION"
	jobEnd         = "END JOB DESCRIPTION"
)

var markerReplacer = strings.NewReplacer(
	candidateBegin, "", candidateEnd, "",
	jobBegin, "", jobEnd, "",
	"```", "",
)

// sanitizeField removes fence markers and truncates free text.
func sanitizeField(s string, limit int) string {
	s = strings.TrimSpace(markerReplacer.Replace(s))
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

// buildResumePrompt lays out candidate data and the job description between fixed markers.
func buildResumePrompt(c *model.Candidate, jobTitle, company, jobDescription string) string {
	var b strings.Builder

	b.WriteString("Write a tailored, ATS-friendly resume for the candidate below")
	if jobTitle != "" {
		fmt.Fprintf(&b, " applying for the role of %s", sanitizeField(jobTitle, 255))
	}
	if company != "" {
		fmt.Fprintf(&b, " at %s", sanitizeField(company, 255))
	}
	b.WriteString(".\n\n")
	b.WriteString("Use these sections in order: the candidate name, PROFESSIONAL SUMMARY, SKILLS, EXPERIENCE, EDUCATION.\n")
	b.WriteString("Write section titles in capital letters on their own line and start bullet points with \"- \".\n")
	b.WriteString("Do not invent employers, dates, degrees or skills.\n\n")

	b.WriteString(candidateBegin + "\n")
	field := func(label, value string) {
		if value = sanitizeField(value, maxFieldRunes); value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}
	field("Name", model.JoinName(c.FirstName, c.LastName))
	field("Email", c.Email)
	field("Phone", c.Phone)
	field("Location", c.Location)
	field("Headline", c.Headline)
	field("LinkedIn", c.LinkedInURL)
	if c.ExperienceYears > 0 {
		fmt.Fprintf(&b, "Years of experience: %d\n", c.ExperienceYears)
	}
	if len(c.Skills) > 0 {
		field("Skills", strings.Join(c.Skills, ", "))
	}
	field("Summary", c.Summary)
	field("Experience", c.Experience)
	field("Education", c.Education)
	b.WriteString(candidateEnd + "\n\n")

	b.WriteString(jobBegin + "\n")
	b.WriteString(sanitizeField(jobDescription, maxJobDescriptionRunes))
	b.WriteString("\n" + jobEnd + "\n")
	return b.String()
}

// matchScore is the percentage of candidate skills mentioned in the job description.
func matchScore(skills []string, jobDescription string) int {
	if len(skills) == 0 {
		return 0
	}
	words := tokenize(jobDescription)
	text := " " + strings.Join(words, " ") + " "

	matched := 0
	counted := 0
	for _, skill := range skills {
		tokens := tokenize(skill)
		if len(tokens) == 0 {
			continue
		}
		counted++
		if strings.Contains(text, " "+strings.Join(tokens, " ")+" ") {
			matched++
		}
	}
	if counted == 0 {
		return 0
	}
	return matched * 100 / counted
}

// tokenize lowercases s and splits it on anything that cannot be part of a skill name.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#' && r != '.'
	})
	tokens := fields[:0]
	for _, f := range fields {
		// Sentence punctuation, but keep names like node.js.
		if f = strings.Trim(f, "."); f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
