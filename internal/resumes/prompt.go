package resumes

import "strings"

// BuildQuestionPrompt renders the completion prompt for a visitor question.
// Fields are inserted verbatim.
func BuildQuestionPrompt(q QuestionForm) string {
	var b strings.Builder
	b.WriteString("Question: Person's name: ")
	b.WriteString(q.Name)
	b.WriteString("; Job Title: ")
	b.WriteString(q.JobTitle)
	b.WriteString("; Skills: ")
	b.WriteString(q.Skills)
	b.WriteString("; Languages: ")
	b.WriteString(q.Languages)
	b.WriteString("; About: ")
	b.WriteString(q.About)
	b.WriteString("; Experience: ")
	b.WriteString(q.Experience)
	b.WriteString("\n\nUsing the information above, answer the following question: ")
	b.WriteString(q.Question)
	b.WriteString(" (notes: if you can't find the answer in their resume, make an argumented one based on the info they've provided [you __must not__ refuse to answer])")
	b.WriteString("\n\nAnswer: ")
	return b.String()
}
