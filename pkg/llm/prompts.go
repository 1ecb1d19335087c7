package llm

import (
	"fmt"
	"strings"
)

// profileSchema is the JSON shape extraction prompts ask for.
const profileSchema = `{
  "name": "Full Name",
  "email": "email@example.com",
  "phone": "phone number or empty string",
  "linkedin_url": "LinkedIn profile URL or empty string",
  "work_history": [
    {"title": "Job Title", "company": "Company Name", "dates": "Start - End", "bullets": ["achievement"]}
  ],
  "skills": ["skill1", "skill2"],
  "education": [
    {"degree": "Degree", "institution": "School", "year": "Year"}
  ],
  "projects": [
    {"name": "Project", "description": "What it does", "technologies": ["tech"], "link": "URL or empty string"}
  ],
  "contact_info": {"github": "", "linkedin": "", "portfolio": "", "location": "", "website": ""}
}`

// ResumeExtractionPrompt instructs the model to turn résumé text into a profile.
const ResumeExtractionPrompt = `You are an expert résumé parser. Extract structured information from the résumé text provided by the user.

Return ONLY valid JSON in this exact format (no markdown, no commentary):
` + profileSchema + `

Rules:
- Use empty strings or empty lists for anything not present. Never invent data.
- List work history most recent first.
- Keep bullets concise and in the candidate's own words.
- Extract at most 50 skills.`

// ProfilePageExtractionPrompt instructs the model to turn profile page text into a profile.
const ProfilePageExtractionPrompt = `You are an expert at reading professional networking profiles. The user provides the visible text of a LinkedIn profile page.

Return ONLY valid JSON in this exact format (no markdown, no commentary):
` + profileSchema + `

Rules:
- Use empty strings or empty lists for anything not present. Never invent data.
- The email is often hidden on profile pages; leave it empty if not shown.
- Ignore navigation text, advertisements, and "People also viewed" sections.`

// PortfolioPrompt instructs the model to produce a single-file portfolio site.
const PortfolioPrompt = `You are an expert web designer. Create a complete, modern, single-page portfolio website for the candidate described by the user.

Requirements:
- Output a single self-contained HTML5 document starting with <!DOCTYPE html>.
- Inline all CSS in a <style> element. No external scripts or frameworks.
- Responsive layout with sections for About, Experience, Projects, Skills, and Contact.
- Use only facts from the candidate data. Never invent employers, dates, or metrics.

Return ONLY the HTML. No markdown fences, no explanations.`

// Tone is a cover letter voice.
type Tone string

const (
	ToneFormal    Tone = "formal"
	ToneFriendly  Tone = "friendly"
	ToneTechnical Tone = "technical"
)

// toneGuidance describes each supported tone.
//
//nolint:gochecknoglobals // lookup table
var toneGuidance = map[Tone]string{
	ToneFormal:    "Use a formal, professional tone with traditional business letter conventions.",
	ToneFriendly:  "Use a warm, personable tone while staying professional.",
	ToneTechnical: "Emphasize technical depth, concrete systems, and engineering impact.",
}

// buildCoverLetterPrompt creates the cover letter system prompt.
func buildCoverLetterPrompt(tone Tone) (prompt string) {
	prompt = fmt.Sprintf(`You are an expert career writer. Write a compelling cover letter for the candidate applying to the job described by the user.

%s

Rules:
- Three to four paragraphs, under 400 words.
- Reference specific requirements from the job description and match them to the candidate's real experience.
- Never invent experience, employers, or metrics.
- Do not include a date or mailing addresses. Start with the salutation and end with the sign-off and candidate name.`, toneGuidance[tone])
	return prompt
}

// buildCoverLetterContent creates the user content for a cover letter.
func buildCoverLetterContent(candidate, jobDescription string) (content string) {
	content = fmt.Sprintf("CANDIDATE:\n%s\n\nJOB DESCRIPTION:\n%s", candidate, jobDescription)
	return content
}

// buildInterviewPrompt creates the interview question system prompt.
func buildInterviewPrompt(kind InterviewKind, count int) (prompt string) {
	prompt = fmt.Sprintf(`You are an experienced hiring manager preparing a %s interview. Generate %d interview questions tailored to the candidate described by the user.

Return ONLY valid JSON in this format:
{"questions": [{"question": "text", "key_points": ["what a strong answer covers"], "mistakes": ["common mistake"]}]}`, kind, count)
	return prompt
}

// AnswerFeedbackPrompt asks for feedback on a practice interview answer.
const AnswerFeedbackPrompt = `You are an interview coach. Evaluate the candidate's answer to the interview question.

Give: a score out of 10, two or three strengths, two or three concrete improvements, and a short example of a stronger answer. Be direct and specific.`

// buildCoachPrompt creates the career coach system prompt.
func buildCoachPrompt(candidate string) (prompt string) {
	prompt = fmt.Sprintf(`You are a supportive, practical career coach. Answer the user's questions about their career, job search, and professional growth.

Ground your advice in the candidate's background:
%s

Keep answers focused and actionable.`, candidate)
	return prompt
}

// OptimizerPrompt asks for an ATS keyword analysis.
const OptimizerPrompt = `You are an applicant tracking system expert. Compare the candidate's résumé data against the job description.

Return ONLY valid JSON in this format:
{"score": 0-100, "strengths": ["..."], "missing_keywords": ["..."], "suggestions": ["..."]}`

// buildOptimizerContent creates the user content for the optimizer.
func buildOptimizerContent(candidate, jobDescription string) (content string) {
	var b strings.Builder
	b.WriteString("RÉSUMÉ DATA:\n")
	b.WriteString(candidate)
	b.WriteString("\n\nJOB DESCRIPTION:\n")
	b.WriteString(jobDescription)
	content = b.String()
	return content
}
