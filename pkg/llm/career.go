package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nikogura/portfolio-forge/pkg/profile"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const (
	MinJobDescriptionLength = 50
	MaxJobDescriptionLength = 5000
	MinInterviewQuestions   = 3
	MaxInterviewQuestions   = 10
	// CoachHistoryTurns is how many prior turns the coach sees.
	CoachHistoryTurns = 6
)

// InterviewKind selects the flavor of interview questions.
type InterviewKind string

const (
	InterviewTechnical    InterviewKind = "technical"
	InterviewBehavioral   InterviewKind = "behavioral"
	InterviewSystemDesign InterviewKind = "system design"
	InterviewMixed        InterviewKind = "mixed"
)

// InterviewQuestion is one generated practice question.
type InterviewQuestion struct {
	Question  string   `json:"question"`
	KeyPoints []string `json:"key_points"`
	Mistakes  []string `json:"mistakes"`
}

// Turn is one message in a coaching conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Optimization is an ATS keyword analysis against a job description.
type Optimization struct {
	Score           int      `json:"score"`
	Strengths       []string `json:"strengths"`
	MissingKeywords []string `json:"missing_keywords"`
	Suggestions     []string `json:"suggestions"`
}

// Career provides the job-search helpers built on a Generator.
type Career struct {
	gen Generator
}

// NewCareer creates career helpers backed by gen.
func NewCareer(gen Generator) (career *Career) {
	career = &Career{gen: gen}
	return career
}

// CoverLetter writes a cover letter for the profile and job description.
func (c *Career) CoverLetter(ctx context.Context, p profile.Profile, jobDescription string, tone Tone) (letter string, err error) {
	err = checkJobDescription(jobDescription)
	if err != nil {
		return letter, err
	}

	if _, ok := toneGuidance[tone]; !ok {
		err = errors.Errorf("unsupported tone %q (use formal, friendly, or technical)", tone)
		return letter, err
	}

	var resp Response
	resp, err = c.gen.Generate(ctx, Request{
		System:      buildCoverLetterPrompt(tone),
		Content:     buildCoverLetterContent(profile.Format(p), jobDescription),
		Model:       ModelQuality,
		Temperature: 0.7,
		MaxTokens:   800,
	})
	if err != nil {
		err = errors.Wrap(err, "cover letter generation failed")
		return letter, err
	}

	letter = strings.TrimSpace(resp.Text)
	return letter, err
}

// InterviewQuestions generates n practice questions of the given kind.
func (c *Career) InterviewQuestions(ctx context.Context, p profile.Profile, kind InterviewKind, n int) (questions []InterviewQuestion, err error) {
	if n < MinInterviewQuestions || n > MaxInterviewQuestions {
		err = errors.Errorf("question count must be between %d and %d", MinInterviewQuestions, MaxInterviewQuestions)
		return questions, err
	}

	switch kind {
	case InterviewTechnical, InterviewBehavioral, InterviewSystemDesign, InterviewMixed:
	default:
		err = errors.Errorf("unsupported interview type %q", kind)
		return questions, err
	}

	var resp Response
	resp, err = c.gen.Generate(ctx, Request{
		System:      buildInterviewPrompt(kind, n),
		Content:     profile.Format(p),
		Model:       ModelQuality,
		Temperature: 0.7,
		MaxTokens:   2000,
		ForceJSON:   true,
	})
	if err != nil {
		err = errors.Wrap(err, "interview question generation failed")
		return questions, err
	}

	questions, err = parseQuestions(resp.Text)
	return questions, err
}

// parseQuestions accepts a bare array, {"questions": [...]} or {"data": [...]}.
func parseQuestions(text string) (questions []InterviewQuestion, err error) {
	data, ok := ExtractJSON(text)
	if !ok {
		err = errors.New("no JSON found in interview response")
		return questions, err
	}

	doc := gjson.ParseBytes(data)
	list := doc
	if !doc.IsArray() {
		list = doc.Get("questions")
		if !list.IsArray() {
			list = doc.Get("data")
		}
	}

	if !list.IsArray() {
		err = errors.New("interview response has no question list")
		return questions, err
	}

	list.ForEach(func(_, item gjson.Result) bool {
		var q InterviewQuestion
		if item.Type == gjson.String {
			q.Question = item.String()
		} else {
			q.Question = item.Get("question").String()
			q.KeyPoints = gjsonStrings(item.Get("key_points"))
			q.Mistakes = gjsonStrings(item.Get("mistakes"))
		}
		if strings.TrimSpace(q.Question) != "" {
			questions = append(questions, q)
		}
		return true
	})

	if len(questions) == 0 {
		err = errors.New("interview response contained no questions")
	}
	return questions, err
}

// AnswerFeedback critiques a practice answer.
func (c *Career) AnswerFeedback(ctx context.Context, question, answer string) (feedback string, err error) {
	if strings.TrimSpace(answer) == "" {
		err = errors.New("answer is empty")
		return feedback, err
	}

	var resp Response
	resp, err = c.gen.Generate(ctx, Request{
		System:      AnswerFeedbackPrompt,
		Content:     fmt.Sprintf("QUESTION:\n%s\n\nANSWER:\n%s", question, answer),
		Model:       ModelQuality,
		Temperature: 0.5,
		MaxTokens:   800,
	})
	if err != nil {
		err = errors.Wrap(err, "answer feedback failed")
		return feedback, err
	}

	feedback = strings.TrimSpace(resp.Text)
	return feedback, err
}

// Coach answers message in the context of the last few turns of history.
func (c *Career) Coach(ctx context.Context, p profile.Profile, history []Turn, message string) (reply string, err error) {
	if strings.TrimSpace(message) == "" {
		err = errors.New("message is empty")
		return reply, err
	}

	if len(history) > CoachHistoryTurns {
		history = history[len(history)-CoachHistoryTurns:]
	}

	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("Previous conversation:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turnLabel(turn.Role), turn.Content)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "User: %s", message)

	var resp Response
	resp, err = c.gen.Generate(ctx, Request{
		System:      buildCoachPrompt(profile.Format(p)),
		Content:     b.String(),
		Model:       ModelQuality,
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		err = errors.Wrap(err, "coach request failed")
		return reply, err
	}

	reply = strings.TrimSpace(resp.Text)
	return reply, err
}

func turnLabel(role string) string {
	if role == "assistant" {
		return "Coach"
	}
	return "User"
}

// Optimize scores the profile against a job description.
func (c *Career) Optimize(ctx context.Context, p profile.Profile, jobDescription string) (result Optimization, err error) {
	err = checkJobDescription(jobDescription)
	if err != nil {
		return result, err
	}

	var resp Response
	resp, err = c.gen.Generate(ctx, Request{
		System:      OptimizerPrompt,
		Content:     buildOptimizerContent(profile.Format(p), jobDescription),
		Model:       ModelQuality,
		Temperature: 0.3,
		MaxTokens:   1500,
		ForceJSON:   true,
	})
	if err != nil {
		err = errors.Wrap(err, "optimization request failed")
		return result, err
	}

	data, ok := ExtractJSON(resp.Text)
	if !ok {
		err = errors.New("no JSON found in optimizer response")
		return result, err
	}

	doc := gjson.ParseBytes(data)
	result = Optimization{
		Score:           clampScore(int(doc.Get("score").Int())),
		Strengths:       gjsonStrings(doc.Get("strengths")),
		MissingKeywords: gjsonStrings(doc.Get("missing_keywords")),
		Suggestions:     gjsonStrings(doc.Get("suggestions")),
	}
	return result, err
}

func checkJobDescription(jd string) (err error) {
	length := utf8.RuneCountInString(strings.TrimSpace(jd))
	if length < MinJobDescriptionLength || length > MaxJobDescriptionLength {
		err = errors.Errorf("job description must be between %d and %d characters (got %d)",
			MinJobDescriptionLength, MaxJobDescriptionLength, length)
	}
	return err
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func gjsonStrings(value gjson.Result) (list []string) {
	list = []string{}
	value.ForEach(func(_, item gjson.Result) bool {
		if s := strings.TrimSpace(item.String()); s != "" {
			list = append(list, s)
		}
		return true
	})
	return list
}
