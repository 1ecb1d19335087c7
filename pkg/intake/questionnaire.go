package intake

import (
	"encoding/json"
	"strings"

	"github.com/nikogura/portfolio-forge/pkg/profile"
)

// Answers is a filled-in manual questionnaire.
type Answers struct {
	Name        string            `json:"name" yaml:"name"`
	Email       string            `json:"email" yaml:"email"`
	Phone       string            `json:"phone" yaml:"phone"`
	Location    string            `json:"location" yaml:"location"`
	LinkedInURL string            `json:"linkedin_url" yaml:"linkedin_url"`
	GitHub      string            `json:"github" yaml:"github"`
	Website     string            `json:"website" yaml:"website"`
	Jobs        []JobAnswer       `json:"jobs" yaml:"jobs"`
	Projects    []ProjectAnswer   `json:"projects" yaml:"projects"`
	Education   []EducationAnswer `json:"education" yaml:"education"`
	// Skills is a comma separated list.
	Skills string `json:"skills" yaml:"skills"`
}

// JobAnswer describes one position. Responsibilities is free text, one item per line.
type JobAnswer struct {
	Title            string `json:"title" yaml:"title"`
	Company          string `json:"company" yaml:"company"`
	Start            string `json:"start" yaml:"start"`
	End              string `json:"end" yaml:"end"`
	Responsibilities string `json:"responsibilities" yaml:"responsibilities"`
}

// ProjectAnswer describes one project. Technologies is comma separated.
type ProjectAnswer struct {
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description" yaml:"description"`
	Technologies string `json:"technologies" yaml:"technologies"`
	Link         string `json:"link" yaml:"link"`
}

// EducationAnswer describes one degree.
type EducationAnswer struct {
	Degree      string `json:"degree" yaml:"degree"`
	Institution string `json:"institution" yaml:"institution"`
	Year        string `json:"year" yaml:"year"`
}

// Questionnaire builds a profile from answers without calling a model.
func Questionnaire(answers Answers, opts ...Option) (result Result) {
	s := applyOptions(opts)

	doc := map[string]interface{}{
		"name":         answers.Name,
		"email":        answers.Email,
		"phone":        answers.Phone,
		"linkedin_url": answers.LinkedInURL,
		"skills":       splitList(answers.Skills),
		"contact_info": map[string]string{
			"location": answers.Location,
			"github":   answers.GitHub,
			"website":  answers.Website,
			"linkedin": answers.LinkedInURL,
		},
	}

	work := make([]map[string]interface{}, 0, len(answers.Jobs))
	for _, job := range answers.Jobs {
		work = append(work, map[string]interface{}{
			"title":   job.Title,
			"company": job.Company,
			"dates":   jobDates(job.Start, job.End),
			"bullets": splitBullets(job.Responsibilities),
		})
	}
	doc["work_history"] = work

	projects := make([]map[string]interface{}, 0, len(answers.Projects))
	for _, proj := range answers.Projects {
		projects = append(projects, map[string]interface{}{
			"name":         proj.Name,
			"description":  proj.Description,
			"technologies": splitList(proj.Technologies),
			"link":         proj.Link,
		})
	}
	doc["projects"] = projects

	education := make([]map[string]interface{}, 0, len(answers.Education))
	for _, edu := range answers.Education {
		education = append(education, map[string]interface{}{
			"degree":      edu.Degree,
			"institution": edu.Institution,
			"year":        edu.Year,
		})
	}
	doc["education"] = education

	// Marshalling plain maps of strings cannot fail.
	raw, _ := json.Marshal(doc)

	result = finish(profile.Validate(raw), summarizeAnswers(answers), profile.ProvenanceQuestionnaire, s.logger)
	return result
}

func jobDates(start, end string) string {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if start == "" {
		return end
	}
	if end == "" {
		end = "Present"
	}
	return start + " - " + end
}

// splitBullets turns free text into one bullet per line, stripping leading
// bullet glyphs.
func splitBullets(text string) (bullets []string) {
	bullets = []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•· ")
		line = strings.TrimSpace(line)
		if line != "" {
			bullets = append(bullets, line)
		}
	}
	return bullets
}

func splitList(text string) (items []string) {
	items = []string{}
	for _, item := range strings.Split(text, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func summarizeAnswers(answers Answers) string {
	var b strings.Builder
	b.WriteString(answers.Name)
	for _, job := range answers.Jobs {
		b.WriteString("\n")
		b.WriteString(job.Title)
		b.WriteString(" at ")
		b.WriteString(job.Company)
		if job.Responsibilities != "" {
			b.WriteString("\n")
			b.WriteString(job.Responsibilities)
		}
	}
	if answers.Skills != "" {
		b.WriteString("\nSkills: ")
		b.WriteString(answers.Skills)
	}
	return b.String()
}
