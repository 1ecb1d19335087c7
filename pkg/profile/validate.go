package profile

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"
)

const (
	MaxNameLength   = 100
	MaxPhoneLength  = 50
	MaxSkills       = 50
	MaxBullets      = 10
	MaxTechnologies = 20
)

// Violation is a single field-level schema problem.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaError lists every violation found in a raw profile document.
type SchemaError struct {
	Violations []Violation `json:"violations"`
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "profile validation failed: " + strings.Join(parts, "; ")
}

func (e *SchemaError) add(field, message string) {
	e.Violations = append(e.Violations, Violation{Field: field, Message: message})
}

// Result is the outcome of validating a raw profile document. Profile always
// holds the best available canonical data, even when Err is set.
type Result struct {
	Profile Profile
	Err     *SchemaError
	Raw     []byte
}

// Valid reports whether the document passed validation.
func (r Result) Valid() bool {
	return r.Err == nil
}

// Strict returns the profile, or the schema error when validation failed.
func (r Result) Strict() (p Profile, err error) {
	p = r.Profile
	if r.Err != nil {
		err = r.Err
	}
	return p, err
}

// Validate normalizes a loosely typed profile document into a Profile and
// collects every schema violation it finds. It never fails outright.
func Validate(raw []byte) (result Result) {
	result.Raw = raw
	schemaErr := &SchemaError{}

	p := Profile{
		WorkHistory: []WorkEntry{},
		Skills:      []string{},
		Education:   []EducationEntry{},
		Projects:    []ProjectEntry{},
	}

	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		schemaErr.add("$", "document is not a JSON object")
		result.Profile = p
		result.Err = schemaErr
		return result
	}

	doc := gjson.ParseBytes(raw)

	p.Name = strings.TrimSpace(doc.Get("name").String())
	switch {
	case p.Name == "":
		schemaErr.add("name", "is required")
	case utf8.RuneCountInString(p.Name) > MaxNameLength:
		schemaErr.add("name", fmt.Sprintf("must be at most %d characters", MaxNameLength))
	}

	p.Email = strings.TrimSpace(doc.Get("email").String())
	if err := checkEmail(p.Email); err != nil {
		schemaErr.add("email", err.Error())
	}

	p.Phone = strings.TrimSpace(doc.Get("phone").String())
	if utf8.RuneCountInString(p.Phone) > MaxPhoneLength {
		schemaErr.add("phone", fmt.Sprintf("must be at most %d characters", MaxPhoneLength))
	}

	p.LinkedInURL = strings.TrimSpace(doc.Get("linkedin_url").String())

	doc.Get("work_history").ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		entry := WorkEntry{
			Title:   strings.TrimSpace(item.Get("title").String()),
			Company: strings.TrimSpace(item.Get("company").String()),
			Dates:   strings.TrimSpace(item.Get("dates").String()),
			Bullets: capList(stringList(item.Get("bullets")), MaxBullets),
		}
		if entry.Title == "" && entry.Company == "" {
			return true
		}
		p.WorkHistory = append(p.WorkHistory, entry)
		return true
	})

	p.Skills = capList(dedupFold(stringList(doc.Get("skills"))), MaxSkills)

	doc.Get("education").ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		entry := EducationEntry{
			Degree:      strings.TrimSpace(item.Get("degree").String()),
			Institution: strings.TrimSpace(item.Get("institution").String()),
			Year:        strings.TrimSpace(item.Get("year").String()),
		}
		if entry.Degree == "" && entry.Institution == "" {
			return true
		}
		p.Education = append(p.Education, entry)
		return true
	})

	doc.Get("projects").ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		entry := ProjectEntry{
			Name:         strings.TrimSpace(item.Get("name").String()),
			Description:  strings.TrimSpace(item.Get("description").String()),
			Technologies: capList(stringList(item.Get("technologies")), MaxTechnologies),
			Link:         normalizeLink(item.Get("link").String()),
		}
		if entry.Name == "" {
			return true
		}
		p.Projects = append(p.Projects, entry)
		return true
	})

	if ci := doc.Get("contact_info"); ci.IsObject() {
		info := ContactInfo{
			GitHub:    strings.TrimSpace(ci.Get("github").String()),
			LinkedIn:  strings.TrimSpace(ci.Get("linkedin").String()),
			Portfolio: strings.TrimSpace(ci.Get("portfolio").String()),
			Location:  strings.TrimSpace(ci.Get("location").String()),
			Website:   strings.TrimSpace(ci.Get("website").String()),
		}
		if info != (ContactInfo{}) {
			p.ContactInfo = &info
		}
	}

	result.Profile = p
	if len(schemaErr.Violations) > 0 {
		result.Err = schemaErr
	}
	return result
}

func checkEmail(email string) (err error) {
	if email == "" {
		err = errors.New("is required")
		return err
	}
	addr, parseErr := mail.ParseAddress(email)
	if parseErr != nil || addr.Address != email {
		err = errors.New("is not a valid email address")
		return err
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		err = errors.New("domain is not valid")
		return err
	}
	return err
}

// stringList reads either an array of scalars or a single string.
func stringList(value gjson.Result) (list []string) {
	list = []string{}
	switch {
	case value.IsArray():
		value.ForEach(func(_, item gjson.Result) bool {
			if item.IsObject() || item.IsArray() {
				return true
			}
			if s := strings.TrimSpace(item.String()); s != "" {
				list = append(list, s)
			}
			return true
		})
	case value.Type == gjson.String:
		if s := strings.TrimSpace(value.String()); s != "" {
			list = append(list, s)
		}
	}
	return list
}

func dedupFold(items []string) (out []string) {
	folder := cases.Fold()
	seen := make(map[string]struct{}, len(items))
	out = make([]string, 0, len(items))
	for _, item := range items {
		key := folder.String(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func capList(items []string, limit int) []string {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

func normalizeLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		link = "https://" + link
	}
	return link
}
