package profile

import (
	"fmt"
	"strings"
)

// Format renders a profile as plain structured text for use as prompt content.
func Format(p Profile) (text string) {
	var b strings.Builder

	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	if p.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", p.Email)
	}
	if p.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", p.Phone)
	}
	if p.LinkedInURL != "" {
		fmt.Fprintf(&b, "LinkedIn: %s\n", p.LinkedInURL)
	}
	if loc := p.Location(); loc != "" {
		fmt.Fprintf(&b, "Location: %s\n", loc)
	}
	if gh := p.GitHub(); gh != "" {
		fmt.Fprintf(&b, "GitHub: %s\n", gh)
	}

	if len(p.WorkHistory) > 0 {
		b.WriteString("\nWork Experience:\n")
		for _, job := range p.WorkHistory {
			fmt.Fprintf(&b, "- %s at %s", job.Title, job.Company)
			if job.Dates != "" {
				fmt.Fprintf(&b, " (%s)", job.Dates)
			}
			b.WriteString("\n")
			for _, bullet := range job.Bullets {
				fmt.Fprintf(&b, "  * %s\n", bullet)
			}
		}
	}

	if len(p.Skills) > 0 {
		fmt.Fprintf(&b, "\nSkills: %s\n", strings.Join(p.Skills, ", "))
	}

	if len(p.Projects) > 0 {
		b.WriteString("\nProjects:\n")
		for _, proj := range p.Projects {
			fmt.Fprintf(&b, "- %s", proj.Name)
			if proj.Description != "" {
				fmt.Fprintf(&b, ": %s", proj.Description)
			}
			b.WriteString("\n")
			if len(proj.Technologies) > 0 {
				fmt.Fprintf(&b, "  Technologies: %s\n", strings.Join(proj.Technologies, ", "))
			}
		}
	}

	if len(p.Education) > 0 {
		b.WriteString("\nEducation:\n")
		for _, edu := range p.Education {
			fmt.Fprintf(&b, "- %s, %s", edu.Degree, edu.Institution)
			if edu.Year != "" {
				fmt.Fprintf(&b, " (%s)", edu.Year)
			}
			b.WriteString("\n")
		}
	}

	text = b.String()
	return text
}
