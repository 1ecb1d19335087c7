package profile

// Weight is the score contributed by a populated field.
type Weight struct {
	Field  string
	Points float64
}

// ConfidenceWeights scores how completely a profile was extracted. Work
// history carries the most weight because renderers depend on it most.
//
//nolint:gochecknoglobals // lookup table
var ConfidenceWeights = []Weight{
	{Field: "name", Points: 0.25},
	{Field: "linkedin_url", Points: 0.15},
	{Field: "work_history", Points: 0.30},
	{Field: "skills", Points: 0.15},
	{Field: "education", Points: 0.15},
}

// Estimate returns a heuristic extraction confidence in [0, 1].
func Estimate(p Profile) (score float64) {
	for _, w := range ConfidenceWeights {
		if populated(p, w.Field) {
			score += w.Points
		}
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func populated(p Profile, field string) bool {
	switch field {
	case "name":
		return p.Name != ""
	case "email":
		return p.Email != ""
	case "linkedin_url":
		return p.LinkedInURL != ""
	case "work_history":
		return len(p.WorkHistory) > 0
	case "skills":
		return len(p.Skills) > 0
	case "education":
		return len(p.Education) > 0
	case "projects":
		return len(p.Projects) > 0
	}
	return false
}
