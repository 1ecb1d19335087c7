package profile

import (
	"math"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateValidDocument(t *testing.T) {
	raw := []byte(`{
		"name": "  Ada Lovelace ",
		"email": "ada@example.com",
		"phone": 5551234,
		"work_history": [
			{"title": "Engineer", "company": "Analytical Engines", "dates": "1842 - 1843", "bullets": ["Wrote notes", "", "  Published algorithm  "]}
		],
		"skills": ["Go", "go", " Python ", "", "GO"],
		"education": [{"degree": "Mathematics", "institution": "Home", "year": 1835}],
		"projects": [{"name": "Note G", "technologies": "Punch cards", "link": "example.com/noteg"}],
		"unknown_field": {"ignored": true}
	}`)

	result := Validate(raw)
	if !result.Valid() {
		t.Fatalf("Expected valid result, got %v", result.Err)
	}

	p := result.Profile
	if p.Name != "Ada Lovelace" {
		t.Errorf("Expected name 'Ada Lovelace', got '%s'", p.Name)
	}

	if p.Phone != "5551234" {
		t.Errorf("Expected phone '5551234', got '%s'", p.Phone)
	}

	if len(p.Skills) != 2 || p.Skills[0] != "Go" || p.Skills[1] != "Python" {
		t.Errorf("Expected skills [Go Python], got %v", p.Skills)
	}

	if len(p.WorkHistory) != 1 {
		t.Fatalf("Expected 1 work entry, got %d", len(p.WorkHistory))
	}

	bullets := p.WorkHistory[0].Bullets
	if len(bullets) != 2 || bullets[1] != "Published algorithm" {
		t.Errorf("Expected trimmed non-empty bullets, got %v", bullets)
	}

	if p.Education[0].Year != "1835" {
		t.Errorf("Expected year '1835', got '%s'", p.Education[0].Year)
	}

	proj := p.Projects[0]
	if proj.Link != "https://example.com/noteg" {
		t.Errorf("Expected link to gain https scheme, got '%s'", proj.Link)
	}

	if len(proj.Technologies) != 1 || proj.Technologies[0] != "Punch cards" {
		t.Errorf("Expected single string technologies to become a list, got %v", proj.Technologies)
	}

	if p.ContactInfo != nil {
		t.Errorf("Expected nil contact info, got %+v", p.ContactInfo)
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	raw := []byte(`{"name": "", "email": "not-an-email", "phone": "` + strings.Repeat("9", 60) + `"}`)

	result := Validate(raw)
	if result.Valid() {
		t.Fatal("Expected validation failure")
	}

	fields := map[string]bool{}
	for _, v := range result.Err.Violations {
		fields[v.Field] = true
	}

	for _, want := range []string{"name", "email", "phone"} {
		if !fields[want] {
			t.Errorf("Expected violation for %s, got %v", want, result.Err.Violations)
		}
	}

	// Best-available data survives a failed validation.
	if result.Profile.Email != "not-an-email" {
		t.Errorf("Expected raw email kept, got '%s'", result.Profile.Email)
	}

	if string(result.Raw) != string(raw) {
		t.Error("Expected raw document to be preserved")
	}

	if _, err := result.Strict(); err == nil {
		t.Error("Expected Strict to return an error")
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"jane@example.com", true},
		{"jane.doe+tag@mail.example.org", true},
		{"jane@localhost", false},
		{"Jane <jane@example.com>", false},
		{"jane@", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := checkEmail(tt.email)
			if (err == nil) != tt.valid {
				t.Errorf("checkEmail(%q) error = %v, want valid=%v", tt.email, err, tt.valid)
			}
		})
	}
}

func TestValidateNonObject(t *testing.T) {
	for _, raw := range []string{`not json`, `[1,2]`, `"text"`} {
		result := Validate([]byte(raw))
		if result.Valid() {
			t.Errorf("Expected %q to fail validation", raw)
		}
		if result.Profile.Skills == nil || result.Profile.WorkHistory == nil {
			t.Errorf("Expected non-nil empty lists for %q", raw)
		}
	}
}

func TestValidateLimits(t *testing.T) {
	skills := make([]string, 0, 60)
	for i := 0; i < 60; i++ {
		skills = append(skills, `"skill-`+strings.Repeat("x", i+1)+`"`)
	}
	bullets := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		bullets = append(bullets, `"bullet"`)
	}

	raw := []byte(`{"name":"A","email":"a@b.co","skills":[` + strings.Join(skills, ",") +
		`],"work_history":[{"title":"T","company":"C","bullets":[` + strings.Join(bullets, ",") + `]}]}`)

	p := Validate(raw).Profile
	if len(p.Skills) != MaxSkills {
		t.Errorf("Expected %d skills, got %d", MaxSkills, len(p.Skills))
	}

	if len(p.WorkHistory[0].Bullets) != MaxBullets {
		t.Errorf("Expected %d bullets, got %d", MaxBullets, len(p.WorkHistory[0].Bullets))
	}
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    float64
	}{
		{"empty", Profile{}, 0},
		{"name only", Profile{Name: "A"}, 0.25},
		{"name and work", Profile{Name: "A", WorkHistory: []WorkEntry{{Title: "T"}}}, 0.55},
		{
			"complete",
			Profile{
				Name:        "A",
				LinkedInURL: "https://linkedin.com/in/a",
				WorkHistory: []WorkEntry{{Title: "T"}},
				Skills:      []string{"Go"},
				Education:   []EducationEntry{{Degree: "BS"}},
			},
			1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Estimate(tt.profile)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Expected %.2f, got %.2f", tt.want, got)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles", "jane.json")

	p := Validate([]byte(`{"name":"Jane Doe","email":"jane@example.com","skills":["Go"]}`)).Profile
	p.Metadata.Provenance = ProvenancePDF

	err := Save(path, p)
	if err != nil {
		t.Fatalf("Failed to save profile: %v", err)
	}

	result, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load profile: %v", err)
	}

	if result.Profile.Name != "Jane Doe" {
		t.Errorf("Expected name 'Jane Doe', got '%s'", result.Profile.Name)
	}

	if result.Profile.Metadata.Provenance != ProvenancePDF {
		t.Errorf("Expected provenance pdf, got '%s'", result.Profile.Metadata.Provenance)
	}

	if math.Abs(result.Profile.Metadata.Confidence-0.40) > 1e-9 {
		t.Errorf("Expected confidence 0.40, got %.2f", result.Profile.Metadata.Confidence)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestFormat(t *testing.T) {
	p := Profile{
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		WorkHistory: []WorkEntry{{Title: "Engineer", Company: "Acme", Dates: "2020 - 2024", Bullets: []string{"Shipped"}}},
		Skills:      []string{"Go", "SQL"},
	}

	text := Format(p)
	for _, want := range []string{"Name: Jane Doe", "- Engineer at Acme (2020 - 2024)", "  * Shipped", "Skills: Go, SQL"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected formatted text to contain %q, got:\n%s", want, text)
		}
	}

	if strings.Contains(text, "Education:") {
		t.Error("Expected no education section for empty education")
	}
}
