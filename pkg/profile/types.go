package profile

// Provenance records which intake path produced a profile.
type Provenance string

const (
	ProvenancePDF            Provenance = "pdf"
	ProvenanceDOCX           Provenance = "docx"
	ProvenanceLinkedIn       Provenance = "linkedin"
	ProvenanceLinkedInManual Provenance = "linkedin_manual"
	ProvenanceQuestionnaire  Provenance = "questionnaire"
	ProvenanceFile           Provenance = "file"
)

// Profile is the canonical candidate record consumed by every renderer.
type Profile struct {
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Phone       string           `json:"phone,omitempty"`
	LinkedInURL string           `json:"linkedin_url,omitempty"`
	WorkHistory []WorkEntry      `json:"work_history"`
	Skills      []string         `json:"skills"`
	Education   []EducationEntry `json:"education"`
	Projects    []ProjectEntry   `json:"projects"`
	ContactInfo *ContactInfo     `json:"contact_info,omitempty"`
	Metadata    Metadata         `json:"metadata"`
}

// WorkEntry is one position held.
type WorkEntry struct {
	Title   string   `json:"title"`
	Company string   `json:"company"`
	Dates   string   `json:"dates,omitempty"`
	Bullets []string `json:"bullets"`
}

// EducationEntry is one degree or certification.
type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year,omitempty"`
}

// ProjectEntry is a notable project.
type ProjectEntry struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies"`
	Link         string   `json:"link,omitempty"`
}

// ContactInfo holds optional secondary contact channels.
type ContactInfo struct {
	GitHub    string `json:"github,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
	Location  string `json:"location,omitempty"`
	Website   string `json:"website,omitempty"`
}

// Metadata describes where a profile came from and how much to trust it.
type Metadata struct {
	SourceText string     `json:"source_text,omitempty"`
	Confidence float64    `json:"confidence"`
	Provenance Provenance `json:"provenance,omitempty"`
}

// Location returns the candidate's location, or "" when unknown.
func (p Profile) Location() (location string) {
	if p.ContactInfo != nil {
		location = p.ContactInfo.Location
	}
	return location
}

// GitHub returns the candidate's GitHub handle or URL, or "" when unknown.
func (p Profile) GitHub() (github string) {
	if p.ContactInfo != nil {
		github = p.ContactInfo.GitHub
	}
	return github
}

// CurrentTitle returns the title of the most recent position.
func (p Profile) CurrentTitle() (title string) {
	if len(p.WorkHistory) > 0 {
		title = p.WorkHistory[0].Title
	}
	return title
}
