package onboarding

import (
	"strings"

	"github.com/justsurfingit/job-tracker-client/internal/dtos"
)

type FillMethod string

const (
	MethodUnset  FillMethod = ""
	MethodUpload FillMethod = "upload"
	MethodManual FillMethod = "manual"
)

// Defaults sent for list fields the user left empty.
var (
	DefaultJobTitles = []string{"General"}
	DefaultJobTypes  = []string{"Full-time"}
	DefaultLocations = []string{"Remote"}
)

type ResumeFile struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	URL      string `json:"url,omitempty"` // set once the backend has stored it
}

type Personal struct {
	FullName     string `json:"fullName" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	Location     string `json:"location" validate:"required"`
	LinkedInURL  string `json:"linkedinUrl"`
	GitHubURL    string `json:"githubUrl"`
	PortfolioURL string `json:"portfolioUrl"`
}

type Professional struct {
	CurrentTitle      string   `json:"currentTitle"`
	YearsOfExperience string   `json:"yearsOfExperience" validate:"required"`
	Skills            []string `json:"skills"`
}

type Preferences struct {
	DesiredJobTitles   []string `json:"desiredJobTitles" validate:"min=1,dive,required"`
	JobTypes           []string `json:"jobType" validate:"min=1,dive,required"`
	PreferredLocations []string `json:"preferredLocations"`
	SalaryRange        string   `json:"salaryRange"`
}

// Draft is the onboarding record held while the wizard runs.
type Draft struct {
	Resume       *ResumeFile  `json:"resume,omitempty"`
	FillMethod   FillMethod   `json:"fillMethod"`
	Personal     Personal     `json:"personal"`
	Professional Professional `json:"professional"`
	Preferences  Preferences  `json:"preferences"`
}

// Clone returns a deep copy so callers cannot mutate wizard state.
func (d Draft) Clone() Draft {
	out := d
	if d.Resume != nil {
		r := *d.Resume
		out.Resume = &r
	}
	out.Professional.Skills = cloneStrings(d.Professional.Skills)
	out.Preferences.DesiredJobTitles = cloneStrings(d.Preferences.DesiredJobTitles)
	out.Preferences.JobTypes = cloneStrings(d.Preferences.JobTypes)
	out.Preferences.PreferredLocations = cloneStrings(d.Preferences.PreferredLocations)
	return out
}

func (d *Draft) normalize() {
	p := &d.Personal
	p.FullName = strings.TrimSpace(p.FullName)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Location = strings.TrimSpace(p.Location)
	p.LinkedInURL = strings.TrimSpace(p.LinkedInURL)
	p.GitHubURL = strings.TrimSpace(p.GitHubURL)
	p.PortfolioURL = strings.TrimSpace(p.PortfolioURL)

	d.Professional.CurrentTitle = strings.TrimSpace(d.Professional.CurrentTitle)
	d.Professional.YearsOfExperience = strings.TrimSpace(d.Professional.YearsOfExperience)
	d.Professional.Skills = uniqueFold(d.Professional.Skills)

	// titles and locations are ordered lists, job types a set; all drop blanks and repeats
	d.Preferences.DesiredJobTitles = uniqueFold(d.Preferences.DesiredJobTitles)
	d.Preferences.JobTypes = uniqueFold(d.Preferences.JobTypes)
	d.Preferences.PreferredLocations = uniqueFold(d.Preferences.PreferredLocations)
	d.Preferences.SalaryRange = strings.TrimSpace(d.Preferences.SalaryRange)
}

// applyParsed fills empty draft fields from a parse result. Fields the user
// already typed are left alone.
func (d *Draft) applyParsed(res *dtos.ResumeParseResult) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = strings.TrimSpace(v)
		}
	}
	fill(&d.Personal.FullName, res.FullName)
	fill(&d.Personal.Phone, res.Phone)
	fill(&d.Personal.Location, res.Location)
	fill(&d.Personal.LinkedInURL, res.LinkedInURL)
	fill(&d.Personal.GitHubURL, res.GitHubURL)
	fill(&d.Professional.CurrentTitle, res.CurrentTitle)
	fill(&d.Professional.YearsOfExperience, res.YearsOfExperience)
	if len(d.Professional.Skills) == 0 {
		d.Professional.Skills = cloneStrings(res.Skills)
	}
	if d.Resume != nil && res.ResumeURL != "" {
		d.Resume.URL = res.ResumeURL
	}
	d.normalize()
}

// BuildUpdate turns a draft into the single profile update sent on
// completion, substituting defaults for empty list fields.
func BuildUpdate(d Draft) dtos.ProfileUpdate {
	d = d.Clone()
	d.normalize()

	update := dtos.ProfileUpdate{
		FullName:           d.Personal.FullName,
		Phone:              d.Personal.Phone,
		Location:           d.Personal.Location,
		LinkedInURL:        d.Personal.LinkedInURL,
		GitHubURL:          d.Personal.GitHubURL,
		PortfolioURL:       d.Personal.PortfolioURL,
		CurrentTitle:       d.Professional.CurrentTitle,
		YearsOfExperience:  d.Professional.YearsOfExperience,
		Skills:             orDefault(d.Professional.Skills, []string{}),
		DesiredJobTitles:   orDefault(d.Preferences.DesiredJobTitles, DefaultJobTitles),
		JobType:            orDefault(d.Preferences.JobTypes, DefaultJobTypes),
		PreferredLocations: orDefault(d.Preferences.PreferredLocations, DefaultLocations),
		SalaryRange:        d.Preferences.SalaryRange,
	}
	if d.Resume != nil {
		update.ResumeURL = d.Resume.URL
	}
	return update
}

func orDefault(values, def []string) []string {
	if len(values) == 0 {
		return cloneStrings(def)
	}
	return values
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// uniqueFold trims entries and drops blanks and case-insensitive repeats,
// keeping first-seen order.
func uniqueFold(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
