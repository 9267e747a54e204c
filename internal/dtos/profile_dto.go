package dtos

import "time"

type Profile struct {
	ID                 string    `json:"id"`
	FullName           string    `json:"fullName"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	Location           string    `json:"location"`
	LinkedInURL        string    `json:"linkedinUrl"`
	GitHubURL          string    `json:"githubUrl"`
	PortfolioURL       string    `json:"portfolioUrl"`
	CurrentTitle       string    `json:"currentTitle"`
	YearsOfExperience  string    `json:"yearsOfExperience"`
	Skills             []string  `json:"skills"`
	DesiredJobTitles   []string  `json:"desiredJobTitles"`
	JobType            []string  `json:"jobType"`
	PreferredLocations []string  `json:"preferredLocations"`
	SalaryRange        string    `json:"salaryRange"`
	ResumeURL          string    `json:"resumeUrl"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ProfileUpdate is the body of PUT /profile. The onboarding wizard sends it once on completion.
type ProfileUpdate struct {
	FullName           string   `json:"fullName"`
	Phone              string   `json:"phone"`
	Location           string   `json:"location"`
	LinkedInURL        string   `json:"linkedinUrl,omitempty"`
	GitHubURL          string   `json:"githubUrl,omitempty"`
	PortfolioURL       string   `json:"portfolioUrl,omitempty"`
	CurrentTitle       string   `json:"currentTitle,omitempty"`
	YearsOfExperience  string   `json:"yearsOfExperience"`
	Skills             []string `json:"skills"`
	DesiredJobTitles   []string `json:"desiredJobTitles"`
	JobType            []string `json:"jobType"`
	PreferredLocations []string `json:"preferredLocations"`
	SalaryRange        string   `json:"salaryRange,omitempty"`
	ResumeURL          string   `json:"resumeUrl,omitempty"`
}

// ResumeParseResult is what POST /profile/resume extracts from an uploaded resume.
type ResumeParseResult struct {
	ResumeURL         string   `json:"resumeUrl"`
	FullName          string   `json:"fullName"`
	Email             string   `json:"email"`
	Phone             string   `json:"phone"`
	Location          string   `json:"location"`
	LinkedInURL       string   `json:"linkedinUrl"`
	GitHubURL         string   `json:"githubUrl"`
	CurrentTitle      string   `json:"currentTitle"`
	YearsOfExperience string   `json:"yearsOfExperience"`
	Skills            []string `json:"skills"`
}

type Settings struct {
	EmailNotifications bool   `json:"emailNotifications"`
	JobAlerts          bool   `json:"jobAlerts"`
	AlertFrequency     string `json:"alertFrequency"` // daily, weekly, instant
	Timezone           string `json:"timezone"`
	Currency           string `json:"currency"`
}

type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"` // resume, cover_letter, other
	MimeType   string    `json:"mimeType"`
	Size       int64     `json:"size"`
	IsPrimary  bool      `json:"isPrimary"`
	UploadedAt time.Time `json:"uploadedAt"`
}
