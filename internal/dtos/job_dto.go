package dtos

import "time"

// Page is the list envelope used by every paginated endpoint.
type Page[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

type JobSearchParams struct {
	Query     string
	Location  string
	JobType   string
	Remote    bool
	SalaryMin int
	Page      int
	PageSize  int
}

type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	JobType     string    `json:"jobType"`
	Remote      bool      `json:"remote"`
	SalaryMin   *int      `json:"salaryMin,omitempty"`
	SalaryMax   *int      `json:"salaryMax,omitempty"`
	Currency    string    `json:"currency"`
	Description string    `json:"description"` // may contain HTML
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Skills      []string  `json:"skills"`
	MatchScore  float64   `json:"matchScore"`
	PostedAt    time.Time `json:"postedAt"`
}

type ApplyRequest struct {
	JobID       string `json:"jobId"`
	DocumentID  string `json:"documentId,omitempty"`
	CoverLetter string `json:"coverLetter,omitempty"`
}

type Application struct {
	ID        string    `json:"id"`
	JobID     string    `json:"jobId"`
	Job       *Job      `json:"job,omitempty"`
	Status    string    `json:"status"` // applied, interview, offer, rejected, withdrawn
	Notes     string    `json:"notes"`
	AppliedAt time.Time `json:"appliedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ApplicationUpdate struct {
	Status string `json:"status,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type JobSource struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Enabled   bool       `json:"enabled"`
	JobsFound int        `json:"jobsFound"`
	LastRunAt *time.Time `json:"lastRunAt,omitempty"`
}

type SourceHealth struct {
	Source    string    `json:"source"`
	Status    string    `json:"status"` // healthy, degraded, down
	LatencyMs int       `json:"latencyMs"`
	LastError string    `json:"lastError,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}
