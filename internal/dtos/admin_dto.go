package dtos

import "time"

type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

type RetentionCohort struct {
	Label    string `json:"label"`
	Size     int    `json:"size"`
	Retained int    `json:"retained"`
}

type Analytics struct {
	TotalUsers          int               `json:"totalUsers"`
	ActiveUsers         int               `json:"activeUsers"`
	PreviousActiveUsers int               `json:"previousActiveUsers"`
	TotalApplications   int               `json:"totalApplications"`
	Signups             []DailyCount      `json:"signups"`
	Applications        []DailyCount      `json:"applications"`
	Retention           []RetentionCohort `json:"retention"`
}

type AdminUser struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastActiveAt *time.Time `json:"lastActiveAt,omitempty"`
}

type AdminSession struct {
	ID         string    `json:"id"`
	UserEmail  string    `json:"userEmail"`
	IPAddress  string    `json:"ipAddress"`
	UserAgent  string    `json:"userAgent"`
	StartedAt  time.Time `json:"startedAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}
