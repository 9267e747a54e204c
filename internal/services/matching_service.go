package services

import (
	"strings"

	"github.com/justsurfingit/job-tracker-client/internal/dtos"
)

// closed applications never receive updates worth linking
var closedStatuses = map[string]bool{
	"rejected":  true,
	"withdrawn": true,
}

type ApplicationMatcher struct{}

func NewApplicationMatcher() *ApplicationMatcher {
	return &ApplicationMatcher{}
}

// Match links a notification to the open application it is about.
//
// A company matches when its name appears in the title or the message. When
// several open applications share that company, the one whose job title is
// mentioned wins; with no such hint the notification stays unlinked.
func (m *ApplicationMatcher) Match(n dtos.Notification, apps []dtos.Application) *dtos.Application {
	title := strings.ToLower(n.Title)
	body := strings.ToLower(n.Message)

	var candidates []*dtos.Application
	for i := range apps {
		app := &apps[i]
		if app.Job == nil || closedStatuses[strings.ToLower(app.Status)] {
			continue
		}
		company := strings.ToLower(strings.TrimSpace(app.Job.Company))
		// very short names like "X" would match everything
		if len(company) < 3 {
			continue
		}
		if strings.Contains(title, company) || strings.Contains(body, company) {
			candidates = append(candidates, app)
		}
	}

	switch len(candidates) {
	case 0:
		return nil
	case 1:
		return candidates[0]
	}

	var hit *dtos.Application
	for _, app := range candidates {
		jobTitle := strings.ToLower(strings.TrimSpace(app.Job.Title))
		if jobTitle == "" {
			continue
		}
		if strings.Contains(title, jobTitle) || strings.Contains(body, jobTitle) {
			if hit != nil {
				return nil
			}
			hit = app
		}
	}
	return hit
}
