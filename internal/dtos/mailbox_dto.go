package dtos

const (
	MessageOAuthSuccess = "oauth-success"
	MessageOAuthError   = "oauth-error"
)

type MailboxAuthURL struct {
	AuthURL string `json:"authUrl"`
}

type MailboxProviderStatus struct {
	Connected bool   `json:"connected"`
	Email     string `json:"email,omitempty"`
}

// MailboxStatus is keyed by provider ("gmail", "outlook").
type MailboxStatus map[string]MailboxProviderStatus

// CallbackMessage is what the OAuth callback page reports back to the client.
type CallbackMessage struct {
	Type     string `json:"type" form:"type" binding:"required,oneof=oauth-success oauth-error"`
	Provider string `json:"provider" form:"provider" binding:"required"`
	Message  string `json:"message,omitempty" form:"message"`
	Email    string `json:"email,omitempty" form:"email"`
	State    string `json:"state,omitempty" form:"state"`
}
