package discord

// Config represents the configuration for the Discord OAuth client
type Config struct {
	// ClientID is the Discord application client ID
	ClientID string

	// ClientSecret is the Discord application client secret
	ClientSecret string

	// RedirectURL is the registered OAuth redirect URI
	RedirectURL string

	// APIBaseURL is the Discord REST API base URL
	APIBaseURL string

	// AuthBaseURL is the Discord OAuth authorize base URL
	AuthBaseURL string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return ErrInvalidConfig
	}
	if c.ClientSecret == "" {
		return ErrInvalidConfig
	}
	if c.RedirectURL == "" {
		return ErrInvalidConfig
	}
	if c.APIBaseURL == "" {
		return ErrInvalidConfig
	}
	if c.AuthBaseURL == "" {
		return ErrInvalidConfig
	}
	return nil
}
