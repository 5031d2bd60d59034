package discord

// TokenResponse represents a successful OAuth token exchange
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// User represents the authenticated Discord user (GET /users/@me)
type User struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Avatar        *string `json:"avatar"`
	Discriminator *string `json:"discriminator"`
	Email         string  `json:"email"`
}

// AvatarURL returns the CDN URL for the user's avatar, or "" if unset.
func (u *User) AvatarURL() string {
	if u.Avatar == nil || *u.Avatar == "" {
		return ""
	}
	return "https://cdn.discordapp.com/avatars/" + u.ID + "/" + *u.Avatar + ".png"
}
