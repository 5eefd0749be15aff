package models

import "github.com/harrylevesque/rentnest/internal/utils"

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Preferences is the client's locally persisted session and display state.
type Preferences struct {
	ServerURL string `cbor:"server_url" json:"server_url"`
	Token     string `cbor:"token" json:"-"`
	UserID    string `cbor:"user_id" json:"user_id,omitempty"`
	Email     string `cbor:"email" json:"email,omitempty"`
	Theme     Theme  `cbor:"theme" json:"theme"`
}

// LoggedIn reports whether a session token is stored.
func (p *Preferences) LoggedIn() bool { return p.Token != "" }

func ParseTheme(s string) (Theme, error) {
	switch t := Theme(lower(s)); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, nil
	default:
		return "", utils.Invalid("unknown theme %q (want light, dark or system)", s)
	}
}
