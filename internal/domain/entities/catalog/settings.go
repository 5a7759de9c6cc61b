package catalog

import (
	"strings"
	"time"
)

// WebsiteSettings is the site-wide singleton row.
type WebsiteSettings struct {
	ID          string    `json:"id"`
	RedirectURL *string   `json:"redirect_url"`
	SiteTitle   string    `json:"site_title"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ActiveRedirect returns the trimmed redirect target, or "" when none is set.
func (s *WebsiteSettings) ActiveRedirect() string {
	if s == nil || s.RedirectURL == nil {
		return ""
	}
	return strings.TrimSpace(*s.RedirectURL)
}

// SettingsPatch updates the singleton. A RedirectURL pointing at "" clears it.
type SettingsPatch struct {
	RedirectURL *string `json:"redirect_url,omitempty"`
	SiteTitle   *string `json:"site_title,omitempty"`
}

// Apply merges the patch into settings.
func (p SettingsPatch) Apply(s *WebsiteSettings) {
	if p.RedirectURL != nil {
		s.RedirectURL = blankToNil(p.RedirectURL)
	}
	if p.SiteTitle != nil {
		s.SiteTitle = strings.TrimSpace(*p.SiteTitle)
	}
}

// DefaultSiteTitle is used when the singleton is first created without a title.
const DefaultSiteTitle = "Aviator Nation"
