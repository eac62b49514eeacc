package mailutil

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncompleteProfile is matched by every MissingIdentityError.
var ErrIncompleteProfile = errors.New("incomplete user profile")

// ProfileURL is where a user completes the name and email used as sender.
const ProfileURL = "/wp-admin/profile.php"

// MissingIdentityError reports that the sending user has no usable name or
// email address. Mail cannot be sent until the profile is completed.
type MissingIdentityError struct {
	Field string
}

func (e *MissingIdentityError) Error() string {
	return fmt.Sprintf("mail error: incomplete user profile: missing %s", e.Field)
}

func (e *MissingIdentityError) Is(target error) bool {
	return target == ErrIncompleteProfile
}

// IsPluginActive looks for an active plugin whose identifier contains
// fragment, ignoring case. On multisite installs network-wide plugins are
// searched too. It returns the first matching identifier.
func IsPluginActive(site Site, fragment string) (string, bool) {
	if !site.Multisite && len(site.ActivePlugins) == 0 {
		return "", false
	}

	all := site.ActivePlugins
	if site.Multisite {
		all = unique(append(append([]string{}, site.ActivePlugins...), site.NetworkPlugins...))
	}

	needle := strings.ToLower(fragment)
	for _, plugin := range all {
		if strings.Contains(strings.ToLower(plugin), needle) {
			return plugin, true
		}
	}
	return "", false
}

// DefaultSenderName returns "First Last" when the user has both names,
// otherwise the display name.
func DefaultSenderName(u *User) (string, error) {
	if u == nil {
		return "", &MissingIdentityError{Field: "name"}
	}

	name := u.DisplayName
	if u.FirstName != "" && u.LastName != "" {
		name = u.FirstName + " " + u.LastName
	}
	if name == "" {
		return "", &MissingIdentityError{Field: "name"}
	}
	return name, nil
}

// DefaultSenderEmail returns the user's profile email.
func DefaultSenderEmail(u *User) (string, error) {
	if u == nil || u.Email == "" {
		return "", &MissingIdentityError{Field: "email"}
	}
	return u.Email, nil
}

// EmailDomain returns the part of email after the @ sign, or an empty
// string unless email has exactly one @ with text on both sides.
func EmailDomain(email string) string {
	parts := strings.Split(strings.TrimSpace(email), "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ""
	}
	return parts[1]
}

// MatchesEmailDomain reports whether the shorter of the two domains is a
// substring of the longer one, so "example.com" matches "mail.example.com".
func MatchesEmailDomain(e1, e2 string) bool {
	d1 := EmailDomain(e1)
	d2 := EmailDomain(e2)
	if len(d1) > len(d2) {
		return strings.Contains(d1, d2)
	}
	return strings.Contains(d2, d1)
}

// DomainsMatchProviderSender reports whether the user mails from the same
// domain as the provider's configured sender.
func DomainsMatchProviderSender(u *User, p ProviderSettings) (bool, error) {
	email, err := DefaultSenderEmail(u)
	if err != nil {
		return false, err
	}

	providerDomain := EmailDomain(p.FromEmail)
	return providerDomain != "" && providerDomain == EmailDomain(email), nil
}

// ShouldToggleProviderTransactional reports whether transactional sending
// must be switched off for a message: the provider sends transactionally
// and the message carries attachments. The caller applies the toggle to
// that one message only.
func ShouldToggleProviderTransactional(p ProviderSettings, attachments []string) bool {
	return p.Transactional && len(attachments) > 0
}
