package mailutil

// Site holds the host settings the helpers read. It replaces the blog
// options lookups of the hosting platform.
type Site struct {
	Charset        string
	UploadTmpDir   string
	Multisite      bool
	ActivePlugins  []string
	NetworkPlugins []string
}

// User is the identity of the person sending mail.
type User struct {
	FirstName   string
	LastName    string
	DisplayName string
	Email       string
}

// ProviderSettings is the sender configuration of the third-party mail
// provider (SparkPost-style relay).
type ProviderSettings struct {
	FromEmail     string
	Transactional bool
}

// ValidateOption selects how deep IsValidEmailDomain checks an address.
type ValidateOption string

const (
	// ValidateSyntax checks the address format only.
	ValidateSyntax ValidateOption = "N"
	// ValidateDNS additionally requires an MX record for the domain.
	ValidateDNS ValidateOption = "Y"
)

// ParseValidateOption maps user input to a ValidateOption. Anything other
// than "Y"/"y" selects ValidateSyntax.
func ParseValidateOption(s string) ValidateOption {
	if s == "Y" || s == "y" {
		return ValidateDNS
	}
	return ValidateSyntax
}
