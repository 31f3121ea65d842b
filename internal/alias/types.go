package alias

import "fmt"

// Role buckets and their alias prefixes. Aliases render as e.g. "Founder #FNB014".
const (
	prefixFounder  = "FNB"
	prefixInvestor = "INV"
	prefixStaff    = "STF"
)

// Alias is a role-scoped pseudonym bound to an account.
type Alias struct {
	AccountID string `json:"account_id"`
	Label     string `json:"label"`
	Prefix    string `json:"prefix"`
	Seq       int32  `json:"seq"`
}

// Display renders the human-readable alias shown to counterparties.
// Per-conversation overrides carry the full display string in Label.
func (a Alias) Display() string {
	if a.Prefix == "" {
		return a.Label
	}
	return fmt.Sprintf("%s #%s%03d", a.Label, a.Prefix, a.Seq)
}

func bucketForRole(role string) (prefix, label string, ok bool) {
	switch role {
	case "founder":
		return prefixFounder, "Founder", true
	case "investor":
		return prefixInvestor, "Investor", true
	case "admin", "superadmin":
		return prefixStaff, "Staff", true
	}
	return "", "", false
}

func labelForPrefix(prefix string) string {
	switch prefix {
	case prefixFounder:
		return "Founder"
	case prefixInvestor:
		return "Investor"
	case prefixStaff:
		return "Staff"
	}
	return "Member"
}
