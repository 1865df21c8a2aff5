package domain

import "time"

// Reserved logins and seed authorities. The anonymous login is never listed by
// the admin surface; the authorities are created by migration, not at runtime.
const (
	AnonymousLogin   = "anonymoususer"
	AuthorityUser    = "ROLE_USER"
	AuthorityAdmin   = "ROLE_ADMIN"
	DefaultLangKey   = "en"
	ResetKeyValidity = 24 * time.Hour
)

type Account struct {
	ID            string
	Login         string // unique, stored lowercase
	Email         string // unique
	FirstName     string
	LastName      string
	ImageURL      string
	LangKey       string
	PasswordHash  string     // argon2id encoded, never exposed
	Activated     bool
	ActivationKey *string    // set while a self-registration is pending; nil once activated
	ResetKey      *string    // set while a password reset is outstanding
	ResetDate     *time.Time // minted together with ResetKey
	Authorities   []string   // authority names, all resolvable against the store
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ResetKeyValid reports whether the outstanding reset key may still be honored
// at the given instant. A reset without a date is never valid.
func (a Account) ResetKeyValid(now time.Time) bool {
	if a.ResetKey == nil || a.ResetDate == nil {
		return false
	}
	return a.ResetDate.After(now.Add(-ResetKeyValidity))
}

// HasAuthority reports whether the account carries the named authority.
func (a Account) HasAuthority(name string) bool {
	for _, n := range a.Authorities {
		if n == name {
			return true
		}
	}
	return false
}
