package model

import (
	"strings"
	"time"
)

// User profiles with elevated visibility.
const (
	ProfileManager   = "gerente"
	ProfileDeveloper = "dev"
	UserStatusActive = "Ativo"
)

// User is an analyst account as supplied by the user directory.
type User struct {
	CreatedAt time.Time
	Login     string
	FullName  string
	Profile   string
	Status    string
}

// IsActive reports whether the account may work proposals.
func (u User) IsActive() bool {
	return strings.EqualFold(u.Status, UserStatusActive)
}

// SeesAllAnalysts reports whether the profile may view every analyst's records and
// the maintenance/TMA affordances.
func (u User) SeesAllAnalysts() bool {
	p := strings.ToLower(u.Profile)
	return p == ProfileManager || p == ProfileDeveloper
}
