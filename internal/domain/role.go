package domain

import "strings"

// Role enumerates capability tiers assigned to members.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleMember        Role = "member"
	RoleTrainee       Role = "trainee"
)

// NormalizeRole maps free-form role input to its canonical value.
// Matching is case-insensitive and ignores surrounding whitespace;
// recognized synonyms collapse to the same canonical role. The second
// return value is false when the input names no known role.
func NormalizeRole(input string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "adm", "admin", "administrator", "administrador":
		return RoleAdministrator, true
	case "member", "membro":
		return RoleMember, true
	case "trainee":
		return RoleTrainee, true
	default:
		return "", false
	}
}
