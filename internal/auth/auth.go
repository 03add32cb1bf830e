// Package auth implements the role-selection login of the back office.
// There are no user accounts: a session is a role plus the role's shared
// password, "<prefix>@gruponioi".
package auth

import (
	"strings"

	"github.com/Anedula/NioiAccess/internal/model"
)

// passwordPrefix derives the per-role password prefix: multi-word roles use
// their initials, single-word roles the lowercased first letter.
func passwordPrefix(role model.Role) string {
	switch role {
	case model.RoleOficinaTecnica:
		return "ot"
	case model.RoleRecursosHumanos:
		return "rh"
	}

	firstWord := strings.Fields(string(role))
	if len(firstWord) == 0 {
		return ""
	}
	return strings.ToLower(firstWord[0][:1])
}

// ValidatePassword reports whether pass is the expected password for role.
func ValidatePassword(role model.Role, pass string) bool {
	if !role.IsValid() {
		return false
	}
	return pass == passwordPrefix(role)+"@gruponioi"
}
