package services

import "github.com/dmitrijs2005/todoauth/internal/models"

// HasPermission reports whether user may access something that requires
// role. An empty role only requires a user; ADMIN requires an admin; any
// other role is granted to every user.
func HasPermission(user *models.User, required models.Role) bool {
	if user == nil {
		return false
	}
	if required == "" {
		return true
	}
	if required == models.RoleAdmin {
		return user.Role == models.RoleAdmin
	}
	return true
}

func IsAdmin(user *models.User) bool {
	return HasPermission(user, models.RoleAdmin)
}

func (s *authService) HasPermission(user *models.User, required models.Role) bool {
	return HasPermission(user, required)
}

func (s *authService) IsAdmin(user *models.User) bool {
	return IsAdmin(user)
}
