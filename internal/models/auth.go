package models

// RegisterData is the registration form.
type RegisterData struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
}

// LoginCredentials is the login form. RememberMe keeps the session snapshot
// after the process exits.
type LoginCredentials struct {
	Email      string
	Password   string
	RememberMe bool
}

// AuthResponse is returned by every operation that starts a session.
// VerificationToken is set when a verification link was issued.
type AuthResponse struct {
	User              User
	Token             string
	Message           string
	VerificationToken string
}

// PasswordResetRequest asks for a reset link for Email.
type PasswordResetRequest struct {
	Email string
}

// PasswordResetConfirm consumes a reset token.
type PasswordResetConfirm struct {
	Token           string
	NewPassword     string
	ConfirmPassword string
}

// ProfileUpdate is a partial update; empty fields are left unchanged.
// Changing the password needs CurrentPassword, NewPassword and
// ConfirmPassword together.
type ProfileUpdate struct {
	Username        string
	Email           string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// SocialProvider names a supported identity provider.
type SocialProvider string

const (
	ProviderGoogle   SocialProvider = "google"
	ProviderFacebook SocialProvider = "facebook"
	ProviderGitHub   SocialProvider = "github"
)

// Valid reports whether p is one of the supported providers.
func (p SocialProvider) Valid() bool {
	switch p {
	case ProviderGoogle, ProviderFacebook, ProviderGitHub:
		return true
	}
	return false
}

// SocialAuthData carries the provider and the access token it issued.
type SocialAuthData struct {
	Provider    SocialProvider
	AccessToken string
}
