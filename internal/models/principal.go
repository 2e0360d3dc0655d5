package models

// AuthPrincipal is an account in a project's authentication system.
type AuthPrincipal struct {
	UID           string
	Email         string
	DisplayName   string
	EmailVerified bool
	Disabled      bool
}

// PrincipalToCreate carries the fields for a new destination account.
type PrincipalToCreate struct {
	Email         string
	EmailVerified bool
	Password      string
	DisplayName   string
	Disabled      bool
}
