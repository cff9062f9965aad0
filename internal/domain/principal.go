package domain

// Principal is the authenticated identity behind a request.
type Principal struct {
	ID       string
	Username string
}

// Authenticated reports whether the principal carries an identity.
func (p Principal) Authenticated() bool {
	return p.ID != ""
}

// User is a registered account as stored by the credential issuer.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
}
