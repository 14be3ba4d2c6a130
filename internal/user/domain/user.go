package domain

// Credential is the relational record created once per user.
type Credential struct {
	ID           int64
	Username     string
	PasswordHash string
}

// GraphUserNode mirrors a Credential in the social graph. ID must equal the
// Credential ID.
type GraphUserNode struct {
	ID              int64
	Username        string
	Avatar          string
	BackgroundImage string
	Signature       string
}
