package credential

// Credential is the email/password pair kept for biometric login.
type Credential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile is the user record cached next to the token so a restored session
// can show who is signed in without asking the backend.
type Profile struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
}
