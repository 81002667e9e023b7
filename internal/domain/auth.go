package domain

// Identity is the set of facts about an account carried inside a bearer token.
type Identity struct {
	SubjectID string
	Name      string
	Email     string
}
