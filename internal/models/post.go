package models

// Post is a single board entry. PasswordHash is the hex digest of the
// author-supplied password; it authorizes later edit/delete and is
// never rendered.
type Post struct {
	ID           int
	Nickname     string
	Content      string
	PasswordHash string
	CreatedAt    Timestamp
}
