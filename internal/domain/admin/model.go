package admin

import (
	"time"

	"github.com/google/uuid"
)

// Admin is an authentication-only account. Admins log in with a username
// rather than an email and carry no profile beyond the credential.
type Admin struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
