// Package model defines the data structures used throughout the application.
package model

import "time"

// User is identified by email.
//
// Credentials live with the upstream identity provider; this service only needs a
// stable key to hang favorites on. ID is an internal xid so the join table does not
// depend on the email string (which a user might change upstream).
type User struct {
	ID        string    `json:"id"        db:"id"`
	Email     string    `json:"email"     db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Favorite is one (user, document) edge. Existence is boolean: the store's
// composite primary key forbids a second row for the same pair.
type Favorite struct {
	UserID     string    `json:"userId"     db:"user_id"`
	DocumentID string    `json:"documentId" db:"document_id"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
}
