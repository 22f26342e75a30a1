// Package store holds the user-record store the API's account routes sit
// on. The STT pipeline does not depend on it.
package store

import (
	"context"
	"errors"
)

var (
	// ErrDuplicateUsername is returned by Create when the username exists.
	ErrDuplicateUsername = errors.New("duplicate username")

	// ErrNotFound is returned by Get for an unknown user id.
	ErrNotFound = errors.New("user not found")
)

// User is the externally visible user record. Passwords never leave the
// store.
type User struct {
	ID       int64  `json:"user_id"`
	Username string `json:"username"`
}

// UserStore is the user-record collaborator contract.
type UserStore interface {
	Create(ctx context.Context, username, password string) (User, error)
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
}
