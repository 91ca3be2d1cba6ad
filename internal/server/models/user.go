// Package models contains the server-side data model: users, file records,
// and block records of the transfer store.
package models

import "time"

type User struct {
	ID             int64
	UserName       string
	PasswordDigest []byte
	Salt           []byte
	CreatedAt      time.Time
}
