// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

var ErrUserNotFound = errors.New("user not found")

// User is the single UI account. The users table is constrained to one row.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Get returns the account, or ErrUserNotFound before first setup.
func (s *UserStore) Get() (*User, error) {
	user := &User{}
	err := s.db.QueryRow(
		"SELECT username, password_hash, created_at, updated_at FROM users WHERE id = 1",
	).Scan(&user.Username, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	return user, nil
}

// Upsert creates the account or replaces its credentials.
func (s *UserStore) Upsert(username, passwordHash string) error {
	_, err := s.db.Exec(`
		INSERT INTO users (id, username, password_hash) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username,
			password_hash = excluded.password_hash,
			updated_at = CURRENT_TIMESTAMP
	`, username, passwordHash)
	return errors.Wrap(err, "failed to save user")
}
