// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package auth

import (
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"

	"github.com/torview/torview/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotSetup           = errors.New("initial setup required")
	ErrAlreadySetup       = errors.New("setup already completed")
)

// SessionName is the cookie name used for the login session.
const SessionName = "torview_session"

// Service handles the single UI account and its login sessions.
type Service struct {
	users        *models.UserStore
	sessionStore *sessions.CookieStore
}

func NewService(users *models.UserStore, sessionSecret string) *Service {
	return &Service{
		users:        users,
		sessionStore: sessions.NewCookieStore([]byte(sessionSecret)),
	}
}

func (s *Service) GetSessionStore() *sessions.CookieStore {
	return s.sessionStore
}

// IsSetupComplete reports whether the account has been created.
func (s *Service) IsSetupComplete() (bool, error) {
	_, err := s.users.Get()
	if errors.Is(err, models.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetupUser creates the account. Fails once an account exists.
func (s *Service) SetupUser(username, password string) (*models.User, error) {
	complete, err := s.IsSetupComplete()
	if err != nil {
		return nil, err
	}
	if complete {
		return nil, ErrAlreadySetup
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}
	if err := s.users.Upsert(username, hash); err != nil {
		return nil, err
	}
	return s.users.Get()
}

// Login validates credentials against the stored account.
func (s *Service) Login(username, password string) (*models.User, error) {
	user, err := s.users.Get()
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, ErrNotSetup
	}
	if err != nil {
		return nil, err
	}

	if user.Username != username {
		return nil, ErrInvalidCredentials
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to verify password")
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(oldPassword, newPassword string) error {
	user, err := s.users.Get()
	if errors.Is(err, models.ErrUserNotFound) {
		return ErrNotSetup
	}
	if err != nil {
		return err
	}

	ok, err := VerifyPassword(oldPassword, user.PasswordHash)
	if err != nil {
		return errors.Wrap(err, "failed to verify password")
	}
	if !ok {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}
	return s.users.Upsert(user.Username, hash)
}

// ResetPassword replaces the password without checking the current one.
// Used by the change-password CLI command for recovery.
func (s *Service) ResetPassword(newPassword string) error {
	user, err := s.users.Get()
	if errors.Is(err, models.ErrUserNotFound) {
		return ErrNotSetup
	}
	if err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}
	return s.users.Upsert(user.Username, hash)
}
