// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torview/torview/internal/auth"
	"github.com/torview/torview/internal/database"
	"github.com/torview/torview/internal/models"
)

func TestRunChangePasswordCommand(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	defer os.Chdir(originalWd)
	os.Chdir(tmpDir)

	configDir := filepath.Join(tmpDir, "config")

	// Seed the database with an account the way first-run setup would.
	db, err := database.New(filepath.Join(configDir, "torview.db"))
	require.NoError(t, err)
	userStore := models.NewUserStore(db.Conn())
	authService := auth.NewService(userStore, "test-secret")
	_, err = authService.SetupUser("admin", "original-password")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cmd := RunChangePasswordCommand()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{
		"--config-dir", configDir,
		"--new-password", "replacement-password",
	})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, output.String(), "Password changed successfully for user 'admin'")

	// The new password must verify, the old one must not.
	db, err = database.New(filepath.Join(configDir, "torview.db"))
	require.NoError(t, err)
	defer db.Close()

	svc := auth.NewService(models.NewUserStore(db.Conn()), "test-secret")
	_, err = svc.Login("admin", "replacement-password")
	assert.NoError(t, err)
	_, err = svc.Login("admin", "original-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestRunChangePasswordCommandRejectsShortPassword(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	defer os.Chdir(originalWd)
	os.Chdir(tmpDir)

	configDir := filepath.Join(tmpDir, "config")

	db, err := database.New(filepath.Join(configDir, "torview.db"))
	require.NoError(t, err)
	authService := auth.NewService(models.NewUserStore(db.Conn()), "test-secret")
	_, err = authService.SetupUser("admin", "original-password")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cmd := RunChangePasswordCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"--config-dir", configDir,
		"--new-password", "short",
	})

	assert.Error(t, cmd.Execute())
}

func TestRunChangePasswordCommandWithoutDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	defer os.Chdir(originalWd)
	os.Chdir(tmpDir)

	cmd := RunChangePasswordCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"--config-dir", filepath.Join(tmpDir, "empty"),
		"--new-password", "replacement-password",
	})

	assert.Error(t, cmd.Execute())
}
