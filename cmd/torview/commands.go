// Copyright (c) 2025, the torview contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/torview/torview/internal/auth"
	"github.com/torview/torview/internal/config"
	"github.com/torview/torview/internal/database"
	"github.com/torview/torview/internal/models"
	"github.com/torview/torview/internal/update"
)

func RunServeCommand() *cobra.Command {
	var (
		configDir string
		dataDir   string
		logPath   string
	)

	command := &cobra.Command{
		Use:   "serve",
		Short: "Start the server",
	}

	command.Flags().StringVar(&configDir, "config-dir", "", "config directory path (default is OS-specific, e.g. ~/.config/torview/). Can also be a direct path to a .toml file")
	command.Flags().StringVar(&dataDir, "data-dir", "", "data directory for the database (default is next to the config file)")
	command.Flags().StringVar(&logPath, "log-path", "", "log file path (default is stderr)")

	command.Run = func(cmd *cobra.Command, args []string) {
		app := NewApplication(Version, configDir, dataDir, logPath)
		app.runServer()
	}

	return command
}

func RunVersionCommand(version string) *cobra.Command {
	var check bool

	command := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of torview",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)

			if !check {
				return
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), update.CheckTimeout)
			defer cancel()

			latest, newer, err := update.Check(ctx, version)
			if err != nil {
				cmd.PrintErrf("Update check failed: %v\n", err)
				return
			}
			if newer {
				cmd.Printf("A newer version is available: %s\n", latest)
			} else {
				cmd.Println("You are running the latest version.")
			}
		},
	}

	command.Flags().BoolVar(&check, "check", false, "check for a newer release")

	return command
}

func RunGenerateConfigCommand() *cobra.Command {
	var configDir string

	command := &cobra.Command{
		Use:   "generate-config",
		Short: "Generate a default configuration file",
		Long: `Generate a default configuration file without starting the server.

You can specify either a directory path or a direct file path:
- Directory: torview generate-config --config-dir /path/to/config/
- File: torview generate-config --config-dir /path/to/myconfig.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := resolveConfigPath(configDir)

			if _, err := os.Stat(configPath); err == nil {
				cmd.Printf("Configuration file already exists at: %s\n", configPath)
				cmd.Println("Skipping generation to avoid overwriting existing configuration.")
				return nil
			}

			if err := config.WriteDefaultConfig(configPath); err != nil {
				return fmt.Errorf("failed to create configuration file: %w", err)
			}

			cmd.Printf("Configuration file created successfully at: %s\n", configPath)
			return nil
		},
	}

	command.Flags().StringVar(&configDir, "config-dir", "",
		"config directory or file path (defaults to OS-specific location)")

	return command
}

func resolveConfigPath(configDir string) string {
	if configDir == "" {
		return config.DefaultConfigPath()
	}
	if strings.HasSuffix(strings.ToLower(configDir), ".toml") {
		return configDir
	}
	if info, err := os.Stat(configDir); err == nil && !info.IsDir() {
		return configDir
	}
	return filepath.Join(configDir, "config.toml")
}

func readPassword(prompt string) (string, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Print(prompt)
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(password), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	var password string
	if _, err := fmt.Scanln(&password); err != nil {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	return password, nil
}

func RunChangePasswordCommand() *cobra.Command {
	var configDir, dataDir, newPassword string

	command := &cobra.Command{
		Use:   "change-password",
		Short: "Change the password of the UI account",
		Long: `Change the password of the UI account without the current password.

Intended for recovery when the password is lost. The account itself is
created through the web UI on first run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New(configDir)
			if err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			if dataDir != "" {
				cfg.Config.DataDir = dataDir
			}

			dbPath := cfg.DatabasePath()
			if _, err := os.Stat(dbPath); os.IsNotExist(err) {
				return fmt.Errorf("database not found at %s, run the server once first", dbPath)
			}

			db, err := database.New(dbPath)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			userStore := models.NewUserStore(db.Conn())
			authService := auth.NewService(userStore, cfg.Config.SessionSecret)

			user, err := userStore.Get()
			if err != nil {
				return fmt.Errorf("no account found, complete setup in the web UI first: %w", err)
			}

			if newPassword == "" {
				newPassword, err = readPassword("Enter new password: ")
				if err != nil {
					return err
				}
			}
			if len(newPassword) < 8 {
				return fmt.Errorf("password must be at least 8 characters long")
			}

			if err := authService.ResetPassword(newPassword); err != nil {
				return fmt.Errorf("failed to update password: %w", err)
			}

			cmd.Printf("Password changed successfully for user '%s'\n", user.Username)
			return nil
		},
	}

	command.Flags().StringVar(&configDir, "config-dir", "",
		"config directory or file path (defaults to OS-specific location)")
	command.Flags().StringVar(&dataDir, "data-dir", "",
		"data directory path (defaults to next to config file)")
	command.Flags().StringVar(&newPassword, "new-password", "",
		"new password (will prompt if not provided)")

	return command
}
