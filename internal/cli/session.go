// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/api"
)

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

// runLogin prompts for credentials and stores the issued token pair.
func runLogin(client *api.Client) error {
	if err := RequiresTTY("log in"); err != nil {
		return err
	}

	fmt.Fprint(os.Stderr, "email: ")
	reader := bufio.NewReader(os.Stdin)
	email, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	email = strings.TrimSpace(email)

	password, err := ReadPassword("password: ")
	if err != nil {
		return err
	}

	if err := client.Login(context.Background(), email, password); err != nil {
		return err
	}
	fmt.Println("signed in")
	return nil
}

// runLogout revokes the session and clears stored credentials. The
// server call failing is not fatal: local sign-out always happens.
func runLogout(client *api.Client) error {
	if err := client.Logout(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: server logout failed: %v\n", err)
	}
	fmt.Println("signed out")
	return nil
}
