package cli

import (
	"context"
	"fmt"
	"os"
)

// Register prompts for credentials, creates the account, and prints the
// recovery key with a warning that it will not be shown again.
func (a *App) Register(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := GetPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	confirm, err := GetPassword("Confirm password", os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.authService.Register(ctx, username, password, confirm)
	if err != nil {
		fmt.Println("Registration failed:", err)
		return err
	}

	fmt.Println("Account created.")
	fmt.Println("Your recovery key:", user.RecoveryKey)
	fmt.Println("Write it down now. It is shown only once and is the only way to reset a lost password.")
	return nil
}

// Login authenticates and remembers the session locally.
func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := GetPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.authService.Login(ctx, username, password); err != nil {
		fmt.Println("Login failed:", err)
		return err
	}

	a.userName = username
	fmt.Println("Logged in as", username)
	return nil
}

// ResetPassword swaps a lost password using the recovery key.
func (a *App) ResetPassword(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	recoveryKey, err := GetSimpleText(a.reader, "Enter recovery key", os.Stdout)
	if err != nil {
		return err
	}
	newPassword, err := GetPassword("Enter new password", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.authService.ResetPassword(ctx, username, recoveryKey, newPassword); err != nil {
		fmt.Println("Password reset failed:", err)
		return err
	}

	fmt.Println("Password changed. The recovery key is used up; a new one is issued on request.")
	return nil
}

// Logout revokes the server session and forgets it locally.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		fmt.Println("Logout failed:", err)
		return err
	}

	a.userName = ""
	fmt.Println("Logged out.")
	return nil
}
