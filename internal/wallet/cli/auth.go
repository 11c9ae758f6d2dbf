package cli

import (
	"context"
	"fmt"
	"os"
)

// getSimpleText, getPassword and getAmount are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getAmount     = GetAmount
)

// Register drives the signup challenge: identity details first, then the
// emailed one-time code together with the chosen password. A wrong code
// leaves the challenge open so the user may retry with a fresh code.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Enter full name", os.Stdout)
	if err != nil {
		return err
	}
	cnic, err := getSimpleText(a.reader, "Enter CNIC", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.machine.BeginSignup(ctx, email, fullName, cnic); err != nil {
		fmt.Println("Signup failed:", err)
		return err
	}
	fmt.Println("A verification code has been sent to", email)

	code, err := getSimpleText(a.reader, "Enter verification code", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout, "Choose password")
	if err != nil {
		return err
	}
	defer wipeBytes(password)
	confirm, err := getPassword(os.Stdout, "Repeat password")
	if err != nil {
		return err
	}
	defer wipeBytes(confirm)

	sess, err := a.machine.ConfirmSignup(ctx, code, string(password), string(confirm))
	if err != nil {
		fmt.Println("Verification failed:", err)
		return err
	}

	fmt.Println("Welcome! Your wallet id is", sess.WalletID)
	a.startSync(ctx)
	return nil
}

// Login authenticates with email and password and starts the sync engine.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer wipeBytes(password)

	sess, err := a.machine.Login(ctx, email, string(password))
	if err != nil {
		fmt.Println("Login failed:", err)
		return err
	}

	fmt.Println("Logged in as", sess.Email)
	a.startSync(ctx)
	return nil
}

// Logout stops polling, clears the persisted session and returns to the
// anonymous state.
func (a *App) Logout(ctx context.Context) error {
	a.stopSync()
	if err := a.machine.Logout(ctx); err != nil {
		fmt.Println("Logout failed:", err)
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

// AdminLogin authenticates the independent admin identity. It does not
// touch the wallet session.
func (a *App) AdminLogin(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Admin username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout, "Admin password")
	if err != nil {
		return err
	}
	defer wipeBytes(password)

	if err := a.admin.Login(ctx, username, string(password)); err != nil {
		fmt.Println("Admin login failed:", err)
		return err
	}
	fmt.Println("Admin session active.")
	return nil
}

// AdminLogout ends the admin session only; the wallet session is untouched.
func (a *App) AdminLogout(ctx context.Context) error {
	if err := a.admin.Logout(ctx); err != nil {
		fmt.Println("Admin logout failed:", err)
		return err
	}
	fmt.Println("Admin session closed.")
	return nil
}
