package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/asimjadoon/ledgerwallet/internal/wallet/api"
)

// Profile fetches and prints the account record. The fetch also refreshes
// the session's cached email if an email change left it stale.
func (a *App) Profile(ctx context.Context) error {
	p, err := a.profiles.Get(ctx)
	if err != nil {
		fmt.Println("Profile unavailable:", err)
		return err
	}

	fmt.Println("name:  ", p.FullName)
	fmt.Println("email: ", p.Email)
	fmt.Println("cnic:  ", p.CNIC)
	fmt.Println("wallet:", p.WalletID)
	fmt.Println("zakat: ", onOff(p.ZakatEnabled))
	return nil
}

// SetProfile updates the display name and zakat flag.
func (a *App) SetProfile(ctx context.Context) error {
	fullName, err := getSimpleText(a.reader, "Full name", os.Stdout)
	if err != nil {
		return err
	}
	zakat, err := getSimpleText(a.reader, "Enable zakat deduction? (y/N)", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.profiles.Update(ctx, fullName, strings.EqualFold(zakat, "y")); err != nil {
		fmt.Println("Update failed:", err)
		return err
	}
	fmt.Println("Profile updated.")
	return nil
}

// Beneficiaries lists saved recipients.
func (a *App) Beneficiaries(ctx context.Context) error {
	list, err := a.profiles.Beneficiaries(ctx)
	if err != nil {
		fmt.Println("Beneficiaries unavailable:", err)
		return err
	}
	if len(list) == 0 {
		fmt.Println("No beneficiaries saved.")
		return nil
	}
	for _, b := range list {
		fmt.Printf("%s  %s (%s)\n", b.ID, b.Name, shortID(b.WalletID))
	}
	return nil
}

// AddBeneficiary saves a recipient wallet under a display name.
func (a *App) AddBeneficiary(ctx context.Context) error {
	walletID, err := getSimpleText(a.reader, "Beneficiary wallet id", os.Stdout)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Beneficiary name", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.profiles.AddBeneficiary(ctx, walletID, name); err != nil {
		fmt.Println("Add failed:", err)
		return err
	}
	fmt.Println("Beneficiary saved.")
	return nil
}

// RemoveBeneficiary deletes a saved recipient by id.
func (a *App) RemoveBeneficiary(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Beneficiary id", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.profiles.RemoveBeneficiary(ctx, id); err != nil {
		if api.IsNotFound(err) {
			fmt.Println("No such beneficiary.")
		} else {
			fmt.Println("Remove failed:", err)
		}
		return err
	}
	fmt.Println("Beneficiary removed.")
	return nil
}

// ChangeEmail drives the two-step email change: request a code for the new
// address, then confirm it.
func (a *App) ChangeEmail(ctx context.Context) error {
	newEmail, err := getSimpleText(a.reader, "New email address", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.profiles.RequestEmailChange(ctx, newEmail); err != nil {
		fmt.Println("Request failed:", err)
		return err
	}
	fmt.Println("A verification code has been sent to", newEmail)

	code, err := getSimpleText(a.reader, "Enter verification code", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.profiles.ConfirmEmailChange(ctx, newEmail, code); err != nil {
		fmt.Println("Confirmation failed:", err)
		return err
	}
	fmt.Println("Email updated; run 'profile' to refresh.")
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
