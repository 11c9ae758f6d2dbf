package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/asimjadoon/ledgerwallet/internal/wallet/api"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/auth"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/models"
	"github.com/asimjadoon/ledgerwallet/internal/wallet/transfer"
)

// Balance shows the cached balance projection, falling back to a direct
// fetch when the engine has not completed its first refresh yet.
func (a *App) Balance(ctx context.Context) error {
	sess := a.machine.Session()
	if sess == nil {
		fmt.Println("Not logged in.")
		return auth.ErrNotAuthenticated
	}

	var snap *models.Snapshot
	if engine := a.syncEngine(); engine != nil {
		snap = engine.Snapshot()
		if msg, degraded := engine.Degraded("balance"); degraded {
			fmt.Println("warning: balance may be stale:", msg)
		}
	}
	if snap == nil {
		fetched, err := a.client.GetBalance(ctx, sess.WalletID)
		if err != nil {
			fmt.Println("Balance unavailable:", err)
			return err
		}
		snap = fetched
	}

	fmt.Printf("Balance: %d (%d unspent outputs)\n", snap.Balance, len(snap.UTXOs))
	return nil
}

// Send prompts for a transfer and submits it with delegated signing. The
// accepted transaction shows up as pending until the next history poll.
func (a *App) Send(ctx context.Context) error {
	sess := a.machine.Session()
	if sess == nil {
		fmt.Println("Not logged in.")
		return auth.ErrNotAuthenticated
	}

	receiver, err := getSimpleText(a.reader, "Receiver wallet id", os.Stdout)
	if err != nil {
		return err
	}
	amount, err := getAmount(a.reader, "Amount", os.Stdout)
	if err != nil {
		fmt.Println(err)
		return err
	}
	note, err := getSimpleText(a.reader, "Note (optional)", os.Stdout)
	if err != nil {
		return err
	}

	res, err := a.pipeline.Send(ctx, *sess, transfer.Transfer{ReceiverID: receiver, Amount: amount, Note: note})
	if err != nil {
		if msg := api.ServerMessage(err); msg != "" {
			fmt.Println("Transfer rejected:", msg)
		} else {
			fmt.Println("Transfer failed:", err)
		}
		return err
	}

	if engine := a.syncEngine(); engine != nil {
		engine.NoteSubmitted(res.Record)
	}
	fmt.Println("Accepted, transaction id:", res.TxID)
	return nil
}

// History lists recent transactions, including optimistic pending entries
// the server has not confirmed yet.
func (a *App) History(ctx context.Context) error {
	sess := a.machine.Session()
	if sess == nil {
		fmt.Println("Not logged in.")
		return auth.ErrNotAuthenticated
	}

	var records []models.TransactionRecord
	if engine := a.syncEngine(); engine != nil {
		records = engine.History()
	}
	if records == nil {
		fetched, err := a.client.GetHistory(ctx, sess.WalletID, a.config.HistoryLimit)
		if err != nil {
			fmt.Println("History unavailable:", err)
			return err
		}
		records = fetched
	}

	if len(records) == 0 {
		fmt.Println("No transactions yet.")
		return nil
	}
	for _, r := range records {
		dir := "→"
		other := r.ReceiverID
		if r.ReceiverID == sess.WalletID {
			dir = "←"
			other = r.SenderID
		}
		fmt.Printf("%-10s %s %s %s %d  %s\n", r.Status, shortID(r.ID), dir, shortID(other), r.Amount, r.Note)
	}
	return nil
}

// Details fetches and prints the full record of one transaction.
func (a *App) Details(ctx context.Context) error {
	txID, err := getSimpleText(a.reader, "Transaction id", os.Stdout)
	if err != nil {
		return err
	}

	d, err := a.client.GetTransactionDetails(ctx, txID)
	if err != nil {
		if api.IsNotFound(err) {
			fmt.Println("No such transaction.")
		} else {
			fmt.Println("Lookup failed:", err)
		}
		return err
	}

	fmt.Println("id:       ", d.ID)
	fmt.Println("from:     ", d.SenderID)
	fmt.Println("to:       ", d.ReceiverID)
	fmt.Println("amount:   ", d.Amount)
	fmt.Println("type:     ", d.Type)
	fmt.Println("status:   ", d.Status)
	fmt.Println("note:     ", d.Note)
	fmt.Println("created:  ", d.CreatedAt)
	fmt.Println("signature:", d.SignatureBase64)
	return nil
}

// Fund requests demo funding for the current wallet.
func (a *App) Fund(ctx context.Context) error {
	sess := a.machine.Session()
	if sess == nil {
		fmt.Println("Not logged in.")
		return auth.ErrNotAuthenticated
	}

	amount, err := getAmount(a.reader, "Amount to fund", os.Stdout)
	if err != nil {
		fmt.Println(err)
		return err
	}

	utxoID, err := a.client.FundWallet(ctx, sess.WalletID, amount)
	if err != nil {
		fmt.Println("Funding failed:", err)
		return err
	}
	fmt.Println("Funded, new output:", utxoID)
	return nil
}
