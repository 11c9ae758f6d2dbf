package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/asimjadoon/ledgerwallet/internal/wallet/auth"
)

// Blocks prints the chain listing, preferring the engine's cache when one
// is running.
func (a *App) Blocks(ctx context.Context) error {
	if engine := a.syncEngine(); engine != nil {
		if view := engine.Chain(); view != nil {
			printChain(view.Length, len(view.Blocks))
			for _, b := range view.Blocks {
				fmt.Printf("#%d %s (prev %s, nonce %d, %d txs)\n",
					b.Index, shortID(b.Hash), shortID(b.PreviousHash), b.Nonce, len(b.Transactions))
			}
			return nil
		}
	}

	view, err := a.client.ListBlocks(ctx)
	if err != nil {
		fmt.Println("Chain unavailable:", err)
		return err
	}
	printChain(view.Length, len(view.Blocks))
	for _, b := range view.Blocks {
		fmt.Printf("#%d %s (prev %s, nonce %d, %d txs)\n",
			b.Index, shortID(b.Hash), shortID(b.PreviousHash), b.Nonce, len(b.Transactions))
	}
	return nil
}

func printChain(length int64, shown int) {
	fmt.Printf("Chain length %d, showing %d blocks\n", length, shown)
}

// Pending lists transactions accepted by the server but not mined yet.
func (a *App) Pending(ctx context.Context) error {
	if engine := a.syncEngine(); engine != nil {
		entries := engine.Pending()
		if len(entries) == 0 {
			fmt.Println("Pending pool is empty.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s %s → %s %d  %s\n", shortID(e.TxID), shortID(e.SenderID), shortID(e.ReceiverID), e.Amount, e.Note)
		}
		return nil
	}

	ids, err := a.client.ListPending(ctx)
	if err != nil {
		fmt.Println("Pending pool unavailable:", err)
		return err
	}
	if len(ids) == 0 {
		fmt.Println("Pending pool is empty.")
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

// Mine asks the server to mine the pending pool, crediting the reward to
// the current wallet.
func (a *App) Mine(ctx context.Context) error {
	sess := a.machine.Session()
	if sess == nil {
		fmt.Println("Not logged in.")
		return auth.ErrNotAuthenticated
	}

	block, err := a.client.Mine(ctx, sess.WalletID)
	if err != nil {
		fmt.Println("Mining failed:", err)
		return err
	}
	fmt.Printf("Mined block #%d %s (%d txs)\n", block.Index, shortID(block.Hash), len(block.Transactions))
	return nil
}

// Validate asks the server to verify chain integrity.
func (a *App) Validate(ctx context.Context) error {
	status, err := a.client.ValidateChain(ctx)
	if err != nil {
		fmt.Println("Validation unavailable:", err)
		return err
	}
	if status.Valid {
		fmt.Printf("Chain valid (%d blocks)\n", status.Length)
	} else {
		fmt.Printf("CHAIN INVALID (%d blocks)\n", status.Length)
	}
	return nil
}

// Zakat shows the zakat pool balance; admins may also trigger a collection
// round.
func (a *App) Zakat(ctx context.Context) error {
	pool, err := a.client.ZakatPoolBalance(ctx)
	if err != nil {
		fmt.Println("Zakat pool unavailable:", err)
		return err
	}
	fmt.Printf("Zakat pool %s holds %d\n", shortID(pool.Wallet), pool.Balance)

	if !a.isAdmin() {
		return nil
	}
	answer, err := getSimpleText(a.reader, "Trigger a collection round now? (y/N)", os.Stdout)
	if err != nil {
		return err
	}
	if answer != "y" && answer != "Y" {
		return nil
	}
	if err := a.client.TriggerZakat(ctx); err != nil {
		fmt.Println("Trigger failed:", err)
		return err
	}
	fmt.Println("Collection round started.")
	return nil
}
