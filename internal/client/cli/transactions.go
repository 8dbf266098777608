package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// Add records a new transaction locally; it reaches the server on the
// next sync.
func (a *App) Add(ctx context.Context) error {
	rawAmount, err := GetSimpleText(a.reader, "Enter amount", os.Stdout)
	if err != nil {
		return err
	}
	amount, err := strconv.ParseFloat(rawAmount, 64)
	if err != nil {
		fmt.Println("Not a number:", rawAmount)
		return err
	}

	category, err := GetSimpleText(a.reader, "Enter category", os.Stdout)
	if err != nil {
		return err
	}
	date, err := GetSimpleText(a.reader, "Enter date (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}
	memo, err := GetSimpleText(a.reader, "Enter memo (optional)", os.Stdout)
	if err != nil {
		return err
	}

	tx, err := a.syncService.Add(ctx, amount, category, date, memo)
	if err != nil {
		fmt.Println("Failed to add transaction:", err)
		return err
	}

	fmt.Println("Added", tx.ID)
	return nil
}

// Delete tombstones a transaction locally.
func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.syncService.Delete(ctx, id); err != nil {
		fmt.Println("Failed to delete transaction:", err)
		return err
	}

	fmt.Println("Deleted", id)
	return nil
}

// List prints the live local set.
func (a *App) List(ctx context.Context) error {
	list, err := a.syncService.List(ctx)
	if err != nil {
		fmt.Println("Failed to list transactions:", err)
		return err
	}

	if len(list) == 0 {
		fmt.Println("No transactions.")
		return nil
	}

	for _, tx := range list {
		marker := " "
		if tx.Pending {
			marker = "*"
		}
		fmt.Printf("%s %s  %10.2f  %-12s %s  %s\n", marker, tx.Date, tx.Amount, tx.Category, tx.ID, tx.Memo)
	}
	fmt.Println("(* = not yet synced)")
	return nil
}

// Sync runs a push/pull round against the server.
func (a *App) Sync(ctx context.Context) error {
	summary, err := a.syncService.Sync(ctx)
	if err != nil {
		fmt.Println("Sync failed:", err)
		return err
	}

	fmt.Printf("Synced: pushed %d, pulled %d, at version %d\n", summary.Pushed, summary.Pulled, summary.Version)
	return nil
}
