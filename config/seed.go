package config

import (
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/utils"
)

type seedTransaction struct {
	daysAgo  int
	amount   float64
	merchant string
	category string
	notes    string
	status   string
	account  string
}

var seedAccounts = []struct {
	name    string
	balance float64
}{
	{"Checking", 4250.00},
	{"Credit Card", -1320.45},
	{"Savings", 12800.00},
}

// A small curated set plus randomized filler, mirroring the demo dataset:
// a handful of pending rows worth reviewing, the rest approved/completed.
var seedTransactions = []seedTransaction{
	{1, 350.00, "Gadget Store", "Electronics", "", "pending", "Credit Card"},
	{2, 89.99, "Best Buy Electronics", "Electronics", "Replacement charger", "pending", "Credit Card"},
	{3, 412.50, "Delta Airlines", "Travel", "Weekend trip", "pending", "Credit Card"},
	{4, 24.99, "Netflix", "Entertainment", "Monthly subscription", "pending", "Checking"},
	{5, 6.40, "Starbucks Coffee", "Food & Dining", "Morning latte", "approved", "Checking"},
	{7, 132.18, "Whole Foods Market", "Groceries", "Weekly groceries", "approved", "Checking"},
	{9, 45.00, "Shell Gas Station", "Transportation", "", "approved", "Credit Card"},
	{12, 15.99, "Spotify", "Entertainment", "Family plan", "completed", "Checking"},
	{15, 230.00, "Amazon.com", "Shopping", "Office chair", "completed", "Credit Card"},
	{20, 58.75, "CVS Pharmacy", "Healthcare", "", "completed", "Checking"},
}

var fillerMerchants = map[string][]string{
	"Food & Dining":  {"Chipotle", "Local Diner", "Panera Bread"},
	"Shopping":       {"Target", "Walmart", "eBay"},
	"Transportation": {"Uber", "Lyft", "City Parking"},
	"Utilities":      {"City Power & Light", "Comcast"},
}

// SeedSampleData loads the demo dataset if the ledger is empty. Safe to run
// on every boot; it does nothing once any transaction exists.
func SeedSampleData(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return fmt.Errorf("failed to check existing transactions: %w", err)
	}
	if count > 0 {
		log.Printf("📊 Ledger already has %d transactions, skipping seed", count)
		return nil
	}

	accountIDs := map[string]int64{}
	for _, acct := range seedAccounts {
		var id int64
		err := db.QueryRow(`
			INSERT INTO accounts (account_name, current_balance)
			VALUES ($1, $2)
			ON CONFLICT (account_name) DO UPDATE SET current_balance = accounts.current_balance
			RETURNING account_id
		`, acct.name, acct.balance).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to seed account %s: %w", acct.name, err)
		}
		accountIDs[acct.name] = id
		utils.SafeLog("💼 Account %s ready (balance $%.2f)", acct.name, acct.balance)
	}

	inserted := 0
	for _, txn := range seedTransactions {
		if err := insertSeedTransaction(db, txn, accountIDs); err != nil {
			return err
		}
		inserted++
	}

	// Filler rows so aggregates and search have something to chew on.
	rng := rand.New(rand.NewSource(42))
	for category, merchants := range fillerMerchants {
		for _, merchant := range merchants {
			txn := seedTransaction{
				daysAgo:  rng.Intn(90),
				amount:   5 + rng.Float64()*195,
				merchant: merchant,
				category: category,
				status:   "approved",
				account:  seedAccounts[rng.Intn(len(seedAccounts))].name,
			}
			if err := insertSeedTransaction(db, txn, accountIDs); err != nil {
				return err
			}
			inserted++
		}
	}

	log.Printf("✅ Seeded %d accounts and %d transactions", len(seedAccounts), inserted)
	return nil
}

func insertSeedTransaction(db *sql.DB, txn seedTransaction, accountIDs map[string]int64) error {
	accountID, ok := accountIDs[txn.account]
	if !ok {
		return fmt.Errorf("unknown seed account %q", txn.account)
	}

	var notes any
	if txn.notes != "" {
		notes = txn.notes
	}

	_, err := db.Exec(`
		INSERT INTO transactions (date, amount, merchant, category, notes, status, account_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, time.Now().AddDate(0, 0, -txn.daysAgo), txn.amount, txn.merchant, txn.category, notes, txn.status, accountID)
	if err != nil {
		return fmt.Errorf("failed to seed transaction %s: %w", txn.merchant, err)
	}
	return nil
}
