package models

import "github.com/shopspring/decimal"

type Account struct {
	AccountID      int64           `json:"account_id"`
	AccountName    string          `json:"account_name"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}
