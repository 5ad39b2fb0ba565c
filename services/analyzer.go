package services

import (
	"context"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/models"
)

// Narrator produces a plain-language summary of an analysis result.
type Narrator interface {
	Configured() bool
	NarratePendingReview(ctx context.Context, analysis *models.PendingAnalysis) (string, error)
}

// AnalyzerService flags pending transactions worth a second look before
// approval: unusually large amounts and merchants on the watchlist. The
// flags are advisory; acting on them still goes through the ledger.
type AnalyzerService struct {
	ledger        *LedgerService
	narrator      Narrator
	highThreshold decimal.Decimal
	watchWords    []string
}

func NewAnalyzerService(ledger *LedgerService, narrator Narrator) *AnalyzerService {
	return &AnalyzerService{
		ledger:        ledger,
		narrator:      narrator,
		highThreshold: decimal.NewFromInt(200),
		watchWords:    []string{"gadget", "airlines", "electronics", "store", "unknown", "luxury"},
	}
}

func (s *AnalyzerService) AnalyzePending(ctx context.Context) (*models.PendingAnalysis, error) {
	pending, err := s.ledger.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	analysis := &models.PendingAnalysis{
		PendingCount:     len(pending),
		HighAmount:       []models.PendingTransaction{},
		UnusualMerchants: []models.PendingTransaction{},
	}

	for _, txn := range pending {
		high := txn.Amount.Abs().GreaterThan(s.highThreshold)
		if high {
			analysis.HighAmount = append(analysis.HighAmount, txn)
		}
		// A transaction flagged for amount is not listed twice.
		if !high && s.unusualMerchant(txn.Merchant) {
			analysis.UnusualMerchants = append(analysis.UnusualMerchants, txn)
		}
	}

	if s.narrator != nil && s.narrator.Configured() {
		narrative, err := s.narrator.NarratePendingReview(ctx, analysis)
		if err != nil {
			// The narrative is decoration; rule results stand on their own.
			log.Printf("⚠️ AI narrative unavailable: %v", err)
		} else {
			analysis.Narrative = narrative
		}
	}

	return analysis, nil
}

func (s *AnalyzerService) unusualMerchant(merchant string) bool {
	lower := strings.ToLower(merchant)
	for _, word := range s.watchWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
