package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Search methods exposed by the search endpoint.
const (
	SearchSubstring = "substring" // ILIKE pattern matching
	SearchFuzzy     = "fuzzy"     // pg_trgm trigram similarity
	SearchSemantic  = "semantic"  // pgvector cosine similarity
)

type SearchResult struct {
	TransactionID int64           `json:"transaction_id"`
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Merchant      string          `json:"merchant"`
	Category      string          `json:"category"`
	Notes         string          `json:"notes"`
	// Similarity is set for fuzzy (trigram score) and semantic (cosine
	// similarity) results; nil for plain substring matches.
	Similarity *float64 `json:"similarity,omitempty"`
}

type SearchResponse struct {
	Method  string         `json:"method"`
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	// Fallback is true when the fuzzy tier ran as plain ILIKE because the
	// pg_trgm extension is not installed.
	Fallback bool `json:"fallback,omitempty"`
}
