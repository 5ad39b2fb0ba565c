package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/models"
)

// Embedder turns text into a vector. Embedding generation itself is an
// external hosted service; the search layer only passes vectors through.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SearchService runs the three search tiers over merchant and notes:
// substring (ILIKE), fuzzy (pg_trgm similarity) and semantic (pgvector
// cosine distance over precomputed embeddings).
type SearchService struct {
	db       *sql.DB
	embedder Embedder
	timeout  time.Duration
	limit    int
}

func NewSearchService(db *sql.DB, embedder Embedder) *SearchService {
	return &SearchService{db: db, embedder: embedder, timeout: 15 * time.Second, limit: 20}
}

func (s *SearchService) Search(ctx context.Context, query, method string) (*models.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query must not be empty", ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	switch method {
	case models.SearchSubstring, "":
		return s.substringSearch(ctx, query)
	case models.SearchFuzzy:
		return s.fuzzySearch(ctx, query)
	case models.SearchSemantic:
		return s.semanticSearch(ctx, query)
	default:
		return nil, fmt.Errorf("%w: unknown search method %q", ErrValidation, method)
	}
}

func (s *SearchService) substringSearch(ctx context.Context, query string) (*models.SearchResponse, error) {
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_id, date, amount, merchant, category, COALESCE(notes, '')
		FROM transactions
		WHERE merchant ILIKE $1 OR notes ILIKE $1
		ORDER BY date DESC
		LIMIT $2
	`, pattern, s.limit)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	defer rows.Close()

	results, err := scanSearchRows(rows, false)
	if err != nil {
		return nil, err
	}
	return &models.SearchResponse{Method: models.SearchSubstring, Query: query, Results: results}, nil
}

func (s *SearchService) fuzzySearch(ctx context.Context, query string) (*models.SearchResponse, error) {
	hasTrgm, err := s.extensionInstalled(ctx, "pg_trgm")
	if err != nil {
		return nil, err
	}
	if !hasTrgm {
		// Without the trigram extension the fuzzy tier degrades to plain
		// pattern matching rather than failing the request.
		resp, err := s.substringSearch(ctx, query)
		if err != nil {
			return nil, err
		}
		resp.Method = models.SearchFuzzy
		resp.Fallback = true
		return resp, nil
	}

	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_id, date, amount, merchant, category, COALESCE(notes, ''),
		       GREATEST(
		           similarity(merchant, $1),
		           similarity(COALESCE(notes, ''), $1)
		       ) AS similarity_score
		FROM transactions
		WHERE similarity(merchant, $1) > 0.1
		   OR similarity(COALESCE(notes, ''), $1) > 0.1
		   OR merchant ILIKE $2
		   OR notes ILIKE $2
		ORDER BY similarity_score DESC, date DESC
		LIMIT $3
	`, query, pattern, s.limit)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	defer rows.Close()

	results, err := scanSearchRows(rows, true)
	if err != nil {
		return nil, err
	}
	return &models.SearchResponse{Method: models.SearchFuzzy, Query: query, Results: results}, nil
}

func (s *SearchService) semanticSearch(ctx context.Context, query string) (*models.SearchResponse, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: semantic search requires an embeddings provider", ErrValidation)
	}

	var embeddingCount int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM transactions WHERE embedding IS NOT NULL
	`).Scan(&embeddingCount)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	if embeddingCount == 0 {
		return nil, fmt.Errorf("%w: no transaction embeddings present, run the embeddings setup first", ErrValidation)
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed search query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_id, date, amount, merchant, category, COALESCE(notes, ''),
		       1 - (embedding <=> $1::vector) AS similarity_score
		FROM transactions
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1::vector
		LIMIT $2
	`, formatVector(vector), s.limit)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	defer rows.Close()

	results, err := scanSearchRows(rows, true)
	if err != nil {
		return nil, err
	}
	return &models.SearchResponse{Method: models.SearchSemantic, Query: query, Results: results}, nil
}

func (s *SearchService) extensionInstalled(ctx context.Context, name string) (bool, error) {
	var installed bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = $1)
	`, name).Scan(&installed)
	if err != nil {
		return false, classifyStoreErr(err)
	}
	return installed, nil
}

func scanSearchRows(rows *sql.Rows, withScore bool) ([]models.SearchResult, error) {
	results := []models.SearchResult{}
	for rows.Next() {
		var r models.SearchResult
		dest := []any{&r.TransactionID, &r.Date, &r.Amount, &r.Merchant, &r.Category, &r.Notes}
		var score float64
		if withScore {
			dest = append(dest, &score)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		if withScore {
			r.Similarity = &score
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyStoreErr(err)
	}
	return results, nil
}

// formatVector renders a float slice in pgvector's literal syntax.
func formatVector(vector []float32) string {
	parts := make([]string, len(vector))
	for i, v := range vector {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
