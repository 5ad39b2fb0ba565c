// utils/safelog.go
// Safe logging helpers: mask financial details in production logs while
// keeping them visible during development.
package utils

import (
	"fmt"
	"log"
	"os"
	"regexp"

	"github.com/shopspring/decimal"
)

// IsProduction switches the maskers on. Matches the gin release convention.
var IsProduction = os.Getenv("GIN_MODE") == "release" ||
	os.Getenv("ENVIRONMENT") == "production" ||
	os.Getenv("ENV") == "production"

var (
	// Dollar amounts, with or without cents.
	amountRegex = regexp.MustCompile(`\$\d+([.,]\d{1,2})?`)

	// Account numbers and card-like digit runs.
	cardRegex = regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`)
)

// MaskString masks amounts and card-like numbers in a log line.
func MaskString(input string) string {
	if !IsProduction {
		return input
	}

	result := amountRegex.ReplaceAllString(input, "$***")
	result = cardRegex.ReplaceAllString(result, "****-****-****-****")
	return result
}

// MaskAmount renders a balance or amount for logging.
func MaskAmount(amount decimal.Decimal) string {
	if IsProduction {
		return "***"
	}
	return amount.StringFixed(2)
}

// MaskMerchant keeps only a recognizable prefix of a merchant name.
func MaskMerchant(merchant string) string {
	if !IsProduction {
		return merchant
	}
	if len(merchant) <= 4 {
		return "***"
	}
	return merchant[:4] + "..."
}

// SafeLog logs a message with sensitive data masked.
func SafeLog(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	log.Print(MaskString(message))
}
