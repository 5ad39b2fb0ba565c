package services

import (
	"context"
	"database/sql"
	"errors"
	"net"

	"github.com/lib/pq"
)

// Ledger failure taxonomy. Every mutation reports exactly one of these so
// callers can tell "doesn't exist" from "exists but already terminal" from
// "could not even ask the store".
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlreadyProcessed    = errors.New("transaction already processed")
	ErrConnectivity        = errors.New("database unreachable")
	ErrValidation          = errors.New("invalid request")
)

// Postgres error classes that indicate the store itself was unreachable or
// unable to take the statement, as opposed to rejecting its content.
var connectivityErrClasses = map[string]bool{
	"08": true, // connection exception
	"53": true, // insufficient resources
	"57": true, // operator intervention (shutdown, crash)
	"58": true, // system error
}

// classifyStoreErr maps a driver error to the ledger taxonomy. sql.ErrNoRows
// is left to the caller since its meaning depends on the query.
func classifyStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errors.Join(ErrConnectivity, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return errors.Join(ErrConnectivity, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if connectivityErrClasses[string(pqErr.Code.Class())] {
			return errors.Join(ErrConnectivity, err)
		}
		return err
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return errors.Join(ErrConnectivity, err)
	}
	// database/sql surfaces dial failures as plain errors; treat anything
	// we cannot attribute to statement content as connectivity.
	return errors.Join(ErrConnectivity, err)
}
