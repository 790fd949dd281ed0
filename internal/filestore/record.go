package filestore

import (
	"encoding/json"
	"fmt"
	"time"

	"branch-banking-go/internal/ledger"
	"branch-banking-go/internal/money"
	"branch-banking-go/internal/quota"
	"branch-banking-go/internal/store"
)

const dateLayout = "2006-01-02"

// accountRecord is the persisted shape of one account. Monetary values are
// exact decimal strings, dates are ISO calendar dates, history entries are
// [kind, amount, timestamp] triples.
type accountRecord struct {
	LastResetDate       string         `json:"lastResetDate"`
	Balance             money.Money    `json:"balance"`
	PurchasedExtensions int            `json:"purchasedExtensions"`
	OperationsUsed      int            `json:"operationsUsed"`
	WithdrawalsUsed     int            `json:"withdrawalsUsed"`
	History             []historyEntry `json:"history"`
}

type historyEntry struct {
	Kind      ledger.Kind
	Amount    money.Money
	Timestamp time.Time
}

func (e historyEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{
		string(e.Kind),
		e.Amount,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
	})
}

func (e *historyEntry) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 3 {
		return fmt.Errorf("history entry must have 3 elements, got %d", len(parts))
	}

	var kind string
	if err := json.Unmarshal(parts[0], &kind); err != nil {
		return fmt.Errorf("history entry kind: %w", err)
	}
	if err := json.Unmarshal(parts[1], &e.Amount); err != nil {
		return fmt.Errorf("history entry amount: %w", err)
	}
	var ts string
	if err := json.Unmarshal(parts[2], &ts); err != nil {
		return fmt.Errorf("history entry timestamp: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return fmt.Errorf("history entry timestamp %q: %w", ts, err)
	}

	e.Kind = ledger.Kind(kind)
	e.Timestamp = parsed.UTC()
	return nil
}

func encodeState(state *store.AccountState) accountRecord {
	history := make([]historyEntry, 0, state.Ledger.Size())
	for tx := range state.Ledger.History() {
		history = append(history, historyEntry{
			Kind:      tx.Kind,
			Amount:    tx.Amount,
			Timestamp: tx.Timestamp,
		})
	}
	return accountRecord{
		LastResetDate:       state.Quota.LastReset().Format(dateLayout),
		Balance:             state.Ledger.Balance(),
		PurchasedExtensions: state.Quota.PurchasedExtensions(),
		OperationsUsed:      state.Quota.OperationsUsed(),
		WithdrawalsUsed:     state.Quota.WithdrawalsUsed(),
		History:             history,
	}
}

func (r accountRecord) toState(key store.AccountKey, limits quota.Limits) (*store.AccountState, error) {
	lastReset, err := time.Parse(dateLayout, r.LastResetDate)
	if err != nil {
		return nil, fmt.Errorf("lastResetDate %q: %w", r.LastResetDate, err)
	}

	tracker, err := quota.RestoreTracker(lastReset, r.OperationsUsed, r.WithdrawalsUsed, r.PurchasedExtensions, limits)
	if err != nil {
		return nil, err
	}

	history := make([]ledger.Transaction, len(r.History))
	for i, entry := range r.History {
		history[i] = ledger.Transaction{
			Kind:      entry.Kind,
			Amount:    entry.Amount,
			Timestamp: entry.Timestamp,
		}
	}
	l, err := ledger.Restore(r.Balance, history)
	if err != nil {
		return nil, err
	}

	return &store.AccountState{Key: key, Ledger: l, Quota: tracker}, nil
}
