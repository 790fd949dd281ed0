package store

import (
	"errors"
	"fmt"

	"branch-banking-go/internal/ledger"
	"branch-banking-go/internal/quota"
)

// Sentinel errors shared across all account store implementations.
var (
	// ErrCorruptRecord means a record exists for the key but cannot be
	// parsed or fails its integrity checks. Callers decide whether to
	// start the session from a fresh state; the store never drops the
	// record silently.
	ErrCorruptRecord = errors.New("corrupt account record")

	// ErrWriteFailed means a save did not complete. The previous durable
	// state was restored from backup before this was returned.
	ErrWriteFailed = errors.New("account store write failed")
)

// AccountKey uniquely identifies an account in the backing store. Immutable
// once created.
type AccountKey struct {
	HolderID      string
	BranchCode    string
	AccountNumber int64
}

// String renders the record key used in the backing store.
func (k AccountKey) String() string {
	return fmt.Sprintf("%s-%s-%d", k.HolderID, k.BranchCode, k.AccountNumber)
}

// AccountState is everything the core tracks for one account: its ledger
// and its daily quota counters. The state is owned by exactly one session
// at a time and flows explicitly through every operation; there is no
// process-wide account state.
type AccountState struct {
	Key    AccountKey
	Ledger *ledger.Ledger
	Quota  *quota.Tracker
}

// AccountStore is the durable persistence contract every backend must
// satisfy.
type AccountStore interface {
	// Load returns the stored state for key, or a fresh zero-balance,
	// zero-quota state when no record exists. A record that exists but
	// cannot be parsed yields ErrCorruptRecord.
	Load(key AccountKey) (*AccountState, error)

	// Save durably replaces the record for key, leaving every other
	// account's record untouched. On failure the previous file contents
	// are restored and ErrWriteFailed is returned.
	Save(key AccountKey, state *AccountState) error

	// Fresh builds the zero state Load would return for an unknown key.
	// Used by callers that choose to continue after ErrCorruptRecord.
	Fresh(key AccountKey) *AccountState

	Close()
}
