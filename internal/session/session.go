/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package session runs one operator's visit to one account. A session owns
// the account's state exclusively from login to logout: it settles the daily
// rollover before every operation, gates ledger mutations behind the quota,
// exposes the extension decision points, and persists the state on logout.
// All prompting and rendering belongs to the caller.
package session

import (
	"errors"
	"iter"
	"time"

	"branch-banking-go/internal/config"
	"branch-banking-go/internal/ledger"
	"branch-banking-go/internal/money"
	"branch-banking-go/internal/quota"
	"branch-banking-go/internal/store"

	"go.uber.org/zap"
)

// ErrNoTransactions means a statement was requested for an account with no
// movements; nothing is charged against the quota in that case.
var ErrNoTransactions = errors.New("no transactions recorded")

// QuotaStatus is a snapshot of today's usage for statement rendering.
type QuotaStatus struct {
	OperationsUsed     int
	OperationAllowance int
	WithdrawalsUsed    int
	WithdrawalLimit    int
}

type Session struct {
	accounts store.AccountStore
	state    *store.AccountState
	limits   config.Limits
	policy   quota.ExtensionPolicy
	now      func() time.Time

	// set by a paid withdrawal extension; lets exactly one withdrawal
	// through past the daily count without being counted itself
	withdrawalOverride bool
}

// New loads the account's state and opens a session on it. A corrupt stored
// record is surfaced as-is; callers that decide to continue anyway can build
// a fresh state with the store and use Resume.
func New(accounts store.AccountStore, key store.AccountKey, limits config.Limits) (*Session, error) {
	state, err := accounts.Load(key)
	if err != nil {
		return nil, err
	}
	return Resume(accounts, state, limits), nil
}

// Resume opens a session on an already-loaded state.
func Resume(accounts store.AccountStore, state *store.AccountState, limits config.Limits) *Session {
	s := &Session{
		accounts: accounts,
		state:    state,
		limits:   limits,
		policy:   limits.ExtensionPolicy(),
		now:      time.Now,
	}
	s.rollover()
	zap.L().Info("Session opened",
		zap.String("account", state.Key.String()),
		zap.String("balance", state.Ledger.Balance().String()))
	return s
}

// rollover settles the calendar-day boundary. It runs before every
// accounting operation so a session spanning midnight counts against the
// right day. A purchased one-shot withdrawal override does not survive
// into a new day either.
func (s *Session) rollover() bool {
	reset := s.state.Quota.RolloverIfNewDay(s.now())
	if reset {
		s.withdrawalOverride = false
	}
	return reset
}

// Deposit credits the account if today's operation allowance permits it.
// Returns quota.ErrDailyOperationLimit when the allowance is exhausted; the
// caller may resolve that through RequestOperationExtension and re-issue.
func (s *Session) Deposit(amount money.Money) (*ledger.Receipt, error) {
	s.rollover()
	if !s.state.Quota.CanPerformOperation() {
		return nil, quota.ErrDailyOperationLimit
	}
	receipt, err := s.state.Ledger.Deposit(amount)
	if err != nil {
		return nil, err
	}
	s.state.Quota.RecordOperation()
	return receipt, nil
}

// Withdraw debits the account subject to the operation allowance, the daily
// withdrawal count, the per-withdrawal cap and the balance. A withdrawal
// let through by a paid extension is not counted against withdrawalsUsed.
func (s *Session) Withdraw(amount money.Money) (*ledger.Receipt, error) {
	s.rollover()
	if !s.state.Quota.CanPerformOperation() {
		return nil, quota.ErrDailyOperationLimit
	}
	if !s.state.Quota.CanWithdraw() && !s.withdrawalOverride {
		return nil, quota.ErrDailyWithdrawalLimit
	}

	receipt, err := s.state.Ledger.Withdraw(amount, s.limits.PerWithdrawalLimit)
	if err != nil {
		return nil, err
	}

	if s.withdrawalOverride {
		s.withdrawalOverride = false
	} else {
		s.state.Quota.RecordWithdrawal()
	}
	s.state.Quota.RecordOperation()
	return receipt, nil
}

// RequestWithdrawalExtension charges the fixed fee and arms a one-shot
// override so the next withdrawal bypasses the exhausted daily count.
// Declining, or failing to cover the fee, changes nothing and the
// withdrawal stays blocked.
func (s *Session) RequestWithdrawalExtension(accepted bool) (*ledger.Receipt, error) {
	s.rollover()
	receipt, err := s.policy.RequestWithdrawalExtension(s.state.Ledger, accepted)
	if err != nil {
		return nil, err
	}
	s.withdrawalOverride = true
	return receipt, nil
}

// RequestOperationExtension charges the fixed fee and grows today's
// operation budget by one.
func (s *Session) RequestOperationExtension(accepted bool) (*ledger.Receipt, error) {
	s.rollover()
	return s.policy.RequestOperationExtension(s.state.Ledger, s.state.Quota, accepted)
}

// PrintStatement records the statement as a ledger event: it consumes one
// daily operation and appends a zero-amount marker. Use History for a free
// screen-only view.
func (s *Session) PrintStatement() (*ledger.Receipt, error) {
	s.rollover()
	if s.state.Ledger.Empty() {
		return nil, ErrNoTransactions
	}
	if !s.state.Quota.CanPerformOperation() {
		return nil, quota.ErrDailyOperationLimit
	}
	receipt := s.state.Ledger.NoteStatementPrinted()
	s.state.Quota.RecordOperation()
	return receipt, nil
}

// History yields the account's transactions in chronological order without
// touching any counter.
func (s *Session) History() iter.Seq[ledger.Transaction] {
	return s.state.Ledger.History()
}

func (s *Session) Balance() money.Money {
	return s.state.Ledger.Balance()
}

func (s *Session) Key() store.AccountKey {
	return s.state.Key
}

// Policy exposes the extension fees so callers can quote them before asking
// for consent.
func (s *Session) Policy() quota.ExtensionPolicy {
	return s.policy
}

func (s *Session) QuotaStatus() QuotaStatus {
	s.rollover()
	return QuotaStatus{
		OperationsUsed:     s.state.Quota.OperationsUsed(),
		OperationAllowance: s.state.Quota.OperationAllowance(),
		WithdrawalsUsed:    s.state.Quota.WithdrawalsUsed(),
		WithdrawalLimit:    s.state.Quota.WithdrawalLimit(),
	}
}

// Logout persists the session's state. The session stays usable if the save
// fails; the caller decides whether to retry or abandon.
func (s *Session) Logout() error {
	if err := s.accounts.Save(s.state.Key, s.state); err != nil {
		return err
	}
	zap.L().Info("Session closed",
		zap.String("account", s.state.Key.String()),
		zap.String("balance", s.state.Ledger.Balance().String()))
	return nil
}
