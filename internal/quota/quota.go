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

package quota

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Sentinel errors raised when a daily quota is exhausted. Both may be
// resolved by purchasing an extension through the ExtensionPolicy.
var (
	ErrDailyOperationLimit  = errors.New("daily operation limit reached")
	ErrDailyWithdrawalLimit = errors.New("daily withdrawal limit reached")
)

// Limits are the fixed daily allowances an account starts each day with.
type Limits struct {
	DailyOperations  int
	DailyWithdrawals int
}

// Tracker counts an account's operations and withdrawals for the current
// calendar day. Counters reset on the first touch of a new day; purchased
// extensions widen the operation allowance for that day only.
type Tracker struct {
	limits              Limits
	lastReset           time.Time
	operationsUsed      int
	withdrawalsUsed     int
	purchasedExtensions int
}

func NewTracker(today time.Time, limits Limits) *Tracker {
	return &Tracker{
		limits:    limits,
		lastReset: civilDate(today),
	}
}

// RestoreTracker rebuilds a tracker from persisted counters.
func RestoreTracker(lastReset time.Time, operationsUsed, withdrawalsUsed, purchasedExtensions int, limits Limits) (*Tracker, error) {
	if operationsUsed < 0 || withdrawalsUsed < 0 || purchasedExtensions < 0 {
		return nil, fmt.Errorf("negative quota counter (operations=%d withdrawals=%d extensions=%d)",
			operationsUsed, withdrawalsUsed, purchasedExtensions)
	}
	return &Tracker{
		limits:              limits,
		lastReset:           civilDate(lastReset),
		operationsUsed:      operationsUsed,
		withdrawalsUsed:     withdrawalsUsed,
		purchasedExtensions: purchasedExtensions,
	}, nil
}

// RolloverIfNewDay resets all counters, purchased extensions included, when
// today differs from the last reset date. Calling it again on the same day
// is a no-op. It must run before every quota check so a process spanning
// midnight still counts against the correct day. Returns whether a reset
// happened so the caller can announce the fresh allowances.
func (t *Tracker) RolloverIfNewDay(today time.Time) bool {
	day := civilDate(today)
	if day.Equal(t.lastReset) {
		return false
	}
	zap.L().Info("Daily quota rollover",
		zap.String("previous_day", t.lastReset.Format("2006-01-02")),
		zap.String("new_day", day.Format("2006-01-02")),
		zap.Int("operations_dropped", t.operationsUsed),
		zap.Int("withdrawals_dropped", t.withdrawalsUsed),
		zap.Int("extensions_dropped", t.purchasedExtensions))

	t.lastReset = day
	t.operationsUsed = 0
	t.withdrawalsUsed = 0
	t.purchasedExtensions = 0
	return true
}

// CanPerformOperation reports whether another operation fits in today's
// allowance, counting purchased extensions.
func (t *Tracker) CanPerformOperation() bool {
	return t.operationsUsed < t.limits.DailyOperations+t.purchasedExtensions
}

func (t *Tracker) CanWithdraw() bool {
	return t.withdrawalsUsed < t.limits.DailyWithdrawals
}

// RecordOperation must be called only after the corresponding ledger
// operation succeeded; there are no speculative increments.
func (t *Tracker) RecordOperation() {
	t.operationsUsed++
}

func (t *Tracker) RecordWithdrawal() {
	t.withdrawalsUsed++
}

// PurchaseExtension grows today's operation allowance by one. The fee is
// charged separately through the ledger by the ExtensionPolicy.
func (t *Tracker) PurchaseExtension() {
	t.purchasedExtensions++
}

func (t *Tracker) LastReset() time.Time {
	return t.lastReset
}

func (t *Tracker) OperationsUsed() int {
	return t.operationsUsed
}

func (t *Tracker) WithdrawalsUsed() int {
	return t.withdrawalsUsed
}

func (t *Tracker) PurchasedExtensions() int {
	return t.purchasedExtensions
}

// OperationAllowance is today's total operation budget.
func (t *Tracker) OperationAllowance() int {
	return t.limits.DailyOperations + t.purchasedExtensions
}

func (t *Tracker) WithdrawalLimit() int {
	return t.limits.DailyWithdrawals
}

// civilDate truncates an instant to its UTC calendar date.
func civilDate(ts time.Time) time.Time {
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
