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

package ledger

import (
	"fmt"
	"iter"
	"time"

	"branch-banking-go/internal/money"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind classifies a ledger transaction. Amounts are stored as positive
// magnitudes; the kind determines whether the balance goes up or down.
type Kind string

const (
	KindDeposit                Kind = "deposit"
	KindWithdrawal             Kind = "withdrawal"
	KindWithdrawalExtensionFee Kind = "withdrawal_extension_fee"
	KindOperationExtensionFee  Kind = "operation_extension_fee"
	KindStatementPrint         Kind = "statement_print"
)

// Valid reports whether k is one of the known transaction kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindWithdrawalExtensionFee,
		KindOperationExtensionFee, KindStatementPrint:
		return true
	}
	return false
}

// sign is the balance effect of one unit of this kind.
func (k Kind) sign() int {
	switch k {
	case KindDeposit:
		return 1
	case KindStatementPrint:
		return 0
	default:
		return -1
	}
}

// Transaction is one immutable entry in an account's history.
type Transaction struct {
	Kind      Kind
	Amount    money.Money
	Timestamp time.Time
}

// Receipt is returned to the caller after every successful mutation. The
// reference is for operator display only and is not persisted.
type Receipt struct {
	Reference string
	Kind      Kind
	Amount    money.Money
	Balance   money.Money
	Timestamp time.Time
}

// Ledger is the append-only transaction log plus derived balance for one
// account. The balance is always the running sum of the history; every
// mutation appends exactly one transaction. Failed operations leave both
// untouched.
type Ledger struct {
	balance money.Money
	history []Transaction
	now     func() time.Time
}

func New() *Ledger {
	return &Ledger{now: time.Now}
}

// Restore rebuilds a ledger from persisted state and verifies the stored
// balance against the running sum of the history. A mismatch means the
// record was tampered with or damaged and the caller must treat it as
// corrupt rather than trusting either number.
func Restore(balance money.Money, history []Transaction) (*Ledger, error) {
	running := money.Zero()
	for i, tx := range history {
		if !tx.Kind.Valid() {
			return nil, fmt.Errorf("history entry %d: unknown kind %q", i, tx.Kind)
		}
		if tx.Amount.Cmp(money.Zero()) < 0 {
			return nil, fmt.Errorf("history entry %d: negative amount %s", i, tx.Amount)
		}
		switch tx.Kind.sign() {
		case 1:
			running = running.Add(tx.Amount)
		case -1:
			running = running.Sub(tx.Amount)
		}
	}
	if !running.Equal(balance) {
		return nil, fmt.Errorf("stored balance %s does not match history sum %s", balance, running)
	}
	l := New()
	l.balance = balance
	l.history = append(l.history, history...)
	return l, nil
}

func (l *Ledger) Balance() money.Money {
	return l.balance
}

// Empty reports whether the account has no recorded movements.
func (l *Ledger) Empty() bool {
	return len(l.history) == 0
}

func (l *Ledger) Size() int {
	return len(l.history)
}

// Deposit credits the account. The amount must be positive with at most two
// decimal places; anything else fails with money.ErrInvalidAmount and leaves
// the ledger untouched.
func (l *Ledger) Deposit(amount money.Money) (*Receipt, error) {
	if !amount.IsPositive() || !amount.HasAtMostTwoFractionalDigits() {
		return nil, fmt.Errorf("%w: deposit must be positive with at most two decimal places", money.ErrInvalidAmount)
	}
	l.balance = l.balance.Add(amount)
	receipt := l.append(KindDeposit, amount)

	zap.L().Info("Deposit recorded",
		zap.String("amount", amount.String()),
		zap.String("balance", l.balance.String()))
	return receipt, nil
}

// Withdraw debits the account. Checks run in order: amount validity, the
// per-withdrawal cap, then available funds. Daily withdrawal quotas are the
// caller's concern and must be settled before this is reached.
func (l *Ledger) Withdraw(amount, limitPerWithdrawal money.Money) (*Receipt, error) {
	if !amount.IsPositive() || !amount.HasAtMostTwoFractionalDigits() {
		return nil, fmt.Errorf("%w: withdrawal must be positive with at most two decimal places", money.ErrInvalidAmount)
	}
	if amount.Cmp(limitPerWithdrawal) > 0 {
		return nil, &ExceedsLimitError{Limit: limitPerWithdrawal}
	}
	if amount.Cmp(l.balance) > 0 {
		return nil, &InsufficientFundsError{Shortfall: amount.Sub(l.balance)}
	}
	l.balance = l.balance.Sub(amount)
	receipt := l.append(KindWithdrawal, amount)

	zap.L().Info("Withdrawal recorded",
		zap.String("amount", amount.String()),
		zap.String("balance", l.balance.String()))
	return receipt, nil
}

// ChargeFee debits a quota-extension fee. kind must be one of the two fee
// kinds. Fails with the shortfall when the balance cannot cover the fee, in
// which case nothing is charged.
func (l *Ledger) ChargeFee(kind Kind, fee money.Money) (*Receipt, error) {
	if kind != KindWithdrawalExtensionFee && kind != KindOperationExtensionFee {
		return nil, fmt.Errorf("%q is not a fee kind", kind)
	}
	if !fee.IsPositive() || !fee.HasAtMostTwoFractionalDigits() {
		return nil, fmt.Errorf("%w: fee must be positive with at most two decimal places", money.ErrInvalidAmount)
	}
	if fee.Cmp(l.balance) > 0 {
		return nil, &InsufficientFundsError{Shortfall: fee.Sub(l.balance)}
	}
	l.balance = l.balance.Sub(fee)
	receipt := l.append(kind, fee)

	zap.L().Info("Extension fee charged",
		zap.String("kind", string(kind)),
		zap.String("fee", fee.String()),
		zap.String("balance", l.balance.String()))
	return receipt, nil
}

// NoteStatementPrinted appends the zero-amount marker for a printed
// statement. The balance is unchanged.
func (l *Ledger) NoteStatementPrinted() *Receipt {
	return l.append(KindStatementPrint, money.Zero())
}

func (l *Ledger) append(kind Kind, amount money.Money) *Receipt {
	ts := l.now().UTC()
	l.history = append(l.history, Transaction{Kind: kind, Amount: amount, Timestamp: ts})
	return &Receipt{
		Reference: uuid.New().String(),
		Kind:      kind,
		Amount:    amount,
		Balance:   l.balance,
		Timestamp: ts,
	}
}

// History yields the transactions in chronological (append) order. The
// sequence is read-only and restartable; ranging over it twice replays from
// the beginning.
func (l *Ledger) History() iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.history {
			if !yield(tx) {
				return
			}
		}
	}
}
