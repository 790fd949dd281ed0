package ledger

import (
	"errors"
	"testing"

	"branch-banking-go/internal/money"
)

func TestDeposit_IncreasesBalanceAndAppendsHistory(t *testing.T) {
	l := New()
	amount := money.MustParse("100.00")

	receipt, err := l.Deposit(amount)
	if err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if !receipt.Balance.Equal(amount) {
		t.Errorf("Expected balance 100.00, got %s", receipt.Balance)
	}
	if !l.Balance().Equal(amount) {
		t.Errorf("Expected ledger balance 100.00, got %s", l.Balance())
	}

	var last Transaction
	for tx := range l.History() {
		last = tx
	}
	if last.Kind != KindDeposit || !last.Amount.Equal(amount) {
		t.Errorf("Expected last entry Deposit(100.00), got %s(%s)", last.Kind, last.Amount)
	}
}

func TestDeposit_InvalidAmountLeavesStateUnchanged(t *testing.T) {
	l := New()
	if _, err := l.Deposit(money.MustParse("10.00")); err != nil {
		t.Fatalf("seed deposit failed: %v", err)
	}

	for _, amount := range []money.Money{
		money.Zero(),
		money.MustParse("-5.00"),
	} {
		_, err := l.Deposit(amount)
		if !errors.Is(err, money.ErrInvalidAmount) {
			t.Errorf("Deposit(%s): expected ErrInvalidAmount, got %v", amount, err)
		}
	}

	if !l.Balance().Equal(money.MustParse("10.00")) {
		t.Errorf("Balance changed on failed deposit: %s", l.Balance())
	}
	if l.Size() != 1 {
		t.Errorf("History changed on failed deposit: %d entries", l.Size())
	}
}

func TestWithdraw_ExceedsPerWithdrawalLimit(t *testing.T) {
	l := New()
	if _, err := l.Deposit(money.MustParse("1000.00")); err != nil {
		t.Fatalf("seed deposit failed: %v", err)
	}

	_, err := l.Withdraw(money.MustParse("500.01"), money.MustParse("500.00"))
	if !errors.Is(err, ErrExceedsWithdrawalLimit) {
		t.Fatalf("Expected ErrExceedsWithdrawalLimit, got %v", err)
	}

	var limitErr *ExceedsLimitError
	if !errors.As(err, &limitErr) {
		t.Fatal("Expected ExceedsLimitError")
	}
	if !limitErr.Limit.Equal(money.MustParse("500.00")) {
		t.Errorf("Expected limit 500.00 in error, got %s", limitErr.Limit)
	}
	if !l.Balance().Equal(money.MustParse("1000.00")) {
		t.Errorf("Balance changed on blocked withdrawal: %s", l.Balance())
	}
}

func TestWithdraw_InsufficientFundsReportsExactShortfall(t *testing.T) {
	l := New()
	if _, err := l.Deposit(money.MustParse("100.00")); err != nil {
		t.Fatalf("seed deposit failed: %v", err)
	}

	_, err := l.Withdraw(money.MustParse("150.75"), money.MustParse("500.00"))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}

	var fundsErr *InsufficientFundsError
	if !errors.As(err, &fundsErr) {
		t.Fatal("Expected InsufficientFundsError")
	}
	if !fundsErr.Shortfall.Equal(money.MustParse("50.75")) {
		t.Errorf("Expected shortfall 50.75, got %s", fundsErr.Shortfall)
	}
}

func TestWithdraw_FullBalanceSucceeds(t *testing.T) {
	l := New()
	if _, err := l.Deposit(money.MustParse("100.00")); err != nil {
		t.Fatalf("seed deposit failed: %v", err)
	}

	// Withdrawing exactly the balance is allowed; only amount > balance fails.
	receipt, err := l.Withdraw(money.MustParse("100.00"), money.MustParse("500.00"))
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if !receipt.Balance.IsZero() {
		t.Errorf("Expected balance 0.00, got %s", receipt.Balance)
	}
}

func TestChargeFee(t *testing.T) {
	l := New()
	if _, err := l.Deposit(money.MustParse("1.00")); err != nil {
		t.Fatalf("seed deposit failed: %v", err)
	}

	receipt, err := l.ChargeFee(KindWithdrawalExtensionFee, money.MustParse("0.50"))
	if err != nil {
		t.Fatalf("ChargeFee failed: %v", err)
	}
	if !receipt.Balance.Equal(money.MustParse("0.50")) {
		t.Errorf("Expected balance 0.50 after fee, got %s", receipt.Balance)
	}

	_, err = l.ChargeFee(KindOperationExtensionFee, money.MustParse("0.75"))
	var fundsErr *InsufficientFundsError
	if !errors.As(err, &fundsErr) {
		t.Fatalf("Expected InsufficientFundsError, got %v", err)
	}
	if !fundsErr.Shortfall.Equal(money.MustParse("0.25")) {
		t.Errorf("Expected shortfall 0.25, got %s", fundsErr.Shortfall)
	}

	if _, err := l.ChargeFee(KindDeposit, money.MustParse("0.10")); err == nil {
		t.Error("Expected error charging a non-fee kind")
	}
}

func TestHistory_IsRestartable(t *testing.T) {
	l := New()
	for _, amount := range []string{"10.00", "20.00", "30.00"} {
		if _, err := l.Deposit(money.MustParse(amount)); err != nil {
			t.Fatalf("Deposit failed: %v", err)
		}
	}

	first := 0
	for range l.History() {
		first++
	}
	second := 0
	for range l.History() {
		second++
	}
	if first != 3 || second != 3 {
		t.Errorf("History not restartable: first pass %d, second pass %d", first, second)
	}
}

func TestRestore_VerifiesRunningSum(t *testing.T) {
	history := []Transaction{
		{Kind: KindDeposit, Amount: money.MustParse("100.00")},
		{Kind: KindWithdrawal, Amount: money.MustParse("30.00")},
		{Kind: KindWithdrawalExtensionFee, Amount: money.MustParse("0.50")},
		{Kind: KindStatementPrint, Amount: money.Zero()},
	}

	l, err := Restore(money.MustParse("69.50"), history)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if !l.Balance().Equal(money.MustParse("69.50")) {
		t.Errorf("Expected balance 69.50, got %s", l.Balance())
	}

	if _, err := Restore(money.MustParse("70.00"), history); err == nil {
		t.Error("Expected error restoring with mismatched balance")
	}

	bad := []Transaction{{Kind: Kind("transfer"), Amount: money.MustParse("1.00")}}
	if _, err := Restore(money.MustParse("1.00"), bad); err == nil {
		t.Error("Expected error restoring with unknown kind")
	}
}

// Walks the full deposit/withdraw scenario: a cap breach and a full-balance
// withdrawal around a 100.00 deposit.
func TestScenario_DepositThenWithdrawals(t *testing.T) {
	limit := money.MustParse("500.00")
	l := New()

	if _, err := l.Deposit(money.MustParse("100.00")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	if _, err := l.Withdraw(money.MustParse("500.01"), limit); !errors.Is(err, ErrExceedsWithdrawalLimit) {
		t.Fatalf("Expected ErrExceedsWithdrawalLimit, got %v", err)
	}
	if !l.Balance().Equal(money.MustParse("100.00")) {
		t.Fatalf("Balance changed after blocked withdrawal: %s", l.Balance())
	}

	receipt, err := l.Withdraw(money.MustParse("100.00"), limit)
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if !receipt.Balance.IsZero() {
		t.Errorf("Expected balance 0.00, got %s", receipt.Balance)
	}
	if l.Size() != 3 {
		t.Errorf("Expected 3 history entries, got %d", l.Size())
	}
}
