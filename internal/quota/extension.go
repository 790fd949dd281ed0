package quota

import (
	"errors"

	"branch-banking-go/internal/ledger"
	"branch-banking-go/internal/money"

	"go.uber.org/zap"
)

// ErrExtensionDeclined means the operator turned the offer down. Terminal
// for that request; nothing was charged and no counter moved.
var ErrExtensionDeclined = errors.New("extension declined")

// ExtensionPolicy encodes the pay-a-fixed-fee-to-exceed-a-daily-limit rule.
// The policy only exposes decision points; prompting the operator for the
// accept/decline answer is the caller's job.
type ExtensionPolicy struct {
	WithdrawalFee money.Money
	OperationFee  money.Money
}

// RequestWithdrawalExtension charges the withdrawal-extension fee so that
// exactly one more withdrawal may proceed today. The caller is responsible
// for letting that single withdrawal through without counting it; the
// tracker's withdrawalsUsed stays where it is.
func (p ExtensionPolicy) RequestWithdrawalExtension(l *ledger.Ledger, accepted bool) (*ledger.Receipt, error) {
	if !accepted {
		zap.L().Info("Withdrawal extension declined")
		return nil, ErrExtensionDeclined
	}
	receipt, err := l.ChargeFee(ledger.KindWithdrawalExtensionFee, p.WithdrawalFee)
	if err != nil {
		return nil, err
	}
	zap.L().Info("Withdrawal extension purchased",
		zap.String("fee", p.WithdrawalFee.String()),
		zap.String("balance", receipt.Balance.String()))
	return receipt, nil
}

// RequestOperationExtension charges the operation-extension fee and grows
// today's operation budget by one. Declining alters nothing.
func (p ExtensionPolicy) RequestOperationExtension(l *ledger.Ledger, t *Tracker, accepted bool) (*ledger.Receipt, error) {
	if !accepted {
		zap.L().Info("Operation extension declined")
		return nil, ErrExtensionDeclined
	}
	receipt, err := l.ChargeFee(ledger.KindOperationExtensionFee, p.OperationFee)
	if err != nil {
		return nil, err
	}
	t.PurchaseExtension()
	zap.L().Info("Operation extension purchased",
		zap.String("fee", p.OperationFee.String()),
		zap.Int("operation_allowance", t.OperationAllowance()))
	return receipt, nil
}
