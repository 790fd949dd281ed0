package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"branch-banking-go/internal/money"
	"branch-banking-go/internal/quota"

	"gopkg.in/yaml.v2"
)

// Limits are the branch's fixed operating constants. They are read once at
// startup; nothing edits them at runtime.
type Limits struct {
	PerWithdrawalLimit     money.Money
	DailyOperationLimit    int
	DailyWithdrawalLimit   int
	WithdrawalExtensionFee money.Money
	OperationExtensionFee  money.Money
	BranchCode             string
}

// limitsFile is the YAML shape; monetary values are decimal strings so the
// file can never smuggle in float precision.
type limitsFile struct {
	PerWithdrawalLimit     string `yaml:"per_withdrawal_limit"`
	DailyOperationLimit    int    `yaml:"daily_operation_limit"`
	DailyWithdrawalLimit   int    `yaml:"daily_withdrawal_limit"`
	WithdrawalExtensionFee string `yaml:"withdrawal_extension_fee"`
	OperationExtensionFee  string `yaml:"operation_extension_fee"`
	BranchCode             string `yaml:"branch_code"`
}

// DefaultLimits returns the branch's standard table: 500.00 per withdrawal,
// 10 operations and 3 withdrawals a day, 0.50 for either extension.
func DefaultLimits() Limits {
	return Limits{
		PerWithdrawalLimit:     money.MustParse("500.00"),
		DailyOperationLimit:    10,
		DailyWithdrawalLimit:   3,
		WithdrawalExtensionFee: money.MustParse("0.50"),
		OperationExtensionFee:  money.MustParse("0.50"),
		BranchCode:             "0001",
	}
}

// LoadLimits reads the limits YAML file, falling back to DefaultLimits when
// the file does not exist. A present-but-invalid file is an error, not a
// silent fallback.
func LoadLimits(limitsPath string) (Limits, error) {
	if !filepath.IsAbs(limitsPath) {
		wd, err := os.Getwd()
		if err != nil {
			return Limits{}, fmt.Errorf("failed to get working directory: %w", err)
		}
		limitsPath = filepath.Join(wd, limitsPath)
	}

	data, err := os.ReadFile(limitsPath)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultLimits(), nil
	}
	if err != nil {
		return Limits{}, fmt.Errorf("unable to read %s: %w", limitsPath, err)
	}

	var file limitsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Limits{}, fmt.Errorf("unable to parse %s: %w", limitsPath, err)
	}

	limits := DefaultLimits()
	if file.PerWithdrawalLimit != "" {
		if limits.PerWithdrawalLimit, err = money.Parse(file.PerWithdrawalLimit); err != nil {
			return Limits{}, fmt.Errorf("per_withdrawal_limit: %w", err)
		}
	}
	if file.WithdrawalExtensionFee != "" {
		if limits.WithdrawalExtensionFee, err = money.Parse(file.WithdrawalExtensionFee); err != nil {
			return Limits{}, fmt.Errorf("withdrawal_extension_fee: %w", err)
		}
	}
	if file.OperationExtensionFee != "" {
		if limits.OperationExtensionFee, err = money.Parse(file.OperationExtensionFee); err != nil {
			return Limits{}, fmt.Errorf("operation_extension_fee: %w", err)
		}
	}
	if file.DailyOperationLimit != 0 {
		limits.DailyOperationLimit = file.DailyOperationLimit
	}
	if file.DailyWithdrawalLimit != 0 {
		limits.DailyWithdrawalLimit = file.DailyWithdrawalLimit
	}
	if file.BranchCode != "" {
		limits.BranchCode = file.BranchCode
	}

	if err := limits.validate(); err != nil {
		return Limits{}, fmt.Errorf("invalid limits in %s: %w", limitsPath, err)
	}
	return limits, nil
}

func (l Limits) validate() error {
	if !l.PerWithdrawalLimit.IsPositive() {
		return fmt.Errorf("per-withdrawal limit must be positive, got %s", l.PerWithdrawalLimit)
	}
	if l.DailyOperationLimit <= 0 {
		return fmt.Errorf("daily operation limit must be positive, got %d", l.DailyOperationLimit)
	}
	if l.DailyWithdrawalLimit <= 0 {
		return fmt.Errorf("daily withdrawal limit must be positive, got %d", l.DailyWithdrawalLimit)
	}
	if !l.WithdrawalExtensionFee.IsPositive() || !l.OperationExtensionFee.IsPositive() {
		return fmt.Errorf("extension fees must be positive")
	}
	if l.BranchCode == "" {
		return fmt.Errorf("branch code must not be empty")
	}
	return nil
}

// QuotaLimits projects the daily counters for the quota tracker.
func (l Limits) QuotaLimits() quota.Limits {
	return quota.Limits{
		DailyOperations:  l.DailyOperationLimit,
		DailyWithdrawals: l.DailyWithdrawalLimit,
	}
}

// ExtensionPolicy builds the fee policy from the table.
func (l Limits) ExtensionPolicy() quota.ExtensionPolicy {
	return quota.ExtensionPolicy{
		WithdrawalFee: l.WithdrawalExtensionFee,
		OperationFee:  l.OperationExtensionFee,
	}
}
