package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLimits_MissingFileFallsBackToDefaults(t *testing.T) {
	limits, err := LoadLimits(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadLimits failed: %v", err)
	}
	if limits.PerWithdrawalLimit.String() != "500.00" {
		t.Errorf("Expected default per-withdrawal limit 500.00, got %s", limits.PerWithdrawalLimit)
	}
	if limits.DailyOperationLimit != 10 || limits.DailyWithdrawalLimit != 3 {
		t.Errorf("Expected default daily limits 10/3, got %d/%d",
			limits.DailyOperationLimit, limits.DailyWithdrawalLimit)
	}
	if limits.BranchCode != "0001" {
		t.Errorf("Expected default branch code 0001, got %s", limits.BranchCode)
	}
}

func TestLoadLimits_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.yaml")
	content := `per_withdrawal_limit: "250.00"
daily_withdrawal_limit: 2
withdrawal_extension_fee: "1.25"
branch_code: "0042"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write limits file: %v", err)
	}

	limits, err := LoadLimits(path)
	if err != nil {
		t.Fatalf("LoadLimits failed: %v", err)
	}
	if limits.PerWithdrawalLimit.String() != "250.00" {
		t.Errorf("Expected per-withdrawal limit 250.00, got %s", limits.PerWithdrawalLimit)
	}
	if limits.DailyWithdrawalLimit != 2 {
		t.Errorf("Expected daily withdrawal limit 2, got %d", limits.DailyWithdrawalLimit)
	}
	if limits.WithdrawalExtensionFee.String() != "1.25" {
		t.Errorf("Expected withdrawal extension fee 1.25, got %s", limits.WithdrawalExtensionFee)
	}
	// Unset keys keep their defaults.
	if limits.DailyOperationLimit != 10 {
		t.Errorf("Expected default daily operation limit 10, got %d", limits.DailyOperationLimit)
	}
	if limits.BranchCode != "0042" {
		t.Errorf("Expected branch code 0042, got %s", limits.BranchCode)
	}
}

func TestLoadLimits_RejectsBadMoney(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.yaml")
	if err := os.WriteFile(path, []byte("per_withdrawal_limit: \"500.123\"\n"), 0o644); err != nil {
		t.Fatalf("Failed to write limits file: %v", err)
	}
	if _, err := LoadLimits(path); err == nil {
		t.Error("Expected error for excess-precision limit")
	}
}
