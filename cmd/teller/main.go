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

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"branch-banking-go/internal/common"
	"branch-banking-go/internal/config"
	"branch-banking-go/internal/ledger"
	"branch-banking-go/internal/money"
	"branch-banking-go/internal/quota"
	"branch-banking-go/internal/session"
	"branch-banking-go/internal/store"

	"go.uber.org/zap"
)

const menu = `
[d] Deposit
[s] Withdraw
[e] View statement
[i] Print statement
[q] Logout
`

type tellerFlags struct {
	cpf     string
	branch  string
	account int64
}

func parseAndValidateFlags(defaultBranch string) (*tellerFlags, error) {
	cpfFlag := flag.String("cpf", "", "Account holder CPF (required)")
	branchFlag := flag.String("branch", defaultBranch, "Branch code")
	accountFlag := flag.Int64("account", 0, "Account number (required)")
	flag.Parse()

	if *cpfFlag == "" || *accountFlag == 0 {
		return nil, fmt.Errorf("both flags are required: --cpf and --account")
	}

	cpf, err := common.NormalizeCPF(*cpfFlag)
	if err != nil {
		return nil, err
	}

	return &tellerFlags{
		cpf:     cpf,
		branch:  *branchFlag,
		account: *accountFlag,
	}, nil
}

// openSession loads the account, falling back to a fresh state when the
// stored record is unreadable. The operator is told either way.
func openSession(services *common.Services, key store.AccountKey) (*session.Session, error) {
	sess, err := session.New(services.Accounts, key, services.Limits)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, store.ErrCorruptRecord) {
		return nil, err
	}

	zap.L().Warn("Stored record unreadable, starting from an empty account",
		zap.String("account", key.String()),
		zap.Error(err))
	fmt.Println("⚠ The stored record for this account could not be read.")
	fmt.Println("  Continuing with an empty account; the next logout will overwrite it.")

	return session.Resume(services.Accounts, services.Accounts.Fresh(key), services.Limits), nil
}

func promptAmount(reader *bufio.Reader, what string) (money.Money, error) {
	fmt.Printf("%s amount: ", what)
	line, err := reader.ReadString('\n')
	if err != nil {
		return money.Zero(), err
	}
	// Operators type amounts the Brazilian way; accept both separators.
	raw := strings.ReplaceAll(strings.TrimSpace(line), ",", ".")
	return money.Parse(raw)
}

func promptYesNo(reader *bufio.Reader, question string) bool {
	fmt.Printf("%s [s/n]: ", question)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "s" || answer == "sim" || answer == "y" || answer == "yes"
}

// resolveQuotaBlock offers the matching paid extension for a quota error and
// reports whether the blocked operation should be retried. Any other error
// passes through untouched.
func resolveQuotaBlock(reader *bufio.Reader, sess *session.Session, err error) (bool, error) {
	switch {
	case errors.Is(err, quota.ErrDailyWithdrawalLimit):
		fmt.Println("\nDaily withdrawal limit reached.")
		accepted := promptYesNo(reader,
			fmt.Sprintf("Pay %s for one extra withdrawal today?", common.FormatBRL(sess.Policy().WithdrawalFee)))
		receipt, extErr := sess.RequestWithdrawalExtension(accepted)
		if extErr != nil {
			return false, extErr
		}
		fmt.Printf("Fee charged: %s (new balance %s)\n",
			common.FormatBRL(receipt.Amount), common.FormatBRL(receipt.Balance))
		return true, nil

	case errors.Is(err, quota.ErrDailyOperationLimit):
		fmt.Println("\nDaily operation limit reached.")
		accepted := promptYesNo(reader,
			fmt.Sprintf("Pay %s for one extra operation today?", common.FormatBRL(sess.Policy().OperationFee)))
		receipt, extErr := sess.RequestOperationExtension(accepted)
		if extErr != nil {
			return false, extErr
		}
		fmt.Printf("Fee charged: %s (new balance %s)\n",
			common.FormatBRL(receipt.Amount), common.FormatBRL(receipt.Balance))
		return true, nil
	}
	return false, err
}

func printOperationError(err error) {
	var insufficient *ledger.InsufficientFundsError
	var exceedsLimit *ledger.ExceedsLimitError

	switch {
	case errors.As(err, &insufficient):
		fmt.Printf("✗ Insufficient funds: short by %s\n", common.FormatBRL(insufficient.Shortfall))
	case errors.As(err, &exceedsLimit):
		fmt.Printf("✗ Amount exceeds the per-withdrawal limit of %s\n", common.FormatBRL(exceedsLimit.Limit))
	case errors.Is(err, money.ErrInvalidAmount):
		fmt.Println("✗ Invalid amount: use a positive value with at most two decimal places")
	case errors.Is(err, quota.ErrExtensionDeclined):
		fmt.Println("Extension declined; the operation remains blocked for today.")
	case errors.Is(err, session.ErrNoTransactions):
		fmt.Println("No transactions recorded for this account.")
	default:
		fmt.Printf("✗ Operation failed: %v\n", err)
	}
}

func handleDeposit(reader *bufio.Reader, sess *session.Session) {
	amount, err := promptAmount(reader, "Deposit")
	if err != nil {
		printOperationError(err)
		return
	}

	receipt, err := sess.Deposit(amount)
	if err != nil {
		retry, resolved := resolveQuotaBlock(reader, sess, err)
		if !retry {
			printOperationError(resolved)
			return
		}
		receipt, err = sess.Deposit(amount)
		if err != nil {
			printOperationError(err)
			return
		}
	}
	fmt.Printf("✓ Deposited %s — balance %s\n",
		common.FormatBRL(receipt.Amount), common.FormatBRL(receipt.Balance))
}

func handleWithdraw(reader *bufio.Reader, sess *session.Session) {
	amount, err := promptAmount(reader, "Withdrawal")
	if err != nil {
		printOperationError(err)
		return
	}

	receipt, err := sess.Withdraw(amount)
	if err != nil {
		retry, resolved := resolveQuotaBlock(reader, sess, err)
		if !retry {
			printOperationError(resolved)
			return
		}
		receipt, err = sess.Withdraw(amount)
		if err != nil {
			printOperationError(err)
			return
		}
	}
	fmt.Printf("✓ Withdrew %s — balance %s\n",
		common.FormatBRL(receipt.Amount), common.FormatBRL(receipt.Balance))
}

func renderStatement(sess *session.Session) {
	common.PrintHeader(fmt.Sprintf("STATEMENT — account %s", sess.Key()), common.DefaultWidth)

	count := 0
	for tx := range sess.History() {
		count++
		fmt.Printf("%-25s %-22s %15s\n",
			tx.Timestamp.Format("2006-01-02 15:04:05"),
			tx.Kind,
			common.FormatBRL(tx.Amount))
	}
	if count == 0 {
		fmt.Println("No transactions recorded.")
	}

	common.PrintSeparator("-", common.DefaultWidth)
	status := sess.QuotaStatus()
	fmt.Printf("Balance: %s\n", common.FormatBRL(sess.Balance()))
	fmt.Printf("Today: %d/%d operations, %d/%d withdrawals\n",
		status.OperationsUsed, status.OperationAllowance,
		status.WithdrawalsUsed, status.WithdrawalLimit)
	common.PrintSeparator("=", common.DefaultWidth)
}

func handlePrintStatement(reader *bufio.Reader, sess *session.Session) {
	receipt, err := sess.PrintStatement()
	if err != nil {
		retry, resolved := resolveQuotaBlock(reader, sess, err)
		if !retry {
			printOperationError(resolved)
			return
		}
		receipt, err = sess.PrintStatement()
		if err != nil {
			printOperationError(err)
			return
		}
	}
	renderStatement(sess)
	fmt.Printf("Printed at %s (reference %s)\n",
		receipt.Timestamp.Format("2006-01-02 15:04:05"), receipt.Reference)
}

func runMenu(reader *bufio.Reader, sess *session.Session) error {
	for {
		fmt.Printf("%s\n", menu)
		fmt.Print("=> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			// EOF behaves like logout so the state is not lost.
			return sess.Logout()
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "d":
			handleDeposit(reader, sess)
		case "s":
			handleWithdraw(reader, sess)
		case "e":
			renderStatement(sess)
		case "i":
			handlePrintStatement(reader, sess)
		case "q":
			if err := sess.Logout(); err != nil {
				fmt.Printf("✗ Failed to save the account: %v\n", err)
				if !promptYesNo(reader, "Leave anyway and lose this session's changes?") {
					continue
				}
				return err
			}
			fmt.Println("Session saved. Goodbye.")
			return nil
		default:
			fmt.Println("Invalid option, please try again.")
		}
	}
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	flags, err := parseAndValidateFlags(services.Limits.BranchCode)
	if err != nil {
		zap.L().Fatal("Invalid flags", zap.Error(err))
	}

	key, err := services.Directory.ResolveAccount(ctx, flags.cpf, flags.branch, flags.account)
	if err != nil {
		fmt.Printf("✗ Account %s/%d not found for CPF %s\n",
			flags.branch, flags.account, common.FormatCPF(flags.cpf))
		zap.L().Fatal("Account not found", zap.Error(err))
	}

	holder, err := services.Directory.GetHolder(ctx, flags.cpf)
	if err != nil {
		zap.L().Fatal("Failed to load holder", zap.Error(err))
	}

	sess, err := openSession(services, *key)
	if err != nil {
		zap.L().Fatal("Failed to open session", zap.Error(err))
	}

	common.PrintHeader(fmt.Sprintf("WELCOME, %s", holder.Name), common.DefaultWidth)
	fmt.Printf("Account: %s  Balance: %s\n", sess.Key(), common.FormatBRL(sess.Balance()))

	if err := runMenu(bufio.NewReader(os.Stdin), sess); err != nil {
		os.Exit(1)
	}
}
