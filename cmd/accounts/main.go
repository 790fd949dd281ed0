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
	"context"
	"errors"
	"flag"
	"fmt"

	"branch-banking-go/internal/common"
	"branch-banking-go/internal/config"
	"branch-banking-go/internal/models"
	"branch-banking-go/internal/store"

	"go.uber.org/zap"
)

type accountStats struct {
	totalAccounts   int
	unreadable      int
	totalOperations int
}

func printHolderHeader(holder *models.Holder, accountCount int) {
	fmt.Printf("\n┌─ Holder: %s (%s)\n", holder.Name, common.FormatCPF(holder.CPF))
	fmt.Printf("│  Accounts: %d\n", accountCount)
	common.PrintBoxSeparator(78)
}

func printAccount(services *common.Services, account models.Account, isLast bool, stats *accountStats) {
	prefix := common.BoxPrefix(isLast)
	key := store.AccountKey{
		HolderID:      account.HolderCPF,
		BranchCode:    account.BranchCode,
		AccountNumber: account.AccountNumber,
	}

	state, err := services.Accounts.Load(key)
	if err != nil {
		if errors.Is(err, store.ErrCorruptRecord) {
			stats.unreadable++
			fmt.Printf("%s %s/%-6d: (record unreadable)\n", prefix, account.BranchCode, account.AccountNumber)
			return
		}
		zap.L().Error("Failed to load account state",
			zap.String("account", key.String()),
			zap.Error(err))
		stats.unreadable++
		fmt.Printf("%s %s/%-6d: (load failed)\n", prefix, account.BranchCode, account.AccountNumber)
		return
	}

	stats.totalOperations += state.Ledger.Size()
	fmt.Printf("%s %s/%-6d: %18s (%d transactions, opened %s)\n",
		prefix,
		account.BranchCode,
		account.AccountNumber,
		common.FormatBRL(state.Ledger.Balance()),
		state.Ledger.Size(),
		account.CreatedAt.Format("2006-01-02"))
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cpfFlag := flag.String("cpf", "", "Holder CPF (required)")
	flag.Parse()

	if *cpfFlag == "" {
		zap.L().Fatal("The --cpf flag is required")
	}
	cpf, err := common.NormalizeCPF(*cpfFlag)
	if err != nil {
		zap.L().Fatal("Invalid CPF", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	holder, err := services.Directory.GetHolder(ctx, cpf)
	if err != nil {
		zap.L().Fatal("Holder not found", zap.String("cpf", cpf), zap.Error(err))
	}

	accounts, err := services.Directory.ListAccounts(ctx, cpf)
	if err != nil {
		zap.L().Fatal("Failed to list accounts", zap.Error(err))
	}

	common.PrintHeader("ACCOUNT REPORT", common.DefaultWidth)

	stats := accountStats{totalAccounts: len(accounts)}
	if len(accounts) == 0 {
		fmt.Println("No accounts registered for this holder.")
	} else {
		printHolderHeader(holder, len(accounts))
		for i, account := range accounts {
			printAccount(services, account, i == len(accounts)-1, &stats)
		}
	}

	summary := fmt.Sprintf("SUMMARY: %d accounts, %d transactions on record, %d unreadable",
		stats.totalAccounts, stats.totalOperations, stats.unreadable)
	common.PrintFooter(summary, common.DefaultWidth)

	zap.L().Info("Account report completed",
		zap.String("cpf", cpf),
		zap.Int("accounts", stats.totalAccounts),
		zap.Int("unreadable", stats.unreadable))
}
