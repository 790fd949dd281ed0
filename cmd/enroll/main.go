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
	"branch-banking-go/internal/directory"
	"branch-banking-go/internal/models"

	"go.uber.org/zap"
)

type enrollRequest struct {
	cpf       string
	name      string
	birthDate string
	address   string
}

func parseAndValidateFlags() (*enrollRequest, error) {
	cpfFlag := flag.String("cpf", "", "Holder CPF (required)")
	nameFlag := flag.String("name", "", "Holder full name (required for new holders)")
	birthFlag := flag.String("birth", "", "Birth date, dd/mm/yyyy (optional)")
	addressFlag := flag.String("address", "", "Street address (optional)")
	flag.Parse()

	if *cpfFlag == "" {
		return nil, fmt.Errorf("the --cpf flag is required")
	}

	cpf, err := common.NormalizeCPF(*cpfFlag)
	if err != nil {
		return nil, err
	}

	return &enrollRequest{
		cpf:       cpf,
		name:      *nameFlag,
		birthDate: *birthFlag,
		address:   *addressFlag,
	}, nil
}

// findOrCreateHolder reuses an existing holder record for the CPF; opening a
// second account for a known customer only needs --cpf.
func findOrCreateHolder(ctx context.Context, dir *directory.Service, req *enrollRequest) (*models.Holder, error) {
	holder, err := dir.GetHolder(ctx, req.cpf)
	if err == nil {
		zap.L().Info("Using existing holder",
			zap.String("cpf", req.cpf),
			zap.String("name", holder.Name))
		return holder, nil
	}
	if !errors.Is(err, directory.ErrHolderNotFound) {
		return nil, err
	}

	if req.name == "" {
		return nil, fmt.Errorf("no holder registered for CPF %s; pass --name to enroll one",
			common.FormatCPF(req.cpf))
	}

	zap.L().Info("Creating holder",
		zap.String("cpf", req.cpf),
		zap.String("name", req.name))
	return dir.CreateHolder(ctx, req.cpf, req.name, req.birthDate, req.address)
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		zap.L().Fatal("Invalid flags", zap.Error(err))
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

	holder, err := findOrCreateHolder(ctx, services.Directory, req)
	if err != nil {
		zap.L().Fatal("Failed to find or create holder", zap.Error(err))
	}

	account, err := services.Directory.CreateAccount(ctx, holder.CPF, services.Limits.BranchCode)
	if err != nil {
		zap.L().Fatal("Failed to create account", zap.Error(err))
	}

	fmt.Println()
	common.PrintHeader("ACCOUNT CREATED", common.DefaultWidth)
	fmt.Printf("Holder:  %s\n", holder.Name)
	fmt.Printf("CPF:     %s\n", common.FormatCPF(holder.CPF))
	fmt.Printf("Branch:  %s\n", account.BranchCode)
	fmt.Printf("Account: %d\n", account.AccountNumber)
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()

	zap.L().Info("Account created",
		zap.String("cpf", holder.CPF),
		zap.String("branch", account.BranchCode),
		zap.Int64("account", account.AccountNumber))
}
