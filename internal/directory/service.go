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

// Package directory is the branch's holder and account registry. It answers
// who exists and which accounts they own; balances and transaction history
// live in the account store, addressed by the key this package resolves.
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"branch-banking-go/internal/models"
	"branch-banking-go/internal/store"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Sentinel errors for registry lookups.
var (
	ErrHolderNotFound  = errors.New("holder not found")
	ErrHolderExists    = errors.New("holder already registered")
	ErrAccountNotFound = errors.New("account not found")
)

type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DirectoryConfig) (*Service, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("directory database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening directory database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Directory service initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close directory database", zap.Error(err))
	}
}

func (s *Service) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS holders (
		id TEXT PRIMARY KEY,
		cpf TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		birth_date TEXT NOT NULL,
		address TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_holders_cpf ON holders(cpf);

	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		holder_cpf TEXT NOT NULL REFERENCES holders(cpf) ON DELETE CASCADE,
		branch_code TEXT NOT NULL,
		account_number INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(branch_code, account_number)
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_holder ON accounts(holder_cpf);
	CREATE INDEX IF NOT EXISTS idx_accounts_branch_number ON accounts(branch_code, account_number);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateHolder registers a new holder keyed by CPF. The CPF is expected to
// arrive already normalized to 11 digits by the caller.
func (s *Service) CreateHolder(ctx context.Context, cpf, name, birthDate, address string) (*models.Holder, error) {
	if cpf == "" || name == "" {
		return nil, fmt.Errorf("cpf and name are required")
	}

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, queryInsertHolder, id, cpf, name, birthDate, address)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("%w: cpf %s", ErrHolderExists, cpf)
		}
		return nil, fmt.Errorf("failed to insert holder: %w", err)
	}

	zap.L().Info("Holder registered",
		zap.String("id", id),
		zap.String("cpf", cpf),
		zap.String("name", name))
	return s.GetHolder(ctx, cpf)
}

func (s *Service) GetHolder(ctx context.Context, cpf string) (*models.Holder, error) {
	var holder models.Holder
	err := s.db.QueryRowContext(ctx, queryGetHolderByCPF, cpf).
		Scan(&holder.Id, &holder.CPF, &holder.Name, &holder.BirthDate, &holder.Address, &holder.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: cpf %s", ErrHolderNotFound, cpf)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holder: %w", err)
	}
	return &holder, nil
}

// CreateAccount opens a new account for an existing holder. Account numbers
// are sequential within a branch.
func (s *Service) CreateAccount(ctx context.Context, cpf, branchCode string) (*models.Account, error) {
	if _, err := s.GetHolder(ctx, cpf); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var number int64
	if err := tx.QueryRowContext(ctx, queryNextAccountNumber, branchCode).Scan(&number); err != nil {
		return nil, fmt.Errorf("failed to allocate account number: %w", err)
	}

	var account models.Account
	err = tx.QueryRowContext(ctx, queryInsertAccount, uuid.New().String(), cpf, branchCode, number).
		Scan(&account.Id, &account.HolderCPF, &account.BranchCode, &account.AccountNumber, &account.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit account creation: %w", err)
	}

	zap.L().Info("Account opened",
		zap.String("cpf", cpf),
		zap.String("branch", branchCode),
		zap.Int64("number", number))
	return &account, nil
}

func (s *Service) ListAccounts(ctx context.Context, cpf string) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, queryGetHolderAccounts, cpf)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.Id, &account.HolderCPF, &account.BranchCode,
			&account.AccountNumber, &account.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// ResolveAccount maps a holder/branch/number triple to the key the account
// store is addressed by. Fails with ErrAccountNotFound when the triple does
// not belong to the holder.
func (s *Service) ResolveAccount(ctx context.Context, cpf, branchCode string, accountNumber int64) (*store.AccountKey, error) {
	var id string
	err := s.db.QueryRowContext(ctx, queryResolveAccount, cpf, branchCode, accountNumber).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s at branch %s, account %d",
			ErrAccountNotFound, cpf, branchCode, accountNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}
	return &store.AccountKey{HolderID: cpf, BranchCode: branchCode, AccountNumber: accountNumber}, nil
}
