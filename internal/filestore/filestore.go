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

// Package filestore persists all accounts of the branch in one JSON file.
// Saves follow a backup-and-rollback protocol: the prior file is copied to a
// .bkp sibling before the rewrite and restored on any failure, so the
// primary file is never left half-written and never loses an unrelated
// account's record. The process has exclusive access to the backing files;
// cross-process locking is out of scope.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"branch-banking-go/internal/ledger"
	"branch-banking-go/internal/models"
	"branch-banking-go/internal/quota"
	"branch-banking-go/internal/store"

	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.AccountStore.
var _ store.AccountStore = (*Service)(nil)

type Service struct {
	path   string
	limits quota.Limits
	now    func() time.Time

	// swapped out in tests to simulate a failing primary write
	writeFile func(name string, data []byte, perm os.FileMode) error
}

func NewService(cfg models.StoreConfig, limits quota.Limits) (*Service, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("account store path cannot be empty")
	}
	if limits.DailyOperations <= 0 || limits.DailyWithdrawals <= 0 {
		return nil, fmt.Errorf("daily limits must be positive, got %d/%d",
			limits.DailyOperations, limits.DailyWithdrawals)
	}

	zap.L().Info("Using account store file", zap.String("file", cfg.Path))
	return &Service{
		path:      cfg.Path,
		limits:    limits,
		now:       time.Now,
		writeFile: os.WriteFile,
	}, nil
}

func (s *Service) Close() {}

func (s *Service) backupPath() string {
	return s.path + ".bkp"
}

// Fresh returns the zero state a brand-new account starts from: empty
// ledger, zeroed quota counters, today as the last reset date.
func (s *Service) Fresh(key store.AccountKey) *store.AccountState {
	return &store.AccountState{
		Key:    key,
		Ledger: ledger.New(),
		Quota:  quota.NewTracker(s.now(), s.limits),
	}
}

// Load returns the stored state for key, or a fresh state when no record
// exists. A record that exists but cannot be parsed, or whose balance does
// not match its history, yields store.ErrCorruptRecord.
func (s *Service) Load(key store.AccountKey) (*store.AccountState, error) {
	records, err := s.readAll()
	if err != nil {
		return nil, err
	}

	raw, ok := records[key.String()]
	if !ok {
		zap.L().Info("No stored record for account, starting fresh",
			zap.String("account", key.String()))
		return s.Fresh(key), nil
	}

	var rec accountRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: account %s: %v", store.ErrCorruptRecord, key, err)
	}
	state, err := rec.toState(key, s.limits)
	if err != nil {
		return nil, fmt.Errorf("%w: account %s: %v", store.ErrCorruptRecord, key, err)
	}

	zap.L().Info("Account state loaded",
		zap.String("account", key.String()),
		zap.String("balance", state.Ledger.Balance().String()),
		zap.Int("transactions", state.Ledger.Size()))
	return state, nil
}

// Save replaces the record for key while leaving every other account's raw
// record byte-for-byte untouched. Protocol: back up the prior file, rewrite
// the full structure, delete the backup on success; on any failure the
// backup is moved back over the primary before the error is returned.
func (s *Service) Save(key store.AccountKey, state *store.AccountState) error {
	// Read first: if a crash left a pending backup, recovery must run on
	// the real data before the backup slot is overwritten below.
	records, err := s.readAll()
	if err != nil {
		zap.L().Warn("Account store unreadable and no usable backup, rebuilding",
			zap.Error(err))
		records = map[string]json.RawMessage{}
	}

	backup := ""
	if _, err := os.Stat(s.path); err == nil {
		backup = s.backupPath()
		if err := copyFile(s.path, backup); err != nil {
			return fmt.Errorf("%w: backup copy: %v", store.ErrWriteFailed, err)
		}
	}

	raw, err := json.Marshal(encodeState(state))
	if err != nil {
		return s.rollback(backup, fmt.Errorf("encode account %s: %w", key, err))
	}
	records[key.String()] = raw

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return s.rollback(backup, err)
	}
	if err := s.writeFile(s.path, data, 0o644); err != nil {
		return s.rollback(backup, err)
	}

	if backup != "" {
		if err := os.Remove(backup); err != nil {
			zap.L().Warn("Failed to remove backup after successful save",
				zap.String("backup", backup), zap.Error(err))
		}
	}

	zap.L().Info("Account state saved",
		zap.String("account", key.String()),
		zap.String("balance", state.Ledger.Balance().String()),
		zap.Int("accounts_in_store", len(records)))
	return nil
}

// rollback restores the primary file from the backup made at the start of
// the save, then surfaces the cause as ErrWriteFailed.
func (s *Service) rollback(backup string, cause error) error {
	if backup != "" {
		if err := os.Rename(backup, s.path); err != nil {
			zap.L().Error("Failed to restore backup after write failure",
				zap.String("backup", backup), zap.Error(err))
		} else {
			zap.L().Warn("Account store restored from backup after write failure",
				zap.String("file", s.path))
		}
	}
	return fmt.Errorf("%w: %v", store.ErrWriteFailed, cause)
}

// readAll returns the full multi-account structure. A missing file is an
// empty store. When the primary is missing or unparsable and a parsable
// backup survives (a save interrupted between the backup copy and the
// primary write), the backup is promoted back to primary.
func (s *Service) readAll() (map[string]json.RawMessage, error) {
	records, err := readRecords(s.path)
	if err == nil {
		return records, nil
	}

	if recovered, ok := s.restoreBackup(); ok {
		return recovered, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	return nil, fmt.Errorf("%w: %v", store.ErrCorruptRecord, err)
}

func (s *Service) restoreBackup() (map[string]json.RawMessage, bool) {
	records, err := readRecords(s.backupPath())
	if err != nil {
		return nil, false
	}
	if err := os.Rename(s.backupPath(), s.path); err != nil {
		zap.L().Error("Failed to promote backup to primary",
			zap.String("backup", s.backupPath()), zap.Error(err))
		return nil, false
	}
	zap.L().Warn("Recovered account store from backup of an interrupted save",
		zap.String("file", s.path))
	return records, true
}

func readRecords(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if records == nil {
		records = map[string]json.RawMessage{}
	}
	return records, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if err := in.Close(); err != nil {
			zap.L().Warn("Failed to close source file", zap.Error(err))
		}
	}()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
