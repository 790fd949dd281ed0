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

package common

import (
	"context"
	"log"
	"strings"

	"branch-banking-go/internal/config"
	"branch-banking-go/internal/directory"
	"branch-banking-go/internal/filestore"
	"branch-banking-go/internal/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	}
}

type Services struct {
	Accounts  *filestore.Service
	Directory *directory.Service
	Limits    config.Limits
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	zap.L().Info("Loading branch limits", zap.String("file", cfg.LimitsFile))
	limits, err := config.LoadLimits(cfg.LimitsFile)
	if err != nil {
		return nil, err
	}

	accounts, err := filestore.NewService(cfg.Store, limits.QuotaLimits())
	if err != nil {
		return nil, err
	}

	dir, err := directory.NewService(ctx, cfg.Directory)
	if err != nil {
		accounts.Close()
		return nil, err
	}

	return &Services{
		Accounts:  accounts,
		Directory: dir,
		Limits:    limits,
	}, nil
}

func (cs *Services) Close() {
	if cs.Directory != nil {
		cs.Directory.Close()
	}
	if cs.Accounts != nil {
		cs.Accounts.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
