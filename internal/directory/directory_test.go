package directory

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDirectory(t *testing.T) (*Service, func()) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	cleanup := func() {
		db.Close()
	}
	return service, cleanup
}

func TestCreateHolder_AndLookup(t *testing.T) {
	service, cleanup := setupTestDirectory(t)
	defer cleanup()
	ctx := context.Background()

	holder, err := service.CreateHolder(ctx, "52998224725", "Maria Souza", "12/03/1990", "Rua A, 10 - Centro - SP")
	if err != nil {
		t.Fatalf("CreateHolder failed: %v", err)
	}
	if holder.CPF != "52998224725" || holder.Name != "Maria Souza" {
		t.Errorf("Unexpected holder: %+v", holder)
	}

	if _, err := service.CreateHolder(ctx, "52998224725", "Other Name", "", ""); !errors.Is(err, ErrHolderExists) {
		t.Errorf("Expected ErrHolderExists, got %v", err)
	}

	if _, err := service.GetHolder(ctx, "00000000000"); !errors.Is(err, ErrHolderNotFound) {
		t.Errorf("Expected ErrHolderNotFound, got %v", err)
	}
}

func TestCreateAccount_SequentialNumbers(t *testing.T) {
	service, cleanup := setupTestDirectory(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := service.CreateHolder(ctx, "52998224725", "Maria Souza", "", ""); err != nil {
		t.Fatalf("CreateHolder failed: %v", err)
	}

	first, err := service.CreateAccount(ctx, "52998224725", "0001")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	second, err := service.CreateAccount(ctx, "52998224725", "0001")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if first.AccountNumber != 1 || second.AccountNumber != 2 {
		t.Errorf("Expected sequential numbers 1, 2; got %d, %d",
			first.AccountNumber, second.AccountNumber)
	}
}

func TestCreateAccount_UnknownHolder(t *testing.T) {
	service, cleanup := setupTestDirectory(t)
	defer cleanup()

	if _, err := service.CreateAccount(context.Background(), "00000000000", "0001"); !errors.Is(err, ErrHolderNotFound) {
		t.Errorf("Expected ErrHolderNotFound, got %v", err)
	}
}

func TestResolveAccount(t *testing.T) {
	service, cleanup := setupTestDirectory(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := service.CreateHolder(ctx, "52998224725", "Maria Souza", "", ""); err != nil {
		t.Fatalf("CreateHolder failed: %v", err)
	}
	account, err := service.CreateAccount(ctx, "52998224725", "0001")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	key, err := service.ResolveAccount(ctx, "52998224725", "0001", account.AccountNumber)
	if err != nil {
		t.Fatalf("ResolveAccount failed: %v", err)
	}
	if key.HolderID != "52998224725" || key.BranchCode != "0001" || key.AccountNumber != account.AccountNumber {
		t.Errorf("Unexpected key: %+v", key)
	}

	// A valid account number under someone else's CPF must not resolve.
	if _, err := service.ResolveAccount(ctx, "11111111111", "0001", account.AccountNumber); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("Expected ErrAccountNotFound, got %v", err)
	}
	if _, err := service.ResolveAccount(ctx, "52998224725", "0002", account.AccountNumber); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("Expected ErrAccountNotFound for wrong branch, got %v", err)
	}
}

func TestListAccounts(t *testing.T) {
	service, cleanup := setupTestDirectory(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := service.CreateHolder(ctx, "52998224725", "Maria Souza", "", ""); err != nil {
		t.Fatalf("CreateHolder failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := service.CreateAccount(ctx, "52998224725", "0001"); err != nil {
			t.Fatalf("CreateAccount failed: %v", err)
		}
	}

	accounts, err := service.ListAccounts(ctx, "52998224725")
	if err != nil {
		t.Fatalf("ListAccounts failed: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("Expected 3 accounts, got %d", len(accounts))
	}
	for i, account := range accounts {
		if account.AccountNumber != int64(i+1) {
			t.Errorf("Expected account number %d at position %d, got %d", i+1, i, account.AccountNumber)
		}
	}
}
