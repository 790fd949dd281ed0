package models

import "time"

// Holder represents an account holder registered at the branch
type Holder struct {
	Id        string    `db:"id"`
	CPF       string    `db:"cpf"`
	Name      string    `db:"name"`
	BirthDate string    `db:"birth_date"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
}

// Account represents one account in the branch registry. The ledger and
// quota state for it live in the account store, keyed by
// (holder CPF, branch code, account number).
type Account struct {
	Id            string    `db:"id"`
	HolderCPF     string    `db:"holder_cpf"`
	BranchCode    string    `db:"branch_code"`
	AccountNumber int64     `db:"account_number"`
	CreatedAt     time.Time `db:"created_at"`
}
