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

package directory

const (
	// Holder queries
	queryInsertHolder = `
		INSERT INTO holders (id, cpf, name, birth_date, address) VALUES (?, ?, ?, ?, ?)`

	queryGetHolderByCPF = `
		SELECT id, cpf, name, birth_date, address, created_at
		FROM holders
		WHERE cpf = ?`

	// Account queries
	queryInsertAccount = `
		INSERT INTO accounts (id, holder_cpf, branch_code, account_number)
		VALUES (?, ?, ?, ?)
		RETURNING id, holder_cpf, branch_code, account_number, created_at`

	queryNextAccountNumber = `
		SELECT COALESCE(MAX(account_number), 0) + 1
		FROM accounts
		WHERE branch_code = ?`

	queryGetHolderAccounts = `
		SELECT id, holder_cpf, branch_code, account_number, created_at
		FROM accounts
		WHERE holder_cpf = ?
		ORDER BY account_number`

	queryResolveAccount = `
		SELECT id
		FROM accounts
		WHERE holder_cpf = ? AND branch_code = ? AND account_number = ?
		LIMIT 1`
)
