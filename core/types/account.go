package types

import "math/big"

// Account is the minimal ledger record the staking engine moves value
// through. The full fungible-token ledger (allowances, transfers) lives with
// the host; the engine only debits and credits these balances.
type Account struct {
	Nonce        uint64   `json:"nonce"`
	BalanceEMBER *big.Int `json:"balanceEMBER"`
	BalanceQuote *big.Int `json:"balanceQuote"`
}

// EnsureBalances replaces nil balance pointers with zero values so callers can
// operate on the account without nil checks.
func (a *Account) EnsureBalances() *Account {
	if a == nil {
		return &Account{BalanceEMBER: big.NewInt(0), BalanceQuote: big.NewInt(0)}
	}
	if a.BalanceEMBER == nil {
		a.BalanceEMBER = big.NewInt(0)
	}
	if a.BalanceQuote == nil {
		a.BalanceQuote = big.NewInt(0)
	}
	return a
}
