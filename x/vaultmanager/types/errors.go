package types

import (
	"cosmossdk.io/errors"
)

// x/vaultmanager module sentinel errors
var (
	ErrNonExistentVault         = errors.Register(ModuleName, 2, "vault does not exist")
	ErrVaultExists              = errors.Register(ModuleName, 3, "vault already exists")
	ErrDepositsDisabled         = errors.Register(ModuleName, 4, "deposits are disabled")
	ErrWithdrawalsDisabled      = errors.Register(ModuleName, 5, "withdrawals are disabled")
	ErrFlashLoansDisabled       = errors.Register(ModuleName, 6, "flash loans are disabled")
	ErrDepositDuringLoan        = errors.Register(ModuleName, 7, "cannot deposit while a flash loan is in progress")
	ErrWithdrawDuringLoan       = errors.Register(ModuleName, 8, "cannot withdraw while a flash loan is in progress")
	ErrLoanInProgress           = errors.Register(ModuleName, 9, "a flash loan is already in progress")
	ErrAssetMismatch            = errors.Register(ModuleName, 10, "asset mismatch")
	ErrInvalidZeroAmount        = errors.Register(ModuleName, 11, "invalid zero amount")
	ErrInsufficientAssetBalance = errors.Register(ModuleName, 12, "insufficient vault balance")
	ErrFlashLoanLoss            = errors.Register(ModuleName, 13, "flash loan was not repaid in full")
	ErrUnauthorized             = errors.Register(ModuleName, 14, "unauthorized")
	ErrFundsMismatch            = errors.Register(ModuleName, 15, "attached funds do not match the declared amount")
	ErrInvalidVaultCreationFee  = errors.Register(ModuleName, 16, "invalid vault creation fee")
	ErrInvalidFees              = errors.Register(ModuleName, 17, "invalid vault fees")
	ErrInvalidIdentifier        = errors.Register(ModuleName, 18, "invalid identifier")
	ErrInvalidConfig            = errors.Register(ModuleName, 19, "invalid config")
	ErrInvalidAddress           = errors.Register(ModuleName, 20, "invalid address")
	ErrInvalidInitialDeposit    = errors.Register(ModuleName, 21, "initial deposit must exceed the minimum liquidity")
	ErrNoActiveLoan             = errors.Register(ModuleName, 22, "no flash loan in progress")
)
