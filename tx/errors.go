package tx

import (
	"errors"
	"fmt"
)

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("tx: required parameter is nil")

	// ErrInvalidParams indicates invalid parameters were provided.
	ErrInvalidParams = errors.New("tx: invalid parameters")

	// ErrInvalidAddress indicates an address does not decode for the active network.
	ErrInvalidAddress = errors.New("tx: invalid address")

	// ErrInsufficientFunds indicates the payment UTXOs cannot cover the target amount.
	ErrInsufficientFunds = errors.New("tx: insufficient funds")

	// ErrNoAssetUTXO indicates no UTXO at the asset address carries the designated asset.
	ErrNoAssetUTXO = errors.New("tx: no UTXO carries the designated asset")

	// ErrNoSearcherFunds indicates the searcher wallet has no spendable UTXO.
	ErrNoSearcherFunds = errors.New("tx: searcher wallet has no UTXOs")

	// ErrInsufficientSearcherFunds indicates the searcher UTXO cannot pay the package fee
	// and still leave a non-dust output.
	ErrInsufficientSearcherFunds = errors.New("tx: insufficient searcher funds")

	// ErrContractViolation indicates a transaction breaks the anchor/asset-input layout.
	ErrContractViolation = errors.New("tx: structural contract violated")

	// ErrScriptBuild indicates script construction failed.
	ErrScriptBuild = errors.New("tx: script build failed")

	// ErrPSBT indicates a PSBT could not be created or serialized.
	ErrPSBT = errors.New("tx: psbt encoding failed")

	// ErrDecode indicates an encoded transaction or PSBT could not be decoded
	// into a fully signed transaction.
	ErrDecode = errors.New("tx: cannot decode signed transaction")
)

// InsufficientFundsError reports how far the payment candidates fell short.
type InsufficientFundsError struct {
	Available int64 // sum of all candidate values, satoshis
	Required  int64 // target amount, satoshis
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%v: need %d sat, have %d sat", ErrInsufficientFunds, e.Required, e.Available)
}

// Is lets errors.Is match ErrInsufficientFunds.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// InsufficientSearcherFundsError reports a searcher UTXO that cannot fund the package.
type InsufficientSearcherFundsError struct {
	Available int64 // searcher UTXO value
	Fee       int64 // combined package fee
	Dust      bool  // remainder was positive but below the dust threshold
}

func (e *InsufficientSearcherFundsError) Error() string {
	if e.Dust {
		return fmt.Sprintf("%v: output %d sat after %d sat fee is dust",
			ErrInsufficientSearcherFunds, e.Available-e.Fee, e.Fee)
	}
	return fmt.Sprintf("%v: fee %d sat exceeds searcher UTXO value %d sat",
		ErrInsufficientSearcherFunds, e.Fee, e.Available)
}

// Is lets errors.Is match ErrInsufficientSearcherFunds.
func (e *InsufficientSearcherFundsError) Is(target error) bool {
	return target == ErrInsufficientSearcherFunds
}
