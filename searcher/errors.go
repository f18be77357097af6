package searcher

import (
	"errors"
	"fmt"

	"github.com/bitfsorg/slugline/network"
	"github.com/bitfsorg/slugline/tx"
)

var (
	// ErrMalformedInput indicates the submission does not decode as a signed transaction.
	ErrMalformedInput = errors.New("searcher: malformed input")

	// ErrMissingAnchor indicates output 0 is not the zero-value anchor.
	ErrMissingAnchor = errors.New("searcher: missing anchor output")

	// ErrAssetNotFound indicates the last input does not spend an output
	// carrying the designated asset, or that output could not be looked up.
	ErrAssetNotFound = errors.New("searcher: asset input not found")

	// ErrPackageRejected indicates the node refused the package.
	ErrPackageRejected = errors.New("searcher: package rejected")
)

// Rejection is the node's verdict on one refused package member.
type Rejection struct {
	TxID    string
	Message string
}

// PackageRejectedError reports the first refused transaction in package
// order. Message is the node's text verbatim.
type PackageRejectedError struct {
	TxID       string
	Message    string
	Rejections []Rejection
}

func (e *PackageRejectedError) Error() string {
	return fmt.Sprintf("%v: tx %s: %s", ErrPackageRejected, e.TxID, e.Message)
}

// Is lets errors.Is match ErrPackageRejected.
func (e *PackageRejectedError) Is(target error) bool {
	return target == ErrPackageRejected
}

// Error kinds reported to API clients.
const (
	KindInsufficientFunds         = "InsufficientFunds"
	KindNoAssetUTXO               = "NoAssetUtxo"
	KindMalformedInput            = "MalformedInput"
	KindMissingAnchor             = "MissingAnchor"
	KindAssetNotFound             = "AssetNotFound"
	KindNoSearcherFunds           = "NoSearcherFunds"
	KindInsufficientSearcherFunds = "InsufficientSearcherFunds"
	KindRPCFailure                = "RpcFailure"
	KindPackageRejected           = "PackageRejected"
	KindInternal                  = "Internal"
)

// KindOf maps err to its kind. It returns "" for nil and KindInternal for
// errors outside the taxonomy.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPackageRejected):
		return KindPackageRejected
	case errors.Is(err, ErrMalformedInput):
		return KindMalformedInput
	case errors.Is(err, ErrMissingAnchor):
		return KindMissingAnchor
	case errors.Is(err, ErrAssetNotFound):
		return KindAssetNotFound
	case errors.Is(err, tx.ErrNoSearcherFunds):
		return KindNoSearcherFunds
	case errors.Is(err, tx.ErrInsufficientSearcherFunds):
		return KindInsufficientSearcherFunds
	case errors.Is(err, tx.ErrInsufficientFunds):
		return KindInsufficientFunds
	case errors.Is(err, tx.ErrNoAssetUTXO):
		return KindNoAssetUTXO
	case errors.Is(err, network.ErrRPCFailure):
		return KindRPCFailure
	default:
		return KindInternal
	}
}
