package searcher

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/wire"

	"github.com/bitfsorg/slugline/internal/log"
	"github.com/bitfsorg/slugline/tx"
)

// OutputResolver looks up a previous output together with its asset balances.
type OutputResolver interface {
	ResolveOutput(ctx context.Context, op wire.OutPoint) (*tx.UTXO, error)
}

// Validator checks that a submitted parent honours the anchor and asset-input
// layout before the searcher spends anything on it.
type Validator struct {
	resolver OutputResolver
	asset    string
}

// NewValidator creates a Validator requiring the last input to carry asset.
func NewValidator(resolver OutputResolver, asset string) *Validator {
	return &Validator{resolver: resolver, asset: asset}
}

// Validate decodes encoded (base64 PSBT, hex PSBT or raw hex) and checks, in
// order, that it is fully signed, that output 0 is the anchor and that the
// last input spends an output holding the designated asset. The first failed
// check determines the error.
func (v *Validator) Validate(ctx context.Context, encoded string) (*wire.MsgTx, error) {
	msgTx, err := tx.DecodeSigned(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	if err := tx.CheckAnchor(msgTx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingAnchor, err)
	}

	idx := tx.AssetInputIndex(msgTx)
	if idx < 0 {
		return nil, fmt.Errorf("%w: transaction has no inputs", ErrAssetNotFound)
	}
	prev := msgTx.TxIn[idx].PreviousOutPoint
	out, err := v.resolver.ResolveOutput(ctx, prev)
	if err != nil {
		return nil, fmt.Errorf("%w: input %d spends %s: %w", ErrAssetNotFound, idx, prev, err)
	}
	if !out.HasAsset(v.asset) {
		return nil, fmt.Errorf("%w: input %d spends %s which holds no %s", ErrAssetNotFound, idx, prev, v.asset)
	}

	if msgTx.Version != tx.Version {
		log.Warnw("parent is not version 3, node will refuse the package",
			"txid", msgTx.TxHash().String(), "version", msgTx.Version)
	}
	return msgTx, nil
}
