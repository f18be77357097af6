package tx

import (
	"fmt"
	"sort"
)

// SelectPayment picks payment UTXOs greedily, largest first, until their sum
// covers amount. Overshoot is left for the change output. Ties are broken by
// outpoint so identical snapshots always select identically.
func SelectPayment(candidates []*UTXO, amount int64) ([]*UTXO, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidParams, amount)
	}

	sorted := make([]*UTXO, 0, len(candidates))
	for i, u := range candidates {
		if u == nil {
			return nil, fmt.Errorf("%w: candidate[%d]", ErrNilParam, i)
		}
		sorted = append(sorted, u)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Value != sorted[j].Value {
			return sorted[i].Value > sorted[j].Value
		}
		return sorted[i].String() < sorted[j].String()
	})

	var (
		selected []*UTXO
		total    int64
	)
	for _, u := range sorted {
		selected = append(selected, u)
		total += u.Value
		if total >= amount {
			return selected, nil
		}
	}
	return nil, &InsufficientFundsError{Available: total, Required: amount}
}

// SelectAsset returns the first candidate holding a non-zero balance of asset.
// Only one asset UTXO is ever used; its whole balance moves with it.
func SelectAsset(candidates []*UTXO, asset string) (*UTXO, error) {
	for _, u := range candidates {
		if u != nil && u.HasAsset(asset) {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoAssetUTXO, asset)
}

// spendable drops spent outputs and, when plainOnly is set, outputs that
// carry assets or inscriptions.
func spendable(utxos []*UTXO, plainOnly bool) []*UTXO {
	out := make([]*UTXO, 0, len(utxos))
	for _, u := range utxos {
		if u == nil || u.Spent {
			continue
		}
		if plainOnly && u.CarriesAssets() {
			continue
		}
		out = append(out, u)
	}
	return out
}
