package tx

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// AssetBalance is the quantity of one named asset held by an output.
type AssetBalance struct {
	Amount       *big.Int `json:"amount"`
	Divisibility uint8    `json:"divisibility"`
	Symbol       string   `json:"symbol"`
}

// UTXO is a read-only snapshot of a spendable output.
type UTXO struct {
	TxID          chainhash.Hash          `json:"txid"`
	Vout          uint32                  `json:"vout"`
	Value         int64                   `json:"value"`         // satoshis
	PkScript      []byte                  `json:"script_pubkey"` // locking script bytes
	Address       string                  `json:"address,omitempty"`
	Confirmations int64                   `json:"confirmations"`
	Spent         bool                    `json:"spent"`
	Assets        map[string]AssetBalance `json:"assets,omitempty"`
	Inscriptions  []string                `json:"inscriptions,omitempty"`
}

// OutPoint returns the wire outpoint referencing u.
func (u *UTXO) OutPoint() wire.OutPoint {
	return wire.OutPoint{Hash: u.TxID, Index: u.Vout}
}

// String formats u as "txid:vout".
func (u *UTXO) String() string {
	return fmt.Sprintf("%s:%d", u.TxID, u.Vout)
}

// Balance returns the balance of the named asset. Names are compared with
// spacers ignored, so "UNCOMMON•GOODS" matches "UNCOMMONGOODS".
func (u *UTXO) Balance(asset string) (AssetBalance, bool) {
	want := NormalizeAssetName(asset)
	for name, bal := range u.Assets {
		if NormalizeAssetName(name) == want {
			return bal, true
		}
	}
	return AssetBalance{}, false
}

// HasAsset reports whether u holds a non-zero balance of the named asset.
func (u *UTXO) HasAsset(asset string) bool {
	bal, ok := u.Balance(asset)
	return ok && bal.Amount != nil && bal.Amount.Sign() > 0
}

// CarriesAssets reports whether u holds any asset balance or inscription.
// Such outputs are never spent as plain payment money.
func (u *UTXO) CarriesAssets() bool {
	if len(u.Inscriptions) > 0 {
		return true
	}
	for _, bal := range u.Assets {
		if bal.Amount != nil && bal.Amount.Sign() != 0 {
			return true
		}
	}
	return false
}

// NormalizeAssetName strips rune spacers and upper-cases name.
func NormalizeAssetName(name string) string {
	return strings.ToUpper(strings.NewReplacer("•", "", ".", "", " ", "").Replace(name))
}

// ParseOutPoint parses a "txid:vout" string.
func ParseOutPoint(s string) (wire.OutPoint, error) {
	txid, vout, ok := strings.Cut(s, ":")
	if !ok || len(txid) != 2*chainhash.HashSize {
		return wire.OutPoint{}, fmt.Errorf("%w: outpoint %q", ErrInvalidParams, s)
	}
	hash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return wire.OutPoint{}, fmt.Errorf("%w: outpoint %q: %w", ErrInvalidParams, s, err)
	}
	index, err := strconv.ParseUint(vout, 10, 32)
	if err != nil {
		return wire.OutPoint{}, fmt.Errorf("%w: outpoint %q: %w", ErrInvalidParams, s, err)
	}
	return wire.OutPoint{Hash: *hash, Index: uint32(index)}, nil
}
