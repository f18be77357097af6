package ord

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/bitfsorg/slugline/tx"
)

// Rune is one rune balance reported for an output.
type Rune struct {
	Amount       *big.Int `json:"amount"`
	Divisibility uint8    `json:"divisibility"`
	Symbol       string   `json:"symbol"`
}

// Output is an entry of GET /outputs/{address}.
type Output struct {
	Address       string          `json:"address"`
	Confirmations int64           `json:"confirmations"`
	Indexed       bool            `json:"indexed"`
	Inscriptions  []string        `json:"inscriptions"`
	Outpoint      string          `json:"outpoint"`
	Runes         map[string]Rune `json:"runes"`
	SatRanges     json.RawMessage `json:"sat_ranges,omitempty"`
	ScriptPubKey  string          `json:"script_pubkey"`
	Spent         bool            `json:"spent"`
	Transaction   string          `json:"transaction"`
	Value         int64           `json:"value"`
}

// TxOutput is one output of a transaction as the indexer reports it.
type TxOutput struct {
	Value        int64  `json:"value"`
	ScriptPubKey string `json:"script_pubkey"`
}

// TxDetail is the body of GET /tx/{txid}.
type TxDetail struct {
	TxID        string `json:"txid"`
	Transaction struct {
		Version  int32      `json:"version"`
		LockTime uint32     `json:"lock_time"`
		Output   []TxOutput `json:"output"`
	} `json:"transaction"`
}

// UTXO converts o into the transaction builder's snapshot type.
func (o *Output) UTXO() (*tx.UTXO, error) {
	op, err := tx.ParseOutPoint(o.Outpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	script, err := hex.DecodeString(o.ScriptPubKey)
	if err != nil {
		return nil, fmt.Errorf("%w: script_pubkey of %s: %w", ErrInvalidResponse, o.Outpoint, err)
	}

	u := &tx.UTXO{
		TxID:          op.Hash,
		Vout:          op.Index,
		Value:         o.Value,
		PkScript:      script,
		Address:       o.Address,
		Confirmations: o.Confirmations,
		Spent:         o.Spent,
		Inscriptions:  o.Inscriptions,
	}
	if len(o.Runes) > 0 {
		u.Assets = make(map[string]tx.AssetBalance, len(o.Runes))
		for name, r := range o.Runes {
			u.Assets[name] = tx.AssetBalance{Amount: r.Amount, Divisibility: r.Divisibility, Symbol: r.Symbol}
		}
	}
	return u, nil
}
