package network

import (
	"context"
	"fmt"
	"math"
)

// Compile-time interface check.
var _ NodeService = (*RPCClient)(nil)

// btcToSat converts a BTC float64 amount (as returned by the RPC node) to satoshis.
// It uses math.Round to avoid floating-point truncation issues.
func btcToSat(btc float64) uint64 {
	return uint64(math.Round(btc * 1e8))
}

// SatToBTC converts satoshis to the BTC float64 amounts the node accepts.
func SatToBTC(sat int64) float64 {
	return float64(sat) / 1e8
}

// listUnspentResult maps the JSON fields returned by the Bitcoin RPC listunspent call.
type listUnspentResult struct {
	TxID          string  `json:"txid"`
	Vout          uint32  `json:"vout"`
	Amount        float64 `json:"amount"`
	ScriptPubKey  string  `json:"scriptPubKey"`
	Address       string  `json:"address"`
	Confirmations int64   `json:"confirmations"`
	Spendable     bool    `json:"spendable"`
}

// ListUnspent returns the wallet's unspent outputs with at least minConf
// confirmations. It calls `listunspent minConf` and converts BTC amounts to
// satoshis, preserving the node's ordering.
func (c *RPCClient) ListUnspent(ctx context.Context, minConf int) ([]*UTXO, error) {
	params := []interface{}{minConf}
	var results []listUnspentResult
	if err := c.Call(ctx, "listunspent", params, &results); err != nil {
		return nil, err
	}

	utxos := make([]*UTXO, len(results))
	for i, r := range results {
		utxos[i] = &UTXO{
			TxID:          r.TxID,
			Vout:          r.Vout,
			Amount:        btcToSat(r.Amount),
			ScriptPubKey:  r.ScriptPubKey,
			Address:       r.Address,
			Confirmations: r.Confirmations,
			Spendable:     r.Spendable,
		}
	}
	return utxos, nil
}

// SignRawTransactionWithWallet calls `signrawtransactionwithwallet "hex" [prevtxs]`.
// An incomplete signature is not an RPC error; callers check Complete.
func (c *RPCClient) SignRawTransactionWithWallet(ctx context.Context, rawTxHex string, prevTxs []PrevTx) (*SignResult, error) {
	params := []interface{}{rawTxHex}
	if len(prevTxs) > 0 {
		params = append(params, prevTxs)
	}
	var result SignResult
	if err := c.Call(ctx, "signrawtransactionwithwallet", params, &result); err != nil {
		return nil, err
	}
	if result.Hex == "" {
		return nil, &RPCError{Method: "signrawtransactionwithwallet", Err: fmt.Errorf("%w: empty hex", ErrInvalidResponse)}
	}
	return &result, nil
}

// SubmitPackage calls `submitpackage ["hex", ...]`. Package-level rejections
// come back in the result, not as an error.
func (c *RPCClient) SubmitPackage(ctx context.Context, rawTxHexes []string) (*PackageResult, error) {
	params := []interface{}{rawTxHexes}
	var result PackageResult
	if err := c.Call(ctx, "submitpackage", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetNetworkInfo calls `getnetworkinfo`.
func (c *RPCClient) GetNetworkInfo(ctx context.Context) (*NetworkInfo, error) {
	var result NetworkInfo
	if err := c.Call(ctx, "getnetworkinfo", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
