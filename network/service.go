package network

import "context"

// NodeService is the slice of the node's RPC surface the searcher relies on.
// Wallet-scoped calls run against the wallet the client was configured with.
type NodeService interface {
	// ListUnspent returns the wallet's UTXOs with at least minConf confirmations.
	ListUnspent(ctx context.Context, minConf int) ([]*UTXO, error)

	// SignRawTransactionWithWallet signs rawTxHex with wallet keys. prevTxs
	// describes previous outputs the node cannot look up itself, such as
	// outputs of an unbroadcast parent.
	SignRawTransactionWithWallet(ctx context.Context, rawTxHex string, prevTxs []PrevTx) (*SignResult, error)

	// SubmitPackage submits raw transactions, parents first, as one package.
	SubmitPackage(ctx context.Context, rawTxHexes []string) (*PackageResult, error)

	// GetNetworkInfo returns node version and relay settings.
	GetNetworkInfo(ctx context.Context) (*NetworkInfo, error)
}

// UTXO represents a wallet unspent transaction output.
type UTXO struct {
	TxID          string `json:"txid"`
	Vout          uint32 `json:"vout"`
	Amount        uint64 `json:"amount"` // satoshis
	ScriptPubKey  string `json:"script_pubkey"`
	Address       string `json:"address"`
	Confirmations int64  `json:"confirmations"`
	Spendable     bool   `json:"spendable"`
}

// PrevTx describes a previous output for signrawtransactionwithwallet.
// Amount is in BTC, as the node expects.
type PrevTx struct {
	TxID         string  `json:"txid"`
	Vout         uint32  `json:"vout"`
	ScriptPubKey string  `json:"scriptPubKey"`
	Amount       float64 `json:"amount"`
}

// SignResult is the result of signrawtransactionwithwallet.
type SignResult struct {
	Hex      string      `json:"hex"`
	Complete bool        `json:"complete"`
	Errors   []SignError `json:"errors,omitempty"`
}

// SignError is one per-input signing failure.
type SignError struct {
	TxID      string `json:"txid"`
	Vout      uint32 `json:"vout"`
	ScriptSig string `json:"scriptSig"`
	Sequence  uint32 `json:"sequence"`
	Error     string `json:"error"`
}

// PackageResult is the result of submitpackage. TxResults is keyed by wtxid.
type PackageResult struct {
	PackageMsg           string                     `json:"package_msg"`
	TxResults            map[string]PackageTxResult `json:"tx-results"`
	ReplacedTransactions []string                   `json:"replaced-transactions,omitempty"`
}

// PackageTxResult is the node's verdict on one package member.
type PackageTxResult struct {
	TxID       string       `json:"txid"`
	OtherWtxid string       `json:"other-wtxid,omitempty"`
	VSize      int64        `json:"vsize,omitempty"`
	Fees       *PackageFees `json:"fees,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// PackageFees reports the fees the node attributed to a package member.
type PackageFees struct {
	Base              float64  `json:"base"`
	EffectiveFeeRate  float64  `json:"effective-feerate,omitempty"`
	EffectiveIncludes []string `json:"effective-includes,omitempty"`
}

// PackageSuccess is the package_msg bitcoind returns for an accepted package.
const PackageSuccess = "success"

// Accepted reports whether the node accepted the whole package.
func (r *PackageResult) Accepted() bool {
	if r.PackageMsg != PackageSuccess {
		return false
	}
	for _, res := range r.TxResults {
		if res.Error != "" {
			return false
		}
	}
	return true
}

// NetworkInfo is the subset of getnetworkinfo the searcher logs at startup.
type NetworkInfo struct {
	Version         int64   `json:"version"`
	Subversion      string  `json:"subversion"`
	ProtocolVersion int64   `json:"protocolversion"`
	RelayFee        float64 `json:"relayfee"`
	IncrementalFee  float64 `json:"incrementalfee"`
}
