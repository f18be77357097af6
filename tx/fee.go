package tx

import (
	"math"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/mempool"
	"github.com/btcsuite/btcd/wire"
)

const (
	// DefaultFeeRate is the package fee rate in sat/vB used by the searcher.
	DefaultFeeRate = 100.0

	// MaxTRUCVSize is the largest virtual size a version 3 transaction may
	// have under standard relay policy.
	MaxTRUCVSize = 10000
)

// VSize returns the virtual size of msgTx, ceil(weight/4). Witness data is
// counted at a quarter of its serialized size.
func VSize(msgTx *wire.MsgTx) int64 {
	weight := blockchain.GetTransactionWeight(btcutil.NewTx(msgTx))
	return (weight + blockchain.WitnessScaleFactor - 1) / blockchain.WitnessScaleFactor
}

// PackageFee returns ceil((parentVSize + childVSize) * feeRate), the fee a
// child must carry for the package to reach feeRate as a whole.
func PackageFee(parentVSize, childVSize int64, feeRate float64) int64 {
	return int64(math.Ceil(float64(parentVSize+childVSize) * feeRate))
}

// IsDust reports whether out falls below the dust threshold for its script
// type at the default minimum relay fee.
func IsDust(out *wire.TxOut) bool {
	return mempool.IsDust(out, mempool.DefaultMinRelayTxFee)
}
