package tx

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// p2wpkhWitnessVSize is the virtual size of a P2WPKH witness stack:
// count byte, 72-byte signature, 33-byte public key, with length prefixes.
const p2wpkhWitnessVSize = 27

// ChildParams describes the searcher's fee-paying child.
type ChildParams struct {
	Parent   *wire.MsgTx // signed parent carrying the anchor at output 0
	Searcher *UTXO       // searcher-owned UTXO funding the fee
	Script   []byte      // output script; the searcher UTXO's script when empty
	FeeRate  float64     // package fee rate, sat/vB
}

// ChildTx is an unsigned CPFP child and the fee arithmetic behind it.
type ChildTx struct {
	Tx          *wire.MsgTx
	ParentTxID  string
	Anchor      wire.OutPoint // parent txid:0, supplied to the signer as a prevtx
	ParentVSize int64
	ChildVSize  int64 // estimated with placeholder signatures
	Fee         int64
	Output      int64
}

// BuildChild constructs the child spending the parent's anchor and one
// searcher UTXO.
//
// Inputs:
//
//	[0] parent txid:0 (anchor, empty witness)
//	[1] searcher UTXO
//
// Outputs:
//
//	[0] Searcher.Value - fee -> Script
//
// The fee is ceil((parent vsize + child vsize) * FeeRate), so the package as
// a whole reaches FeeRate. The child vsize is estimated with placeholder
// signatures sized for the searcher UTXO's script type.
func BuildChild(p *ChildParams) (*ChildTx, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: params", ErrNilParam)
	}
	if p.Searcher == nil {
		return nil, ErrNoSearcherFunds
	}
	if p.Parent == nil {
		return nil, fmt.Errorf("%w: parent", ErrNilParam)
	}
	if p.FeeRate <= 0 {
		return nil, fmt.Errorf("%w: fee rate must be positive, got %v", ErrInvalidParams, p.FeeRate)
	}
	if err := CheckAnchor(p.Parent); err != nil {
		return nil, err
	}

	script := p.Script
	if len(script) == 0 {
		script = p.Searcher.PkScript
	}
	if len(script) == 0 {
		return nil, fmt.Errorf("%w: searcher output script", ErrInvalidParams)
	}

	parentHash := p.Parent.TxHash()
	anchor := wire.OutPoint{Hash: parentHash, Index: AnchorIndex}

	msgTx := wire.NewMsgTx(Version)
	anchorIn := wire.NewTxIn(&anchor, nil, nil)
	anchorIn.Sequence = RBFSequence
	msgTx.AddTxIn(anchorIn)
	msgTx.AddTxIn(newRBFInput(p.Searcher))
	msgTx.AddTxOut(wire.NewTxOut(p.Searcher.Value, script))

	parentVSize := VSize(p.Parent)
	childVSize := estimateChildVSize(msgTx, p.Searcher.PkScript)
	fee := PackageFee(parentVSize, childVSize, p.FeeRate)

	value := p.Searcher.Value - fee
	if value <= 0 {
		return nil, &InsufficientSearcherFundsError{Available: p.Searcher.Value, Fee: fee}
	}
	msgTx.TxOut[0].Value = value
	if IsDust(msgTx.TxOut[0]) {
		return nil, &InsufficientSearcherFundsError{Available: p.Searcher.Value, Fee: fee, Dust: true}
	}

	return &ChildTx{
		Tx:          msgTx,
		ParentTxID:  parentHash.String(),
		Anchor:      anchor,
		ParentVSize: parentVSize,
		ChildVSize:  childVSize,
		Fee:         fee,
		Output:      value,
	}, nil
}

// estimateChildVSize sizes msgTx as if its searcher input were signed.
func estimateChildVSize(msgTx *wire.MsgTx, searcherScript []byte) int64 {
	estimate := msgTx.Copy()
	sigScript, witness := placeholderSignature(searcherScript)
	estimate.TxIn[1].SignatureScript = sigScript
	estimate.TxIn[1].Witness = witness
	return VSize(estimate)
}

// placeholderSignature returns zero-filled unlocking data the size of a real
// signature for pkScript. Unknown script types are sized as P2WPKH.
func placeholderSignature(pkScript []byte) ([]byte, wire.TxWitness) {
	p2wpkh := wire.TxWitness{make([]byte, 72), make([]byte, 33)}
	switch txscript.GetScriptClass(pkScript) {
	case txscript.WitnessV1TaprootTy:
		return nil, wire.TxWitness{make([]byte, 64)}
	case txscript.PubKeyHashTy:
		return make([]byte, 107), nil
	case txscript.ScriptHashTy:
		// Nested P2WPKH: push of the 22-byte witness program.
		return make([]byte, 23), p2wpkh
	default:
		return nil, p2wpkh
	}
}
