package tx

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

const (
	// Version is the transaction version required for package relay of a
	// zero-fee parent (TRUC / BIP 431).
	Version = 3

	// AnchorIndex is the output position of the pay-to-anchor output.
	AnchorIndex = 0

	// AnchorValue is the value of the anchor output.
	AnchorValue = 0

	// RBFSequence signals replaceability without enabling a relative locktime.
	RBFSequence = wire.MaxTxInSequenceNum - 2
)

// anchorScript is OP_1 <0x4e73>, the witness v1 pay-to-anchor program.
var anchorScript = mustBuild(txscript.NewScriptBuilder().
	AddOp(txscript.OP_1).
	AddData([]byte{0x4e, 0x73}))

func mustBuild(b *txscript.ScriptBuilder) []byte {
	script, err := b.Script()
	if err != nil {
		panic(err)
	}
	return script
}

// AnchorScript returns a copy of the anyone-can-spend anchor locking script.
func AnchorScript() []byte {
	return append([]byte(nil), anchorScript...)
}

// AnchorOutput returns a fresh zero-value anchor output.
func AnchorOutput() *wire.TxOut {
	return wire.NewTxOut(AnchorValue, AnchorScript())
}

// IsAnchor reports whether out is a zero-value anchor output.
func IsAnchor(out *wire.TxOut) bool {
	return out != nil && out.Value == AnchorValue && bytes.Equal(out.PkScript, anchorScript)
}

// CheckAnchor verifies output[0] is the zero-value anchor.
func CheckAnchor(msgTx *wire.MsgTx) error {
	if msgTx == nil {
		return fmt.Errorf("%w: transaction", ErrNilParam)
	}
	if len(msgTx.TxOut) == 0 {
		return fmt.Errorf("%w: transaction has no outputs", ErrContractViolation)
	}
	out := msgTx.TxOut[AnchorIndex]
	if out.Value != AnchorValue {
		return fmt.Errorf("%w: anchor output value is %d sat, want 0", ErrContractViolation, out.Value)
	}
	if !bytes.Equal(out.PkScript, anchorScript) {
		return fmt.Errorf("%w: output 0 script %x is not the anchor script", ErrContractViolation, out.PkScript)
	}
	return nil
}

// CheckContract verifies the layout every parent carries: the anchor at
// output 0, at least one input (the last being the asset input) and
// version 3.
func CheckContract(msgTx *wire.MsgTx) error {
	if err := CheckAnchor(msgTx); err != nil {
		return err
	}
	if len(msgTx.TxIn) == 0 {
		return fmt.Errorf("%w: transaction has no inputs", ErrContractViolation)
	}
	if msgTx.Version != Version {
		return fmt.Errorf("%w: version %d, want %d", ErrContractViolation, msgTx.Version, Version)
	}
	return nil
}

// AssetInputIndex returns the position of the asset-bearing input.
func AssetInputIndex(msgTx *wire.MsgTx) int {
	return len(msgTx.TxIn) - 1
}
