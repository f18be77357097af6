package searcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/slugline/network"
	"github.com/bitfsorg/slugline/tx"
)

func newTestService(t *testing.T, node network.NodeService) (*Service, *Selector, *fakeResolver) {
	t.Helper()
	resolver := newResolver(testAssetUTXO())
	selector := NewSelector()
	svc := NewService(NewValidator(resolver, testAsset), node, selector, Options{FeeRate: 10, MinConf: 1})
	return svc, selector, resolver
}

func TestProcessSubmitsPackage(t *testing.T) {
	node, calls := newNode(t, 100000)
	svc, selector, _ := newTestService(t, node)
	parent := signedParent(t)

	res, err := svc.Process(context.Background(), encode(t, parent))
	require.NoError(t, err)

	assert.Equal(t, parent.TxHash().String(), res.ParentTxID)
	assert.Equal(t, tx.VSize(parent), res.ParentVSize)
	assert.Equal(t, tx.PackageFee(res.ParentVSize, res.ChildVSize, 10), res.Fee)

	require.Len(t, calls.prevTxs, 1)
	assert.Equal(t, network.PrevTx{TxID: res.ParentTxID, Vout: 0, ScriptPubKey: "51024e73", Amount: 0}, calls.prevTxs[0])

	require.Len(t, calls.submitted, 2)
	assert.Equal(t, encode(t, parent), calls.submitted[0])
	child, err := tx.DecodeSigned(calls.submitted[1])
	require.NoError(t, err)
	assert.Equal(t, res.ChildTxID, child.TxHash().String())
	assert.Equal(t, parent.TxHash(), child.TxIn[0].PreviousOutPoint.Hash)
	assert.Equal(t, uint32(0), child.TxIn[0].PreviousOutPoint.Index)
	assert.Equal(t, searcherTxID, child.TxIn[1].PreviousOutPoint.Hash)
	assert.Equal(t, int64(100000)-res.Fee, child.TxOut[0].Value)
	assert.Equal(t, p2wpkh(0xee), child.TxOut[0].PkScript)

	assert.Zero(t, selector.Reserved())
}

func TestProcessChangeScript(t *testing.T) {
	node, calls := newNode(t, 100000)
	resolver := newResolver(testAssetUTXO())
	svc := NewService(NewValidator(resolver, testAsset), node, nil, Options{FeeRate: 10, ChangeScript: p2wpkh(0x42)})

	_, err := svc.Process(context.Background(), encode(t, signedParent(t)))
	require.NoError(t, err)
	child, err := tx.DecodeSigned(calls.submitted[1])
	require.NoError(t, err)
	assert.Equal(t, p2wpkh(0x42), child.TxOut[0].PkScript)
}

func TestProcessMissingAnchorNeverReachesNode(t *testing.T) {
	node, calls := newNode(t, 100000)
	svc, _, resolver := newTestService(t, node)
	parent := signedParent(t)
	parent.TxOut[0].Value = 546

	_, err := svc.Process(context.Background(), encode(t, parent))
	require.ErrorIs(t, err, ErrMissingAnchor)
	assert.Equal(t, KindMissingAnchor, KindOf(err))
	assert.Zero(t, resolver.calls)
	assert.Zero(t, calls.listUnspent)
	assert.Zero(t, calls.sign)
	assert.Zero(t, calls.submit)
}

func TestProcessNoSearcherFunds(t *testing.T) {
	node, calls := newNode(t, 100000)
	node.ListUnspentFn = func(context.Context, int) ([]*network.UTXO, error) {
		return []*network.UTXO{{TxID: searcherTxID.String(), Amount: 5000, Spendable: false}}, nil
	}
	svc, _, _ := newTestService(t, node)

	_, err := svc.Process(context.Background(), encode(t, signedParent(t)))
	assert.ErrorIs(t, err, tx.ErrNoSearcherFunds)
	assert.Zero(t, calls.sign)
}

func TestProcessInsufficientSearcherFunds(t *testing.T) {
	node, calls := newNode(t, 1000)
	svc, selector, _ := newTestService(t, node)

	_, err := svc.Process(context.Background(), encode(t, signedParent(t)))
	assert.ErrorIs(t, err, tx.ErrInsufficientSearcherFunds)
	assert.Equal(t, KindInsufficientSearcherFunds, KindOf(err))
	assert.Zero(t, calls.sign)
	assert.Zero(t, selector.Reserved())
}

func TestProcessSigningIncomplete(t *testing.T) {
	node, calls := newNode(t, 100000)
	node.SignRawTransactionWithWalletFn = func(_ context.Context, raw string, _ []network.PrevTx) (*network.SignResult, error) {
		return &network.SignResult{
			Hex:      raw,
			Complete: false,
			Errors:   []network.SignError{{Vout: 3, Error: "Input not found or already spent"}},
		}, nil
	}
	svc, _, _ := newTestService(t, node)

	_, err := svc.Process(context.Background(), encode(t, signedParent(t)))
	require.ErrorIs(t, err, network.ErrSigningIncomplete)
	var rpcErr *network.RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, "signrawtransactionwithwallet", rpcErr.Method)
	assert.Contains(t, err.Error(), "Input not found or already spent")
	assert.Equal(t, KindRPCFailure, KindOf(err))
	assert.Zero(t, calls.submit)
}

func TestProcessSignRPCFailure(t *testing.T) {
	node, calls := newNode(t, 100000)
	var childTxID string
	node.SignRawTransactionWithWalletFn = func(_ context.Context, raw string, _ []network.PrevTx) (*network.SignResult, error) {
		unsigned, err := tx.DecodeSigned(raw)
		require.NoError(t, err)
		childTxID = unsigned.TxHash().String()
		return nil, &network.RPCError{Method: "signrawtransactionwithwallet", Code: -13, Message: "Wallet is locked"}
	}
	svc, selector, _ := newTestService(t, node)

	_, err := svc.Process(context.Background(), encode(t, signedParent(t)))
	var rpcErr *network.RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, "signrawtransactionwithwallet", rpcErr.Method)
	require.NotEmpty(t, childTxID)
	assert.Contains(t, err.Error(), childTxID)
	assert.Contains(t, err.Error(), "Wallet is locked")
	assert.Equal(t, KindRPCFailure, KindOf(err))
	assert.Zero(t, calls.submit)
	assert.Zero(t, selector.Reserved())
}

func TestProcessSubmitRPCFailure(t *testing.T) {
	node, _ := newNode(t, 100000)
	node.SubmitPackageFn = func(context.Context, []string) (*network.PackageResult, error) {
		return nil, &network.RPCError{Method: "submitpackage", Code: -25, Message: "bad-txns-inputs-missingorspent"}
	}
	svc, _, _ := newTestService(t, node)
	parent := signedParent(t)

	_, err := svc.Process(context.Background(), encode(t, parent))
	var rpcErr *network.RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, "submitpackage", rpcErr.Method)
	assert.Contains(t, err.Error(), parent.TxHash().String())
	assert.Equal(t, KindRPCFailure, KindOf(err))
}

func TestProcessPackageRejected(t *testing.T) {
	node, _ := newNode(t, 100000)
	node.SubmitPackageFn = func(context.Context, []string) (*network.PackageResult, error) {
		return &network.PackageResult{PackageMsg: "package-fee-too-low"}, nil
	}
	svc, selector, _ := newTestService(t, node)
	parent := signedParent(t)

	_, err := svc.Process(context.Background(), encode(t, parent))
	var rejected *PackageRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, parent.TxHash().String(), rejected.TxID)
	assert.Equal(t, "package-fee-too-low", rejected.Message)
	assert.Zero(t, selector.Reserved())
}

func TestProcessListUnspentFailure(t *testing.T) {
	node, _ := newNode(t, 100000)
	rpcErr := &network.RPCError{Method: "listunspent", Err: network.ErrConnectionFailed}
	node.ListUnspentFn = func(context.Context, int) ([]*network.UTXO, error) { return nil, rpcErr }
	svc, _, _ := newTestService(t, node)

	_, err := svc.Process(context.Background(), encode(t, signedParent(t)))
	assert.ErrorIs(t, err, network.ErrConnectionFailed)
	assert.Equal(t, KindRPCFailure, KindOf(err))
}

func TestWalletCandidatesMalformed(t *testing.T) {
	_, err := walletCandidates([]*network.UTXO{{TxID: "xyz", Spendable: true}})
	assert.ErrorIs(t, err, network.ErrInvalidResponse)
	assert.ErrorIs(t, err, network.ErrRPCFailure)
}

func TestHealth(t *testing.T) {
	node, _ := newNode(t, 100000)
	svc, _, _ := newTestService(t, node)
	info, err := svc.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/Satoshi:28.0.0/", info.Subversion)
}
