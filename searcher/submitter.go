package searcher

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/wire"

	"github.com/bitfsorg/slugline/network"
	"github.com/bitfsorg/slugline/tx"
)

// Submitter relays a parent and its child to the node as one package.
type Submitter struct {
	node network.NodeService
}

// NewSubmitter creates a Submitter using node's submitpackage.
func NewSubmitter(node network.NodeService) *Submitter {
	return &Submitter{node: node}
}

// SubmitResult identifies an accepted package.
type SubmitResult struct {
	ParentTxID string
	ChildTxID  string
	Result     *network.PackageResult
}

// Submit sends [parent, child]. RPC failures come back as *network.RPCError;
// a refusal by the node comes back as *PackageRejectedError naming the
// first failing transaction in package order. There are no retries.
func (s *Submitter) Submit(ctx context.Context, parent, child *wire.MsgTx) (*SubmitResult, error) {
	members := []*wire.MsgTx{parent, child}
	hexes := make([]string, len(members))
	for i, m := range members {
		h, err := tx.EncodeHex(m)
		if err != nil {
			return nil, err
		}
		hexes[i] = h
	}

	res, err := s.node.SubmitPackage(ctx, hexes)
	if err != nil {
		return nil, fmt.Errorf("%w: parent %s child %s", err, parent.TxHash(), child.TxHash())
	}
	if !res.Accepted() {
		return nil, rejection(res, members)
	}
	return &SubmitResult{
		ParentTxID: parent.TxHash().String(),
		ChildTxID:  child.TxHash().String(),
		Result:     res,
	}, nil
}

// rejection collects failing members in package order. When the node gives
// no per-transaction error the package message is charged to the parent.
func rejection(res *network.PackageResult, members []*wire.MsgTx) *PackageRejectedError {
	var rejections []Rejection
	for _, m := range members {
		txid := m.TxHash().String()
		r, ok := res.TxResults[m.WitnessHash().String()]
		if !ok {
			for _, candidate := range res.TxResults {
				if candidate.TxID == txid {
					r, ok = candidate, true
					break
				}
			}
		}
		if ok && r.Error != "" {
			rejections = append(rejections, Rejection{TxID: txid, Message: r.Error})
		}
	}
	if len(rejections) == 0 {
		rejections = []Rejection{{TxID: members[0].TxHash().String(), Message: res.PackageMsg}}
	}
	return &PackageRejectedError{
		TxID:       rejections[0].TxID,
		Message:    rejections[0].Message,
		Rejections: rejections,
	}
}
