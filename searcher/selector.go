package searcher

import (
	"sync"

	"github.com/btcsuite/btcd/wire"

	"github.com/bitfsorg/slugline/tx"
)

// UTXOSelector picks the searcher UTXO that funds one child. The returned
// release func must be called once the request is finished with it.
type UTXOSelector interface {
	Select(candidates []*tx.UTXO) (*tx.UTXO, func(), error)
}

// Selector hands out the first candidate not reserved by an in-flight
// request. It is safe for concurrent use.
type Selector struct {
	mu       sync.Mutex
	reserved map[wire.OutPoint]struct{}
}

var _ UTXOSelector = (*Selector)(nil)

// NewSelector creates a Selector with no reservations.
func NewSelector() *Selector {
	return &Selector{reserved: make(map[wire.OutPoint]struct{})}
}

// Select reserves and returns the first unreserved, unspent candidate in the
// order given. It returns tx.ErrNoSearcherFunds when none is left.
func (s *Selector) Select(candidates []*tx.UTXO) (*tx.UTXO, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range candidates {
		if u == nil || u.Spent {
			continue
		}
		op := u.OutPoint()
		if _, taken := s.reserved[op]; taken {
			continue
		}
		s.reserved[op] = struct{}{}

		var once sync.Once
		release := func() {
			once.Do(func() {
				s.mu.Lock()
				delete(s.reserved, op)
				s.mu.Unlock()
			})
		}
		return u, release, nil
	}
	return nil, func() {}, tx.ErrNoSearcherFunds
}

// Reserved returns the number of outpoints currently held.
func (s *Selector) Reserved() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reserved)
}
