package network

import "context"

// MockNodeService is a test double for NodeService.
// All function fields must be set before the corresponding method is called.
type MockNodeService struct {
	ListUnspentFn                  func(ctx context.Context, minConf int) ([]*UTXO, error)
	SignRawTransactionWithWalletFn func(ctx context.Context, rawTxHex string, prevTxs []PrevTx) (*SignResult, error)
	SubmitPackageFn                func(ctx context.Context, rawTxHexes []string) (*PackageResult, error)
	GetNetworkInfoFn               func(ctx context.Context) (*NetworkInfo, error)
}

var _ NodeService = (*MockNodeService)(nil)

func (m *MockNodeService) ListUnspent(ctx context.Context, minConf int) ([]*UTXO, error) {
	return m.ListUnspentFn(ctx, minConf)
}
func (m *MockNodeService) SignRawTransactionWithWallet(ctx context.Context, rawTxHex string, prevTxs []PrevTx) (*SignResult, error) {
	return m.SignRawTransactionWithWalletFn(ctx, rawTxHex, prevTxs)
}
func (m *MockNodeService) SubmitPackage(ctx context.Context, rawTxHexes []string) (*PackageResult, error) {
	return m.SubmitPackageFn(ctx, rawTxHexes)
}
func (m *MockNodeService) GetNetworkInfo(ctx context.Context) (*NetworkInfo, error) {
	return m.GetNetworkInfoFn(ctx)
}
