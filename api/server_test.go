package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/slugline/network"
	"github.com/bitfsorg/slugline/searcher"
	"github.com/bitfsorg/slugline/tx"
)

// fakeProcessor returns canned results and records what it received.
type fakeProcessor struct {
	result   *searcher.Result
	err      error
	info     *network.NetworkInfo
	infoErr  error
	received []string
}

func (f *fakeProcessor) Process(_ context.Context, encoded string) (*searcher.Result, error) {
	f.received = append(f.received, encoded)
	return f.result, f.err
}

func (f *fakeProcessor) Health(context.Context) (*network.NetworkInfo, error) {
	return f.info, f.infoErr
}

func newTestServer(t *testing.T, proc Processor) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv, err := NewServer("127.0.0.1:0", proc)
	require.NoError(t, err)
	return srv.Handler()
}

func post(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, SubmitResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/submit-psbt", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func TestSubmitPSBTSuccess(t *testing.T) {
	proc := &fakeProcessor{result: &searcher.Result{ParentTxID: "aa", ChildTxID: "bb", Fee: 26000}}
	h := newTestServer(t, proc)

	rec, resp := post(t, h, `{"psbt":"cHNidP8BAA=="}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"aa", "bb"}, resp.PackageTxIDs)
	assert.Equal(t, int64(26000), resp.Fee)
	assert.Nil(t, resp.Error)
	assert.Equal(t, []string{"cHNidP8BAA=="}, proc.received)
}

func TestSubmitPSBTBindingErrors(t *testing.T) {
	for name, body := range map[string]string{
		"missing field": `{}`,
		"not json":      `psbt=abc`,
		"bad encoding":  `{"psbt":"!!! not base64 or hex !!!"}`,
	} {
		t.Run(name, func(t *testing.T) {
			proc := &fakeProcessor{}
			rec, resp := post(t, newTestServer(t, proc), body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, searcher.KindMalformedInput, resp.Error.Kind)
			assert.Empty(t, proc.received)
		})
	}
}

func TestSubmitPSBTErrorKinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{searcher.ErrMalformedInput, http.StatusBadRequest, searcher.KindMalformedInput},
		{searcher.ErrMissingAnchor, http.StatusUnprocessableEntity, searcher.KindMissingAnchor},
		{searcher.ErrAssetNotFound, http.StatusUnprocessableEntity, searcher.KindAssetNotFound},
		{tx.ErrNoSearcherFunds, http.StatusServiceUnavailable, searcher.KindNoSearcherFunds},
		{&tx.InsufficientSearcherFundsError{Available: 1000, Fee: 3590}, http.StatusServiceUnavailable, searcher.KindInsufficientSearcherFunds},
		{&network.RPCError{Method: "listunspent", Err: network.ErrConnectionFailed}, http.StatusBadGateway, searcher.KindRPCFailure},
		{errors.New("boom"), http.StatusInternalServerError, searcher.KindInternal},
	}
	for _, tc := range tests {
		t.Run(tc.kind, func(t *testing.T) {
			rec, resp := post(t, newTestServer(t, &fakeProcessor{err: tc.err}), `{"psbt":"00"}`)
			assert.Equal(t, tc.status, rec.Code)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.kind, resp.Error.Kind)
			assert.Equal(t, tc.err.Error(), resp.Message)
		})
	}
}

func TestSubmitPSBTPackageRejected(t *testing.T) {
	err := &searcher.PackageRejectedError{TxID: "cc", Message: "min relay fee not met, 100 < 3590"}
	rec, resp := post(t, newTestServer(t, &fakeProcessor{err: err}), `{"psbt":"00"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, searcher.KindPackageRejected, resp.Error.Kind)
	assert.Equal(t, "cc", resp.Error.TxID)
	assert.Equal(t, "min relay fee not met, 100 < 3590", resp.Error.Message)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &fakeProcessor{info: &network.NetworkInfo{Subversion: "/Satoshi:28.0.0/"}})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","node":"/Satoshi:28.0.0/"}`, rec.Body.String())

	h = newTestServer(t, &fakeProcessor{infoErr: network.ErrConnectionFailed})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestClientRoundTrip(t *testing.T) {
	proc := &fakeProcessor{result: &searcher.Result{ParentTxID: "aa", ChildTxID: "bb"}}
	srv := httptest.NewServer(newTestServer(t, proc))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	resp, err := c.SubmitPSBT(context.Background(), "00ff")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"aa", "bb"}, resp.PackageTxIDs)

	proc.err, proc.result = searcher.ErrMissingAnchor, nil
	resp, err = c.SubmitPSBT(context.Background(), "00ff")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, searcher.KindMissingAnchor, resp.Error.Kind)
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).SubmitPSBT(context.Background(), "00")
	assert.ErrorIs(t, err, ErrRequestFailed)
}
