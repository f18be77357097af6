package api

// SubmitRequest is the body of POST /submit-psbt. PSBT holds a signed parent
// as base64 PSBT, hex PSBT or hex raw transaction.
type SubmitRequest struct {
	PSBT string `json:"psbt" binding:"required,txenc"`
}

// ErrorBody classifies a failed submission.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	TxID    string `json:"txid,omitempty"`
}

// SubmitResponse is returned for every submission, successful or not.
type SubmitResponse struct {
	Success      bool       `json:"success"`
	Message      string     `json:"message"`
	PackageTxIDs []string   `json:"package_txids,omitempty"`
	Fee          int64      `json:"fee,omitempty"`
	Error        *ErrorBody `json:"error,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Node   string `json:"node,omitempty"`
	Error  string `json:"error,omitempty"`
}
