package network

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionFailed indicates the client could not connect to the node.
	ErrConnectionFailed = errors.New("network: connection failed")

	// ErrAuthFailed indicates authentication (e.g., RPC credentials) was rejected.
	ErrAuthFailed = errors.New("network: authentication failed")

	// ErrInvalidResponse indicates the node returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("network: invalid response")

	// ErrRPCFailure matches every error returned by an RPC call.
	ErrRPCFailure = errors.New("network: rpc failure")

	// ErrSigningIncomplete indicates the wallet could not sign every input.
	ErrSigningIncomplete = errors.New("network: wallet signing incomplete")

	// ErrUnknownNetwork indicates the network name is not in the lookup table.
	ErrUnknownNetwork = errors.New("network: unknown network")
)

// RPCError describes a failed node call. Method names the RPC; Code and
// Message carry the node's JSON-RPC error when there is one, otherwise Err
// holds the transport or decoding failure.
type RPCError struct {
	Method  string
	Code    int
	Message string
	Err     error
}

func (e *RPCError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network: %s: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("network: %s: rpc error %d: %s", e.Method, e.Code, e.Message)
}

// Unwrap returns the underlying transport or decoding error, if any.
func (e *RPCError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrRPCFailure.
func (e *RPCError) Is(target error) bool {
	return target == ErrRPCFailure
}
