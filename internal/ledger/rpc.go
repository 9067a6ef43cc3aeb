package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"golang.org/x/crypto/sha3"
)

// The anchor gateway speaks JSON-RPC 2.0 over HTTP.
const (
	methodSubmit  = "ledger.submit"
	methodReceipt = "ledger.receipt"
	methodRead    = "ledger.read"

	// rpcCodeNotFound is the gateway's code for an absent record.
	rpcCodeNotFound = -32004
)

const (
	receiptPending   = "pending"
	receiptConfirmed = "confirmed"
	receiptRejected  = "rejected"
)

type submitParams struct {
	Operation   string `json:"operation"`
	Args        []any  `json:"args"`
	Signer      string `json:"signer"`
	SubmittedAt int64  `json:"submittedAt"`
	Signature   string `json:"signature,omitempty"`
}

type readParams struct {
	Query string `json:"query"`
	Args  []any  `json:"args"`
}

type receiptResult struct {
	Status      string          `json:"status"`
	ConfirmedAt int64           `json:"confirmedAt"`
	Result      json.RawMessage `json:"result"`
	Reason      string          `json:"reason"`
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

var rpcID atomic.Uint64

// call performs one JSON-RPC round trip, decoding the result into out when
// the response carries no error. Gateway-level errors come back as *rpcError
// so callers can classify them; everything else is a transport failure.
func (c *Client) call(ctx context.Context, method string, params, out any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      rpcID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("encode rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: gateway returned status %d", method, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}
	return nil
}

// digest is the keccak-256 hash signed by the submission identity.
func digest(payload []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(payload)
	return h.Sum(nil)
}
