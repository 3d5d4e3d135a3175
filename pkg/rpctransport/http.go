package rpctransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
)

// HTTPTransport issues single and batched JSON-RPC calls over HTTP POST.
// It holds no connection state between calls; each Call or Batch.Send is
// one round trip.
type HTTPTransport struct {
	url     string
	client  *http.Client
	headers map[string]string
	ids     idCounter
	log     log.Logger
	session string

	metrics *metrics
}

// HTTPOption configures an HTTPTransport at construction.
type HTTPOption func(*HTTPTransport)

// WithHTTPClient overrides the underlying *http.Client (e.g. for custom
// timeouts or a transport with connection pooling tuned by the caller).
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(t *HTTPTransport) { t.client = c }
}

// WithHeaders sets arbitrary headers added to every request, per spec's
// "configurable arbitrary header map" external interface.
func WithHeaders(h map[string]string) HTTPOption {
	return func(t *HTTPTransport) { t.headers = h }
}

// WithLogger overrides the default root logger.
func WithLogger(l log.Logger) HTTPOption {
	return func(t *HTTPTransport) { t.log = l }
}

// WithMetrics attaches a metrics recorder; nil (the default) disables
// metrics recording entirely.
func WithMetrics(m *metrics) HTTPOption {
	return func(t *HTTPTransport) { t.metrics = m }
}

// NewHTTPTransport constructs a transport posting to url.
func NewHTTPTransport(url string, opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		url:     url,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log.Root(),
		session: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Call performs a single JSON-RPC request, decoding its result into out
// (which may be nil to discard the result).
func (t *HTTPTransport) Call(ctx context.Context, method string, params interface{}, out interface{}) error {
	start := time.Now()
	req := request{JSONRPC: "2.0", ID: t.ids.nextID(), Method: method, Params: params}
	resp, err := t.do(ctx, req)
	outcome := "ok"
	defer func() {
		if t.metrics != nil {
			t.metrics.observe(method, outcome, time.Since(start))
		}
	}()
	if err != nil {
		outcome = "transport_error"
		return err
	}
	if err := validateResponse(resp); err != nil {
		outcome = "invalid_response"
		return err
	}
	if resp.Error != nil {
		outcome = "rpc_error"
		return resp.Error.toRPCError()
	}
	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// Subscribe is unsupported over HTTP: spec mandates immediate rejection
// with METHOD_NOT_FOUND.
func (t *HTTPTransport) Subscribe(ctx context.Context, method string, params interface{}) (string, <-chan json.RawMessage, func(), error) {
	return "", nil, nil, newRPCError(CodeMethodNotFoundAlt, "subscriptions require a WebSocket transport", nil)
}

func (t *HTTPTransport) do(ctx context.Context, req request) (response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return response{}, fmt.Errorf("%w: encoding request: %v", ErrInvalidResponse, err)
	}
	raw, err := t.postRaw(ctx, body)
	if err != nil {
		return response{}, err
	}
	var r response
	if err := json.Unmarshal(raw, &r); err != nil {
		return response{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return r, nil
}

// postRaw POSTs body and returns the raw response payload, applying the
// non-2xx-response handling spec.md §4.5.2 mandates: try to parse the body
// as a JSON-RPC response first; only if that fails synthesize a CALL_FAILED
// RPCError carrying the status and raw body.
func (t *HTTPTransport) postRaw(ctx context.Context, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Session-Id", t.session)
	for k, v := range t.headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, newRPCError(CodeCallTimeout, ctx.Err().Error(), nil)
		}
		return nil, newRPCError(CodeNoResponse, err.Error(), nil)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, newRPCError(CodeNoResponse, err.Error(), nil)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var probe json.RawMessage
		if json.Unmarshal(respBody, &probe) == nil {
			return respBody, nil
		}
		return nil, newRPCError(CodeCallFailed, fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode, string(respBody)), nil)
	}
	return respBody, nil
}
