package rpctransport

import (
	"context"
	"encoding/json"
	"fmt"
)

// batchEntry is one queued call within a Batch.
type batchEntry struct {
	id     uint64
	method string
	params interface{}
	out    interface{}
	err    error
}

// Batch accumulates N JSON-RPC requests to send as a single array, per
// spec's batching model: requests carry per-entry result decoders, the
// wire response order is unconstrained, and once sent no further entries
// may be queued.
type Batch struct {
	t       *HTTPTransport
	entries []*batchEntry
	sent    bool
}

// NewBatch creates an empty batch bound to t.
func (t *HTTPTransport) NewBatch() *Batch {
	return &Batch{t: t}
}

// AddCall queues method/params, decoding the eventual result into out
// (which may be nil to discard it). Returns an error if the batch has
// already been sent.
func (b *Batch) AddCall(method string, params interface{}, out interface{}) error {
	if b.sent {
		return fmt.Errorf("rpctransport: batch already sent, cannot add %q", method)
	}
	b.entries = append(b.entries, &batchEntry{
		id: b.t.ids.nextID(), method: method, params: params, out: out,
	})
	return nil
}

// Send serializes and posts the batch, routes each response element back
// to its queued entry by id, and reports whether every entry decoded
// without error. An entry with no matching response is recorded as a
// per-entry error; a response whose id matches no entry makes allParsed
// false. Neither disturbs the rest of the batch. Call Error(i) to inspect
// an individual entry's outcome after Send returns.
func (b *Batch) Send(ctx context.Context) (allParsed bool, err error) {
	if b.sent {
		return false, fmt.Errorf("rpctransport: batch already sent")
	}
	b.sent = true
	if len(b.entries) == 0 {
		return true, nil
	}

	reqs := make([]request, len(b.entries))
	for i, e := range b.entries {
		reqs[i] = request{JSONRPC: "2.0", ID: e.id, Method: e.method, Params: e.params}
	}

	body, err := json.Marshal(reqs)
	if err != nil {
		return false, err
	}
	raw, err := b.t.postRaw(ctx, body)
	if err != nil {
		return false, err
	}

	var responses []response
	if err := json.Unmarshal(raw, &responses); err != nil {
		return false, fmt.Errorf("%w: batch response is not a JSON array: %v", ErrInvalidResponse, err)
	}

	byID := make(map[uint64]*batchEntry, len(b.entries))
	for _, e := range b.entries {
		byID[e.id] = e
	}

	seen := make(map[uint64]bool, len(responses))
	unmatched := false
	for _, r := range responses {
		if r.ID == nil {
			continue
		}
		entry, ok := byID[*r.ID]
		if !ok {
			unmatched = true // response with no matching queued entry
			continue
		}
		seen[*r.ID] = true
		if err := validateResponse(r); err != nil {
			entry.err = err
			continue
		}
		if r.Error != nil {
			entry.err = r.Error.toRPCError()
			continue
		}
		if entry.out != nil && len(r.Result) > 0 {
			if err := json.Unmarshal(r.Result, entry.out); err != nil {
				entry.err = fmt.Errorf("%w: %v", ErrInvalidResponse, err)
			}
		}
	}

	allParsed = !unmatched
	for _, e := range b.entries {
		if !seen[e.id] {
			e.err = newRPCError(CodeNoResponse, "no response for batched request", nil)
		}
		if e.err != nil {
			allParsed = false
		}
	}
	return allParsed, nil
}

// Error returns the error (if any) for the i-th queued entry. Valid only
// after Send has returned.
func (b *Batch) Error(i int) error {
	if i < 0 || i >= len(b.entries) {
		return fmt.Errorf("rpctransport: batch entry index %d out of range", i)
	}
	return b.entries[i].err
}

// Len reports how many entries are queued.
func (b *Batch) Len() int { return len(b.entries) }
