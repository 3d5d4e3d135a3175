package rpctransport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// connState is the WebSocket transport's lifecycle state, per spec.md
// §4.5.5: Connecting -> Open -> (Reconnecting -> Open)* -> Closed.
type connState int32

const (
	stateConnecting connState = iota
	stateOpen
	stateReconnecting
	stateClosed
)

func (s connState) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateOpen:
		return "open"
	case stateReconnecting:
		return "reconnecting"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// pendingCall is the correlation-map slot for one in-flight single request.
type pendingCall struct {
	resp chan response
}

// subEntry is one live subscription's router entry.
type subEntry struct {
	ch     chan json.RawMessage
	closed chan struct{}
	once   sync.Once
}

func (e *subEntry) close() {
	e.once.Do(func() { close(e.closed); close(e.ch) })
}

// WSConfig tunes reconnect and keepalive behavior.
type WSConfig struct {
	PingInterval    time.Duration // default 10s, per spec.md §4.5.5
	PingTimeout     time.Duration // default PingInterval
	ReconnectDelay  time.Duration // base delay between reconnect attempts
	MaxReconnects   int           // 0 = unlimited; [ADDED] explicit cap, see DESIGN.md
	Headers         map[string]string
	Logger          log.Logger
	Metrics         *metrics
}

func (c *WSConfig) withDefaults() WSConfig {
	out := *c
	if out.PingInterval <= 0 {
		out.PingInterval = 10 * time.Second
	}
	if out.PingTimeout <= 0 {
		out.PingTimeout = out.PingInterval
	}
	if out.ReconnectDelay <= 0 {
		out.ReconnectDelay = time.Second
	}
	if out.Logger == nil {
		out.Logger = log.Root()
	}
	return out
}

// WSTransport is a full-duplex JSON-RPC transport over a WebSocket
// connection, supporting subscriptions in addition to single requests.
type WSTransport struct {
	url     string
	cfg     WSConfig
	session string

	state atomic.Int32

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[uint64]*pendingCall
	subs    map[string]*subEntry
	ids     idCounter

	writeCh    chan []byte
	reconnects int

	closeOnce sync.Once
	done      chan struct{}
}

// DialWS connects to a WebSocket JSON-RPC endpoint and starts its reader
// and writer goroutines.
func DialWS(ctx context.Context, url string, cfg WSConfig) (*WSTransport, error) {
	cfg = cfg.withDefaults()
	t := &WSTransport{
		url:     url,
		cfg:     cfg,
		session: uuid.NewString(),
		pending: make(map[uint64]*pendingCall),
		subs:    make(map[string]*subEntry),
		writeCh: make(chan []byte, 64),
		done:    make(chan struct{}),
	}
	t.state.Store(int32(stateConnecting))
	if err := t.connect(ctx); err != nil {
		return nil, err
	}
	t.state.Store(int32(stateOpen))
	go t.writeLoop()
	go t.readLoop()
	go t.pingLoop()
	return t, nil
}

func (t *WSTransport) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 30 * time.Second}
	header := make(map[string][]string)
	for k, v := range t.cfg.Headers {
		header[k] = []string{v}
	}
	conn, _, err := dialer.DialContext(ctx, t.url, header)
	if err != nil {
		return fmt.Errorf("%w: dial failed: %v", ErrNoResponse, err)
	}
	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()
	return nil
}

func (t *WSTransport) currentState() connState {
	return connState(t.state.Load())
}

// Call sends a single request and blocks until its response arrives, the
// connection closes, or ctx is cancelled.
func (t *WSTransport) Call(ctx context.Context, method string, params interface{}, out interface{}) error {
	if t.currentState() == stateClosed {
		return newRPCError(CodeConnectionClosed, "transport is closed", nil)
	}
	id := t.ids.nextID()
	slot := &pendingCall{resp: make(chan response, 1)}

	t.mu.Lock()
	t.pending[id] = slot
	t.mu.Unlock()

	cleanup := func() {
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
	}

	body, err := json.Marshal(request{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	if err != nil {
		cleanup()
		return err
	}
	select {
	case t.writeCh <- body:
	case <-t.done:
		cleanup()
		return newRPCError(CodeConnectionClosed, "transport is closed", nil)
	case <-ctx.Done():
		cleanup()
		return newRPCError(CodeCallTimeout, ctx.Err().Error(), nil)
	}

	select {
	case resp := <-slot.resp:
		if err := validateResponse(resp); err != nil {
			return err
		}
		if resp.Error != nil {
			return resp.Error.toRPCError()
		}
		if out != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, out); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
			}
		}
		return nil
	case <-t.done:
		cleanup()
		return newRPCError(CodeConnectionClosed, "transport is closed", nil)
	case <-ctx.Done():
		cleanup()
		return newRPCError(CodeCallTimeout, ctx.Err().Error(), nil)
	}
}

// Subscribe issues an eth_subscribe call and installs the router entry
// before the call completes, so a notification racing the subscribe
// response is never lost. The returned unsubscribe func removes the
// router entry and issues eth_unsubscribe asynchronously.
func (t *WSTransport) Subscribe(ctx context.Context, method string, params interface{}) (string, <-chan json.RawMessage, func(), error) {
	if t.currentState() == stateClosed {
		return "", nil, nil, newRPCError(CodeConnectionClosed, "transport is closed", nil)
	}

	var subID string
	if err := t.Call(ctx, method, params, &subID); err != nil {
		return "", nil, nil, err
	}

	entry := &subEntry{ch: make(chan json.RawMessage, 256), closed: make(chan struct{})}
	t.mu.Lock()
	t.subs[subID] = entry
	t.mu.Unlock()
	t.cfg.Metrics.subscriptionOpened()

	unsubscribe := func() {
		t.mu.Lock()
		delete(t.subs, subID)
		t.mu.Unlock()
		entry.close()
		t.cfg.Metrics.subscriptionClosed()
		go func() {
			unsubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = t.Call(unsubCtx, "eth_unsubscribe", []interface{}{subID}, nil)
		}()
	}
	return subID, entry.ch, unsubscribe, nil
}

// Close transitions the transport to Closed, failing all pending single
// requests with CONNECTION_CLOSED and closing all subscription channels.
func (t *WSTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.state.Store(int32(stateClosed))
		close(t.done)

		// Blocked Call goroutines wake on the <-t.done case below (closed
		// just above) and return CONNECTION_CLOSED directly; no need to
		// push anything into their response slots.
		t.mu.Lock()
		conn := t.conn
		t.pending = make(map[uint64]*pendingCall)
		subs := t.subs
		t.subs = make(map[string]*subEntry)
		t.mu.Unlock()

		for _, s := range subs {
			s.close()
		}
		if conn != nil {
			err = conn.Close()
		}
	})
	return err
}

func (t *WSTransport) writeLoop() {
	for {
		select {
		case msg := <-t.writeCh:
			t.mu.Lock()
			conn := t.conn
			t.mu.Unlock()
			if conn == nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				t.cfg.Logger.Warn("rpctransport: write failed", "session", t.session, "err", err)
				t.triggerReconnect()
			}
		case <-t.done:
			return
		}
	}
}

func (t *WSTransport) readLoop() {
	for {
		t.mu.Lock()
		conn := t.conn
		t.mu.Unlock()
		if conn == nil {
			return
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-t.done:
				return
			default:
			}
			t.cfg.Logger.Warn("rpctransport: read failed", "session", t.session, "err", err)
			if !t.triggerReconnect() {
				return
			}
			continue
		}
		t.dispatch(msg)
	}
}

func (t *WSTransport) dispatch(msg []byte) {
	var probe struct {
		Method string `json:"method"`
	}
	if err := json.Unmarshal(msg, &probe); err == nil && probe.Method == "eth_subscription" {
		var n subscriptionNotification
		if err := json.Unmarshal(msg, &n); err != nil {
			t.cfg.Logger.Warn("rpctransport: malformed subscription notification", "err", err)
			return
		}
		t.mu.Lock()
		entry := t.subs[n.Params.Subscription]
		t.mu.Unlock()
		if entry == nil {
			return
		}
		select {
		case entry.ch <- n.Params.Result:
		case <-entry.closed:
		default:
			t.cfg.Logger.Warn("rpctransport: subscription channel full, dropping event", "subscription", n.Params.Subscription)
		}
		return
	}

	var r response
	if err := json.Unmarshal(msg, &r); err != nil || r.ID == nil {
		return
	}
	t.mu.Lock()
	slot := t.pending[*r.ID]
	delete(t.pending, *r.ID)
	t.mu.Unlock()
	if slot == nil {
		return
	}
	select {
	case slot.resp <- r:
	default:
	}
}

func (t *WSTransport) pingLoop() {
	ticker := time.NewTicker(t.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.mu.Lock()
			conn := t.conn
			t.mu.Unlock()
			if conn == nil {
				continue
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(t.cfg.PingTimeout)); err != nil {
				t.triggerReconnect()
			}
		case <-t.done:
			return
		}
	}
}

// triggerReconnect moves Open -> Reconnecting and attempts to re-dial,
// returning false if the transport is closed or the reconnect cap (if
// configured) is exhausted.
func (t *WSTransport) triggerReconnect() bool {
	if t.currentState() == stateClosed {
		return false
	}
	t.state.Store(int32(stateReconnecting))

	for {
		t.mu.Lock()
		t.reconnects++
		attempt := t.reconnects
		t.mu.Unlock()

		if t.cfg.MaxReconnects > 0 && attempt > t.cfg.MaxReconnects {
			t.cfg.Logger.Error("rpctransport: reconnect attempts exhausted, closing", "session", t.session)
			_ = t.Close()
			return false
		}

		select {
		case <-t.done:
			return false
		case <-time.After(t.cfg.ReconnectDelay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := t.connect(ctx)
		cancel()
		if err == nil {
			t.state.Store(int32(stateOpen))
			return true
		}
		t.cfg.Logger.Warn("rpctransport: reconnect attempt failed", "session", t.session, "attempt", attempt, "err", err)
	}
}
