package rpc

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/LiskHQ/sdk-core/pkg/log"
)

const testSubscriptionID = 42

var upgrader = websocket.Upgrader{}

type handlerFunc func(params json.RawMessage) (interface{}, error)

// mockNode serves JSON-RPC over HTTP on /rpc and subscriptions on /rpc-ws.
type mockNode struct {
	server   *httptest.Server
	handlers map[string]handlerFunc

	// failures is the number of requests answered with 503 before serving.
	failures int
	// notifications are pushed right after a subscription is confirmed.
	notifications []JSONRPCNotification
	subscribeErr  error

	mu           sync.Mutex
	calls        int
	unsubscribed chan uint64
}

func newMockNode(t *testing.T) *mockNode {
	t.Helper()
	node := &mockNode{
		handlers:     map[string]handlerFunc{},
		unsubscribed: make(chan uint64, 10),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", node.HandleRequest)
	mux.HandleFunc("/rpc-ws", node.handleUpgrade)
	node.server = httptest.NewServer(mux)
	t.Cleanup(node.server.Close)
	return node
}

func (n *mockNode) httpURL() string {
	return n.server.URL + "/rpc"
}

func (n *mockNode) wsURL() string {
	return "ws" + strings.TrimPrefix(n.server.URL, "http") + "/rpc-ws"
}

func (n *mockNode) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

func (n *mockNode) HandleRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	n.mu.Lock()
	n.calls++
	fail := n.calls <= n.failures
	n.mu.Unlock()
	if fail {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	body := &JSONRPCRequest{}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write(getErrResponse(0, err, jsonRPCParseError))
		return
	}
	if err := body.Validate(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write(getErrResponse(body.ID, err, jsonRPCInvalidRequestError))
		return
	}
	handler, exist := n.handlers[body.Method]
	if !exist {
		_, _ = w.Write(getErrResponse(body.ID, errors.New("method not found"), jsonRPCMethodNotFoundError))
		return
	}
	result, err := handler(body.Params)
	if err != nil {
		_, _ = w.Write(getErrResponse(body.ID, err, jsonRPCInternalError))
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		_, _ = w.Write(getErrResponse(body.ID, err, jsonRPCInternalError))
		return
	}
	_, _ = w.Write(getSuccessResponse(body.ID, data))
}

func (n *mockNode) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	req := &JSONRPCRequest{}
	if err := conn.ReadJSON(req); err != nil {
		return
	}
	if n.subscribeErr != nil {
		_ = conn.WriteMessage(websocket.TextMessage, getErrResponse(req.ID, n.subscribeErr, jsonRPCInvalidParamError))
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, getSuccessResponse(req.ID, []byte(strconv.Itoa(testSubscriptionID)))); err != nil {
		return
	}
	for _, notification := range n.notifications {
		if err := conn.WriteJSON(notification); err != nil {
			return
		}
	}
	for {
		req := &JSONRPCRequest{}
		if err := conn.ReadJSON(req); err != nil {
			return
		}
		ids := []uint64{}
		if err := json.Unmarshal(req.Params, &ids); err == nil && len(ids) == 1 {
			n.unsubscribed <- ids[0]
		}
	}
}

func slotNotification(subscription uint64, result string) JSONRPCNotification {
	return JSONRPCNotification{
		JSONRPC: jsonRPCVersion,
		Method:  methodSlotNotify,
		Params: notificationParams{
			Result:       json.RawMessage(result),
			Subscription: subscription,
		},
	}
}

func getErrResponse(id uint64, err error, errCode int) []byte {
	resp := &JSONRPCResponse{
		JSONRPC: jsonRPCVersion,
		ID:      &id,
		Error: &Error{
			Message: err.Error(),
			Code:    errCode,
		},
	}
	result, err := json.Marshal(resp)
	if err != nil {
		return []byte("Fail to marshal response")
	}
	return result
}

func getSuccessResponse(id uint64, result []byte) []byte {
	resp := &JSONRPCResponse{
		JSONRPC: jsonRPCVersion,
		ID:      &id,
		Result:  result,
	}
	encoded, err := json.Marshal(resp)
	if err != nil {
		return []byte("Fail to marshal response")
	}
	return encoded
}

func newTestLogger(t *testing.T) log.Logger {
	t.Helper()
	logger, err := log.NewSilentLogger()
	require.NoError(t, err)
	return logger
}
