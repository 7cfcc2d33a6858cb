// Package rpc provides JSON-RPC clients of a node: HTTP for requests and websocket for subscriptions.
package rpc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/ratelimit"

	"github.com/LiskHQ/sdk-core/pkg/crypto"
	"github.com/LiskHQ/sdk-core/pkg/log"
	"github.com/LiskHQ/sdk-core/pkg/transaction"
)

const (
	defaultTimeout     = 30 * time.Second
	retryBaseDuration  = 100 * time.Millisecond
	retryMaxDuration   = 5 * time.Second
	maxResponseSize    = 10 * 1024 * 1024
	methodSendTx       = "sendTransaction"
	methodLatestHash   = "getLatestBlockhash"
	encodingBase64     = "base64"
	contentTypeHeader  = "Content-Type"
	contentTypeJSONApp = "application/json"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	URL string
	// RateLimit is the maximum number of requests per second. Zero disables the limit.
	RateLimit int
	// Timeout of a single HTTP attempt.
	Timeout time.Duration
	// MaxRetries is the number of retries of transport failures, HTTP 429 and 5xx responses.
	MaxRetries uint64
}

// Client sends JSON-RPC requests over HTTP.
type Client struct {
	logger     log.Logger
	url        string
	httpClient *http.Client
	limiter    ratelimit.Limiter
	maxRetries uint64
	nextID     atomic.Uint64
}

// NewClient creates a client of the node at config.URL.
func NewClient(logger log.Logger, config ClientConfig) (*Client, error) {
	if config.URL == "" {
		return nil, errors.New("rpc url must be specified")
	}
	if config.RateLimit < 0 {
		return nil, fmt.Errorf("invalid rate limit %d", config.RateLimit)
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	limiter := ratelimit.NewUnlimited()
	if config.RateLimit > 0 {
		limiter = ratelimit.New(config.RateLimit)
	}
	return &Client{
		logger:     logger,
		url:        config.URL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		maxRetries: config.MaxRetries,
	}, nil
}

// Call invokes method with params and unmarshals the result into result.
// A JSON-RPC error is returned as *Error and is never retried.
func (c *Client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	req, err := newRequest(c.nextID.Add(1), method, params)
	if err != nil {
		return err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	backoff, err := retry.NewExponential(retryBaseDuration)
	if err != nil {
		return err
	}
	backoff = retry.WithCappedDuration(retryMaxDuration, backoff)
	backoff = retry.WithMaxRetries(c.maxRetries, backoff)

	attempt := 0
	resp := &JSONRPCResponse{}
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			c.logger.Warningf("Retrying %s on attempt %d", method, attempt)
		}
		c.limiter.Take()
		return c.post(ctx, body, resp)
	}); err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	if resp.Error != nil {
		return fmt.Errorf("calling %s: %w", method, resp.Error)
	}
	if resp.ID == nil || *resp.ID != req.ID {
		return fmt.Errorf("calling %s: response id does not match request id %d", method, req.ID)
	}
	if err := resp.decodeResult(result); err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, body []byte, resp *JSONRPCResponse) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set(contentTypeHeader, contentTypeJSONApp)
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return retry.RetryableError(err)
	}
	defer httpResp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return retry.RetryableError(err)
	}
	if httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= http.StatusInternalServerError {
		return retry.RetryableError(fmt.Errorf("node responded with status %d", httpResp.StatusCode))
	}
	if err := json.Unmarshal(data, resp); err != nil {
		return fmt.Errorf("invalid json rpc response with status %d: %w", httpResp.StatusCode, err)
	}
	c.logger.Debugf("Received response with status %d", httpResp.StatusCode)
	return nil
}

// SendTransaction submits the wire bytes of a fully signed transaction and returns its signature.
func (c *Client) SendTransaction(ctx context.Context, wire []byte) (crypto.Signature, error) {
	params := []interface{}{
		base64.StdEncoding.EncodeToString(wire),
		map[string]string{"encoding": encodingBase64},
	}
	result := ""
	if err := c.Call(ctx, methodSendTx, params, &result); err != nil {
		return crypto.Signature{}, err
	}
	return crypto.ParseSignature(result)
}

// LatestBlockhash is a blockhash usable as message lifetime until LastValidBlockHeight.
type LatestBlockhash struct {
	Slot                 uint64                `json:"-"`
	Blockhash            transaction.Blockhash `json:"blockhash"`
	LastValidBlockHeight uint64                `json:"lastValidBlockHeight"`
}

type latestBlockhashResult struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	Value *LatestBlockhash `json:"value"`
}

// GetLatestBlockhash returns the most recent blockhash of the node.
func (c *Client) GetLatestBlockhash(ctx context.Context) (*LatestBlockhash, error) {
	result := &latestBlockhashResult{}
	if err := c.Call(ctx, methodLatestHash, nil, result); err != nil {
		return nil, err
	}
	if result.Value == nil {
		return nil, fmt.Errorf("calling %s: response has no value", methodLatestHash)
	}
	result.Value.Slot = result.Context.Slot
	return result.Value, nil
}
