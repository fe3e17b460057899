// Package graphql implements the transport layer shared by every service:
// a thin GraphQL-over-HTTP client authenticated with the organization API key.
package graphql

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/facebookgo/httpcontrol"
	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"github.com/labelforge/labelforge-go/config"
)

// Executor is the single entry point services use to reach the platform.
// *Client satisfies it; tests substitute fakes.
type Executor interface {
	Execute(ctx context.Context, query string, variables map[string]interface{}, result interface{}) error
}

type Client struct {
	rest     *resty.Client
	endpoint string
}

// Error is a GraphQL resolver error returned by the platform.
type Error struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

func (e *Error) Error() string {
	if e.Extensions.Code != "" {
		return fmt.Sprintf("graphql: %s (%s)", e.Message, e.Extensions.Code)
	}
	return "graphql: " + e.Message
}

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []*Error        `json:"errors"`
}

func NewClient(cfg *config.Config) *Client {
	transport := &httpcontrol.Transport{
		RequestTimeout:      cfg.API.Timeout,
		DisableKeepAlives:   false,
		MaxIdleConnsPerHost: cfg.Upload.Concurrency,
		MaxTries:            3,
		RetryAfterTimeout:   true,
	}
	if !cfg.API.VerifySSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	rest := resty.NewWithClient(&http.Client{Transport: transport}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "X-API-Key: "+cfg.API.Key).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{rest: rest, endpoint: cfg.API.Endpoint}
}

// Execute posts the query and decodes the "data" payload into result.
// A resolver error is returned as *Error.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]interface{}, result interface{}) error {
	var body response

	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(request{Query: query, Variables: variables}).
		SetResult(&body).
		SetError(&body).
		Post(c.endpoint)
	if err != nil {
		return fmt.Errorf("post graphql request: %w", err)
	}

	if len(body.Errors) > 0 {
		log.WithField("code", body.Errors[0].Extensions.Code).Debug(body.Errors[0].Message)
		return body.Errors[0]
	}
	if resp.IsError() {
		return fmt.Errorf("graphql endpoint returned %s", resp.Status())
	}

	if result != nil && len(body.Data) > 0 {
		if err := json.Unmarshal(body.Data, result); err != nil {
			return fmt.Errorf("decode graphql response: %w", err)
		}
	}
	return nil
}

var _ Executor = (*Client)(nil)
