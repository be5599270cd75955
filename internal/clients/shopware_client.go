package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"storefront-bff/internal/jsonapi"
	"storefront-bff/internal/query"
)

const acceptHeader = "application/vnd.api+json, application/json"

// ShopwareConfig configures the admin API client.
type ShopwareConfig struct {
	BaseURL           string
	ClientID          string
	ClientSecret      string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
}

// ShopwareClient talks to the shop's admin API.
type ShopwareClient struct {
	baseURL     string
	httpClient  *http.Client
	tokens      *TokenSource
	rateLimiter *rate.Limiter
	retrier     *Retrier
	breaker     *CircuitBreaker
	logger      *logrus.Entry
}

func NewShopwareClient(cfg ShopwareConfig, logger *logrus.Entry) *ShopwareClient {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	retryConfig := DefaultRetryConfig()
	if cfg.MaxRetries >= 0 {
		retryConfig.MaxRetries = cfg.MaxRetries
	}
	retrier := NewRetrier(retryConfig)
	retrier.OnRetry = func(operation string, attempt int, status int, backoff time.Duration) {
		logger.WithFields(logrus.Fields{
			"operation": operation,
			"attempt":   attempt,
			"status":    status,
			"backoff":   backoff.String(),
		}).Warn("Retrying upstream request")
	}

	return &ShopwareClient{
		baseURL:     baseURL,
		httpClient:  httpClient,
		tokens:      NewTokenSource(baseURL, cfg.ClientID, cfg.ClientSecret, httpClient),
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond)+1),
		retrier:     retrier,
		breaker:     NewCircuitBreaker(5, 30*time.Second),
		logger:      logger,
	}
}

// Search posts criteria to /search/{entity}.
func (c *ShopwareClient) Search(ctx context.Context, entity string, criteria query.Criteria) (*jsonapi.Document, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/search/"+url.PathEscape(entity), criteria)
	if err != nil {
		return nil, err
	}

	var doc jsonapi.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode %s search response: %w", entity, err)
	}
	return &doc, nil
}

// GetProduct returns the product payload as the API sent it.
func (c *ShopwareClient) GetProduct(ctx context.Context, id string) (map[string]interface{}, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/product/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var product map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&product); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	return product, nil
}

// UpdateProduct patches a product. The API usually answers 204, in which
// case the result is nil.
func (c *ShopwareClient) UpdateProduct(ctx context.Context, id string, payload map[string]interface{}) (interface{}, error) {
	body, err := c.doRequest(ctx, http.MethodPatch, "/product/"+url.PathEscape(id), payload)
	if err != nil {
		return nil, err
	}
	return decodeOptional(body), nil
}

// RemoveProductCategory detaches a category from a product.
func (c *ShopwareClient) RemoveProductCategory(ctx context.Context, productID, categoryID string) error {
	path := fmt.Sprintf("/product/%s/categories/%s", url.PathEscape(productID), url.PathEscape(categoryID))
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil)
	return err
}

// CircuitState exposes the breaker state for readiness checks.
func (c *ShopwareClient) CircuitState() CircuitState {
	return c.breaker.State()
}

func (c *ShopwareClient) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	operation := method + " " + path

	if !c.breaker.Allow() {
		return nil, &UpstreamError{Operation: operation, Err: ErrCircuitOpen}
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encode %s body: %w", operation, err)
		}
	}

	for authAttempt := 0; ; authAttempt++ {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}

		resp, result := c.retrier.DoHTTP(ctx, operation, func(ctx context.Context) (*http.Response, error) {
			if err := c.rateLimiter.Wait(ctx); err != nil {
				return nil, err
			}

			var reader io.Reader
			if payload != nil {
				reader = bytes.NewReader(payload)
			}
			req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Accept", acceptHeader)
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)

			c.logger.WithFields(logrus.Fields{
				"method": method,
				"path":   path,
			}).Debug("Upstream request")
			return c.httpClient.Do(req)
		})

		if resp == nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			c.breaker.RecordFailure()
			return nil, &UpstreamError{Operation: operation, Err: result.LastError}
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			c.breaker.RecordFailure()
			return nil, &UpstreamError{Operation: operation, Err: err}
		}

		if resp.StatusCode == http.StatusUnauthorized && authAttempt == 0 {
			c.tokens.Invalidate()
			continue
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.logger.WithFields(logrus.Fields{
				"operation": operation,
				"status":    resp.StatusCode,
				"attempts":  result.Attempts,
			}).Warn("Upstream request failed")
			return nil, &UpstreamError{Operation: operation, StatusCode: resp.StatusCode, Body: respBody}
		}

		return respBody, nil
	}
}

func decodeOptional(body []byte) interface{} {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return string(body)
	}
	return v
}
