package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrExtractionFailed means the extractor reached the page but could
	// not produce a usable name and price. The product is skipped for the
	// cycle and retried next time.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrExtractorUnavailable means the extractor service itself could not
	// be reached or answered outside its contract.
	ErrExtractorUnavailable = errors.New("extractor unavailable")
)

// ExtractResult is the validated contract produced by the extraction
// service: a non-empty product name and a parsed price.
type ExtractResult struct {
	Name  string
	Price float64
}

type extractRequest struct {
	URL string `json:"url"`
}

type extractResponse struct {
	Status string          `json:"status"`
	Error  string          `json:"error"`
	Name   string          `json:"name"`
	Price  json.RawMessage `json:"price"`
}

// ExtractProduct asks the universal extraction service for the product
// name and current price at url. The service may return the price as a
// number or as a currency-formatted string; both are accepted here, the
// caller always sees a float.
func (c Client) ExtractProduct(ctx context.Context, url string) (ExtractResult, error) {
	reqBody, err := json.Marshal(extractRequest{URL: url})
	if err != nil {
		return ExtractResult{}, errors.Wrapf(err, "ExtractProduct: error marshalling request for url: %s", url)
	}

	req, err := newRequest(ctx, http.MethodPost, c.ExtractorURL+"/extract", bytes.NewReader(reqBody))
	if err != nil {
		return ExtractResult{}, errors.Wrapf(err, "ExtractProduct: error creating HTTP request for url: %s", url)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return ExtractResult{}, errors.Wrapf(ErrExtractorUnavailable, "ExtractProduct: error doing request for url: %s, err: %v", url, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.Logger.Errorf("ExtractProduct: error closing response body for url: %s, err: %v", url, err)
		}
	}()

	respBody, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 300000))
	if err != nil {
		return ExtractResult{}, errors.Wrapf(ErrExtractorUnavailable, "ExtractProduct: error reading response body for url: %s, err: %v", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return ExtractResult{}, errors.Wrapf(ErrExtractorUnavailable,
			"ExtractProduct: extractor returned status %d for url: %s, body: %s", resp.StatusCode, url, respBody)
	}

	var er extractResponse
	if err = json.Unmarshal(respBody, &er); err != nil {
		return ExtractResult{}, errors.Wrapf(ErrExtractorUnavailable,
			"ExtractProduct: error unmarshalling response body for url: %s, body: %s, err: %v", url, respBody, err)
	}

	if er.Status != "ok" {
		return ExtractResult{}, errors.Wrapf(ErrExtractionFailed, "ExtractProduct: url: %s, extractor error: %s", url, er.Error)
	}
	if er.Name == "" {
		return ExtractResult{}, errors.Wrapf(ErrExtractionFailed, "ExtractProduct: missing product name for url: %s", url)
	}
	price, err := parsePrice(er.Price)
	if err != nil {
		return ExtractResult{}, errors.Wrapf(ErrExtractionFailed, "ExtractProduct: url: %s, err: %v", url, err)
	}

	return ExtractResult{Name: er.Name, Price: price}, nil
}

func parsePrice(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, errors.New("missing price")
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, errors.Errorf("price is neither a number nor a string: %s", raw)
	}
	return normalizePrice(s)
}

// normalizePrice strips currency symbols and thousands separators from a
// price string like "$1,299.00" before parsing.
func normalizePrice(s string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0, errors.Errorf("price string contains no number: %q", s)
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, errors.Errorf("unparseable price string: %q", s)
	}
	return n, nil
}
