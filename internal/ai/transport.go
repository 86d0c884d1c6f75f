package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// apiErrorBody is the error envelope used by both OpenAI and Anthropic.
type apiErrorBody struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// doJSON sends payload (nil for GET) to url and decodes the JSON response
// into out, classifying every failure into an *Error.
func doJSON(ctx context.Context, client *http.Client, op, method, url string, headers map[string]string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &Error{Kind: KindProtocol, Op: op, Message: "marshaling request", Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return &Error{Kind: KindConfiguration, Op: op, Message: fmt.Sprintf("creating request: %v", err), Err: err}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("User-Agent", "autoscribe/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Message: fmt.Sprintf("API request error: %v", err), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Message: fmt.Sprintf("reading response body: %v", err), Err: err}
	}

	if resp.StatusCode >= 400 {
		var envelope apiErrorBody
		remote := ""
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Error != nil {
			remote = envelope.Error.Message
		}
		e := upstreamError(op, resp.StatusCode, remote)
		if after, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
			e.Err = &retryAfterError{after: after}
		}
		return e
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{Kind: KindProtocol, Op: op, StatusCode: resp.StatusCode, Message: "invalid JSON response from API", Err: err}
	}
	return nil
}
