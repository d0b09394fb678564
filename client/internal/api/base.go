// Package api binds each backend route to one function. Functions are
// stateless; the caller supplies the *http.Client that carries auth headers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/photostream/photostream/client/internal/types"
	perrors "github.com/photostream/photostream/internal/errors"
)

// HTTPClient interface for dependency injection
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// do sends one JSON request and decodes a JSON response into out (if non-nil).
// Any status outside wantStatus becomes a classified HTTP error; a transport
// failure becomes a classified network error.
func do(ctx context.Context, httpClient HTTPClient, method, url, op string, in, out any, wantStatus ...int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return perrors.NewNetworkError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !statusIn(resp.StatusCode, wantStatus) {
		return perrors.NewHTTPError(resp.StatusCode, readErrorMessage(resp.Body), op)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return perrors.ClassifyHTTPError(http.StatusBadGateway, "malformed response body",
			fmt.Errorf("%s: decode response: %w", op, err))
	}
	return nil
}

func statusIn(code int, want []int) bool {
	if len(want) == 0 {
		return code == http.StatusOK
	}
	for _, w := range want {
		if code == w {
			return true
		}
	}
	return false
}

// readErrorMessage extracts the message of a {error, code, message} body,
// falling back to the raw text.
func readErrorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if len(raw) == 0 {
		return ""
	}
	var er types.ErrorResponse
	if err := json.Unmarshal(raw, &er); err == nil {
		switch {
		case er.Message != "":
			return er.Message
		case er.Error != "":
			return er.Error
		}
	}
	return string(bytes.TrimSpace(raw))
}
