package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/codex-platform/codex-cli/internal/domain"
	"github.com/codex-platform/codex-cli/internal/ports"
)

const maxErrorMessageBytes = 512

var errNilResponse = errors.New("empty response from api")

// call issues one JSON request and decodes a 2xx body into out. Any other
// status becomes a *domain.APIError.
func call(ctx context.Context, exec ports.Executor, method, path string, query url.Values, in any, out any) error {
	req := &ports.Request{Method: method, Path: path, Query: query}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		req.Body = body
	}

	resp, err := exec.Execute(ctx, req)
	if err != nil {
		return err
	}

	return decodeResponse(resp, method, path, out)
}

func decodeResponse(resp *ports.Response, method, path string, out any) error {
	if resp == nil {
		return fmt.Errorf("%s %s: %w", method, path, errNilResponse)
	}
	if !resp.Success() {
		return apiError(resp)
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}

	return nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func apiError(resp *ports.Response) *domain.APIError {
	apiErr := &domain.APIError{StatusCode: resp.StatusCode}

	var body errorBody
	if err := json.Unmarshal(resp.Body, &body); err == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	} else if text := strings.TrimSpace(string(resp.Body)); text != "" && !strings.HasPrefix(text, "<") {
		apiErr.Message = text
	}
	apiErr.Message = truncateMessage(apiErr.Message, maxErrorMessageBytes)
	if apiErr.Message == "" {
		apiErr.Message = strings.ToLower(http.StatusText(resp.StatusCode))
	}

	return apiErr
}

// truncateMessage cuts s to at most limit bytes without splitting a rune.
func truncateMessage(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
