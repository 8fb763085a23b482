package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/slices"
	"github.com/nirb28/dsp-adk2/pkg/spec"
)

// executeAPI calls an HTTP endpoint tool. Path placeholders of the form
// {param} are filled from arguments; the remaining arguments become
// query parameters for GET, DELETE and HEAD, or the JSON body otherwise.
func (d *Dispatcher) executeAPI(ctx context.Context, tool *spec.ToolSpec, args map[string]any) (any, error) {
	endpoint, remaining := fillPathParams(tool.APIEndpoint, args)

	method := strings.ToUpper(tool.APIMethod)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	switch method {
	case http.MethodGet, http.MethodDelete, http.MethodHead:
		if len(remaining) > 0 {
			q := url.Values{}
			for k, v := range remaining {
				q.Set(k, fmt.Sprint(v))
			}
			sep := "?"
			if strings.Contains(endpoint, "?") {
				sep = "&"
			}
			endpoint += sep + q.Encode()
		}
	default:
		bs, err := json.Marshal(remaining)
		if err != nil {
			return nil, NewError(tool.Name, CategoryExecution, errors.Wrap(err, "failed to encode request body"))
		}
		body = bytes.NewReader(bs)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, NewError(tool.Name, CategoryConnection, errors.Wrap(err, "failed to create request"))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range tool.APIHeaders {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, NewError(tool.Name, categorizeTransportError(err), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(tool.Name, CategoryConnection, errors.Wrap(err, "failed to read response"))
	}

	if resp.StatusCode >= 400 {
		return nil, NewError(tool.Name, CategoryHTTPStatus,
			errors.Newf("%s returned status %d: %s", endpoint, resp.StatusCode, slices.StringUpto(string(raw), 256)))
	}

	return decodeResponse(resp.Header.Get("Content-Type"), raw), nil
}

func fillPathParams(endpoint string, args map[string]any) (string, map[string]any) {
	remaining := make(map[string]any, len(args))
	for k, v := range args {
		placeholder := "{" + k + "}"
		if strings.Contains(endpoint, placeholder) {
			endpoint = strings.ReplaceAll(endpoint, placeholder, url.PathEscape(fmt.Sprint(v)))
			continue
		}
		remaining[k] = v
	}
	return endpoint, remaining
}

func categorizeTransportError(err error) Category {
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return CategoryTimeout
	}
	return CategoryConnection
}

// decodeResponse returns parsed JSON when the endpoint sends it, the raw
// text otherwise.
func decodeResponse(contentType string, raw []byte) any {
	if strings.Contains(contentType, "json") {
		var parsed any
		if err := json.Unmarshal(raw, &parsed); err == nil {
			return parsed
		}
	}
	return string(raw)
}
