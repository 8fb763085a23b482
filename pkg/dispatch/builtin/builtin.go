// Package builtin provides the stock native tools available to every
// deployment: a calculator, text helpers, HTTP fetchers, and JSON
// codecs.
package builtin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/expr-lang/expr"
	"github.com/nirb28/dsp-adk2/pkg/dispatch"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Register binds all builtin functions into the registry.
func Register(reg *dispatch.FuncRegistry) error {
	for name, fn := range map[string]dispatch.NativeFunc{
		"calculator":     Calculator,
		"text_length":    TextLength,
		"uppercase":      Uppercase,
		"lowercase":      Lowercase,
		"reverse":        Reverse,
		"http_get":       HTTPGet,
		"http_post":      HTTPPost,
		"json_parse":     JSONParse,
		"json_stringify": JSONStringify,
	} {
		if err := reg.Register(name, fn); err != nil {
			return err
		}
	}
	return nil
}

// Calculator evaluates a math expression and returns the numeric
// result.
func Calculator(_ context.Context, args map[string]any) (any, error) {
	expression, err := stringArg(args, "expression")
	if err != nil {
		return nil, err
	}
	out, err := expr.Eval(expression, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to evaluate expression %q", expression)
	}
	return out, nil
}

// TextLength returns the length of the text in runes.
func TextLength(_ context.Context, args map[string]any) (any, error) {
	text, err := stringArg(args, "text")
	if err != nil {
		return nil, err
	}
	return len([]rune(text)), nil
}

// Uppercase converts the text to upper case.
func Uppercase(_ context.Context, args map[string]any) (any, error) {
	text, err := stringArg(args, "text")
	if err != nil {
		return nil, err
	}
	return strings.ToUpper(text), nil
}

// Lowercase converts the text to lower case.
func Lowercase(_ context.Context, args map[string]any) (any, error) {
	text, err := stringArg(args, "text")
	if err != nil {
		return nil, err
	}
	return strings.ToLower(text), nil
}

// Reverse reverses the text rune by rune.
func Reverse(_ context.Context, args map[string]any) (any, error) {
	text, err := stringArg(args, "text")
	if err != nil {
		return nil, err
	}
	runes := []rune(text)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes), nil
}

// HTTPGet fetches a URL and returns the response body, parsed as JSON
// when the server sends it.
func HTTPGet(ctx context.Context, args map[string]any) (any, error) {
	rawURL, err := stringArg(args, "url")
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	return doRequest(req)
}

// HTTPPost posts the `data` argument as JSON and returns the response
// body.
func HTTPPost(ctx context.Context, args map[string]any) (any, error) {
	rawURL, err := stringArg(args, "url")
	if err != nil {
		return nil, err
	}
	bs, err := json.Marshal(args["data"])
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request body")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(string(bs)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	return doRequest(req)
}

// JSONParse decodes a JSON string.
func JSONParse(_ context.Context, args map[string]any) (any, error) {
	text, err := stringArg(args, "json_string")
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, errors.Wrap(err, "invalid JSON")
	}
	return out, nil
}

// JSONStringify encodes the `value` argument as a JSON string.
func JSONStringify(_ context.Context, args map[string]any) (any, error) {
	bs, err := json.Marshal(args["value"])
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode value")
	}
	return string(bs), nil
}

func doRequest(req *http.Request) (any, error) {
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}
	if resp.StatusCode >= 400 {
		return nil, errors.Newf("%s returned status %d", req.URL, resp.StatusCode)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "json") {
		var parsed any
		if err := json.Unmarshal(raw, &parsed); err == nil {
			return parsed, nil
		}
	}
	return string(raw), nil
}

func stringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", errors.Newf("missing required argument: %s", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Newf("argument %s must be a string", name)
	}
	return s, nil
}
