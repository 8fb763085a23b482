package openai

import (
	"net/http"
	"os"

	"github.com/nirb28/dsp-adk2/pkg/llms"
)

const (
	tokenEnvVarName = "OPENAI_API_KEY" //nolint:gosec
	modelEnvVarName = "OPENAI_MODEL"   //nolint:gosec
)

type options struct {
	token      string
	model      string
	baseURL    string
	provider   llms.ProviderType
	httpClient *http.Client
}

// Option is a functional option for the OpenAI client.
type Option func(*options)

func applyOptions(opts ...Option) *options {
	o := &options{
		token:    os.Getenv(tokenEnvVarName),
		model:    os.Getenv(modelEnvVarName),
		provider: llms.ProviderOpenAI,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithToken passes the API token to the client.
func WithToken(token string) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithModel passes the model name to the client.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithBaseURL points the client at a non-default endpoint,
// such as Groq, NVIDIA, or a self-hosted gateway.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithProviderType labels responses and errors with the given provider.
func WithProviderType(provider llms.ProviderType) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithHTTPClient allows setting a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}
