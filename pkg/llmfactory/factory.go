// Package llmfactory creates provider clients from declarative LLM
// configurations and caches them per configuration.
package llmfactory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/nirb28/dsp-adk2/pkg/llms"
	"github.com/nirb28/dsp-adk2/pkg/llms/anthropic"
	"github.com/nirb28/dsp-adk2/pkg/llms/openai"
	"github.com/nirb28/dsp-adk2/pkg/spec"
)

var logger = xlog.NewPackageLogger("github.com/nirb28/dsp-adk2", "llmfactory")

// NewLLM is a wrapper for CreateLLM to allow for overriding the default
// implementation in tests.
var NewLLM = CreateLLM

// Known base URLs for OpenAI-compatible providers.
const (
	GroqBaseURL   = "https://api.groq.com/openai/v1"
	NvidiaBaseURL = "https://integrate.api.nvidia.com/v1"
)

// Factory creates and caches LLM models.
type Factory interface {
	// Model returns an LLM client for the configuration, building it on
	// first use and reusing it afterwards.
	Model(cfg *spec.LLMConfig) (llms.Model, error)
}

type factory struct {
	lock  sync.Mutex
	byKey map[string]llms.Model
}

// New creates a new LLM factory.
func New() Factory {
	return &factory{
		byKey: make(map[string]llms.Model),
	}
}

func (f *factory) Model(cfg *spec.LLMConfig) (llms.Model, error) {
	key := cacheKey(cfg)

	f.lock.Lock()
	defer f.lock.Unlock()

	if model, ok := f.byKey[key]; ok {
		return model, nil
	}

	model, err := NewLLM(cfg)
	if err != nil {
		return nil, err
	}
	f.byKey[key] = model

	logger.KV(xlog.DEBUG,
		"status", "model_created",
		"provider", cfg.Provider,
		"model", cfg.Model,
	)
	return model, nil
}

func cacheKey(cfg *spec.LLMConfig) string {
	return fmt.Sprintf("%s|%s|%s", strings.ToUpper(cfg.Provider), cfg.Model, cfg.BaseURL)
}

// CreateLLM builds a provider client from the configuration.
func CreateLLM(cfg *spec.LLMConfig) (llms.Model, error) {
	provType := strings.ToUpper(cfg.Provider)
	switch llms.ProviderType(provType) {
	case llms.ProviderOpenAI:
		return newOpenAICompatible(cfg, llms.ProviderOpenAI, "")
	case llms.ProviderAzure:
		if cfg.BaseURL == "" {
			return nil, errors.New("azure provider requires base_url")
		}
		return newOpenAICompatible(cfg, llms.ProviderAzure, "")
	case llms.ProviderGroq:
		return newOpenAICompatible(cfg, llms.ProviderGroq, GroqBaseURL)
	case llms.ProviderNvidia:
		return newOpenAICompatible(cfg, llms.ProviderNvidia, NvidiaBaseURL)
	case llms.ProviderOpenAICompatible:
		if cfg.BaseURL == "" {
			return nil, errors.New("openai_compatible provider requires base_url")
		}
		return newOpenAICompatible(cfg, llms.ProviderOpenAICompatible, "")
	case llms.ProviderAnthropic:
		return newAnthropic(cfg)
	}
	return nil, errors.Errorf("unsupported provider type: %s", provType)
}

func newOpenAICompatible(cfg *spec.LLMConfig, provider llms.ProviderType, defaultBaseURL string) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithProviderType(provider),
	}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	if baseURL := values.StringsCoalesce(cfg.BaseURL, defaultBaseURL); baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	return openai.New(opts...)
}

func newAnthropic(cfg *spec.LLMConfig) (llms.Model, error) {
	opts := []anthropic.Option{
		anthropic.WithModel(cfg.Model),
	}
	if cfg.APIKey != "" {
		opts = append(opts, anthropic.WithToken(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}
	return anthropic.New(opts...)
}
