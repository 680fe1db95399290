package providers

import (
	"fmt"
	"sort"
)

// Constructor builds a Client from config.
type Constructor func(cfg ClientConfig) (Client, error)

var constructors = map[string]Constructor{
	GeminiName: func(cfg ClientConfig) (Client, error) {
		return NewGeminiClient(cfg)
	},
	OpenRouterName: func(cfg ClientConfig) (Client, error) {
		return NewOpenRouterClient(cfg)
	},
	OpenAIName: func(cfg ClientConfig) (Client, error) {
		return NewOpenAIClient(cfg)
	},
}

// NewClient builds the client for cfg.Type and applies its rate limit.
func NewClient(cfg ClientConfig) (Client, error) {
	ctor, ok := constructors[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown provider type %q (known: %v)", cfg.Type, Types())
	}
	client, err := ctor(cfg)
	if err != nil {
		return nil, err
	}
	return WithRateLimit(client, cfg.RateLimit), nil
}

// Types returns the known provider types, sorted.
func Types() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
