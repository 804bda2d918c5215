package translation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/rsstranslator/internal/config"
)

var (
	// ErrMissingAPIKey is returned when no API key is configured
	ErrMissingAPIKey = errors.New("translation API key not found")
	// ErrRejected is returned when the service refuses the request as malformed
	ErrRejected = errors.New("translation request rejected")
	// ErrTimeout is returned when the per-call timeout expires
	ErrTimeout = errors.New("translation request timed out")
	// ErrEmptyTranslation is returned when the service answers without text
	ErrEmptyTranslation = errors.New("no translation returned")
)

// completer sends one system + user instruction pair to a chat model
type completer interface {
	complete(ctx context.Context, system, user string) (string, error)
}

// Translator translates feed titles into the configured target language
type Translator struct {
	provider     string
	model        string
	languageName string
	timeout      time.Duration
	completer    completer
	breaker      *gobreaker.CircuitBreaker
	errOut       io.Writer
}

// NewTranslator creates a translator for the provider selected in cfg
func NewTranslator(ctx context.Context, cfg *config.Config) (*Translator, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	var (
		c   completer
		err error
	)
	switch cfg.Provider {
	case config.ProviderOpenAI:
		c = newOpenAICompleter(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case config.ProviderGemini:
		c, err = newGeminiCompleter(ctx, cfg.APIKey, cfg.BaseURL, cfg.Model)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown translation provider: %q", cfg.Provider)
	}

	return newTranslator(cfg, c), nil
}

func newTranslator(cfg *config.Config, c completer) *Translator {
	t := &Translator{
		provider:     cfg.Provider,
		model:        cfg.Model,
		languageName: LanguageName(cfg.Language),
		timeout:      cfg.TranslationTimeout,
		completer:    c,
		errOut:       os.Stderr,
	}

	if cfg.BreakerFailures > 0 {
		t.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Provider,
			MaxRequests: 1,
			Timeout:     time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.BreakerFailures
			},
			IsSuccessful: func(err error) bool {
				// A rejected title says nothing about the service health
				return err == nil || errors.Is(err, ErrRejected)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				fmt.Fprintf(t.errOut, "Translation service %s: circuit %s -> %s\n", name, from, to)
			},
		})
	}

	return t
}

// LanguageName returns the target language as it appears in the prompt
func (t *Translator) LanguageName() string {
	return t.languageName
}

// TranslateTitle translates one title. Every failure is returned as an error:
// ErrTimeout, ErrRejected, ErrEmptyTranslation, gobreaker.ErrOpenState or a
// wrapped provider error.
func (t *Translator) TranslateTitle(ctx context.Context, text string) (string, error) {
	call := func() (interface{}, error) {
		return t.translate(ctx, text)
	}

	var (
		result interface{}
		err    error
	)
	if t.breaker != nil {
		result, err = t.breaker.Execute(call)
	} else {
		result, err = call()
	}
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

func (t *Translator) translate(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	content, err := t.completer.complete(ctx, systemPrompt, userPrompt(t.languageName, text))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s: %v", ErrTimeout, t.timeout, err)
		}
		return "", err
	}

	translation := strings.TrimSpace(content)
	if translation == "" {
		return "", ErrEmptyTranslation
	}

	return translation, nil
}
