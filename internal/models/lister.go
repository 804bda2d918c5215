package models

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"codeberg.org/snonux/rsstranslator/internal/config"
)

// Lister handles listing available chat models
type Lister struct {
	provider string
	apiKey   string
	baseURL  string
	current  string
	out      io.Writer
}

// NewLister creates a new model lister for the provider in cfg
func NewLister(cfg *config.Config) *Lister {
	return &Lister{
		provider: cfg.Provider,
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		current:  cfg.Model,
		out:      os.Stdout,
	}
}

// SetOutput redirects the printed model list
func (l *Lister) SetOutput(out io.Writer) {
	l.out = out
}

// ChatModels returns the sorted ids of the models usable for translation
func (l *Lister) ChatModels(ctx context.Context) ([]string, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("%s API key not found. Set %s environment variable or configure translation.api_key in .rsstranslator.yaml",
			l.provider, config.APIKeyEnv(l.provider))
	}

	var (
		models []string
		err    error
	)
	switch l.provider {
	case config.ProviderGemini:
		models, err = l.geminiModels(ctx)
	default:
		models, err = l.openAIModels(ctx)
	}
	if err != nil {
		return nil, err
	}

	sort.Strings(models)
	return models, nil
}

func (l *Lister) openAIModels(ctx context.Context) ([]string, error) {
	clientConfig := openai.DefaultConfig(l.apiKey)
	if l.baseURL != "" {
		clientConfig.BaseURL = l.baseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	list, err := client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	var models []string
	for _, model := range list.Models {
		id := model.ID
		// Speech, image and embedding models cannot translate
		if strings.Contains(id, "tts") || strings.Contains(id, "audio") ||
			strings.Contains(id, "dall-e") || strings.Contains(id, "embedding") ||
			strings.Contains(id, "whisper") || strings.Contains(id, "moderation") {
			continue
		}
		if strings.Contains(id, "gpt") || strings.Contains(id, "chat") || strings.HasPrefix(id, "o") {
			models = append(models, id)
		}
	}
	return models, nil
}

func (l *Lister) geminiModels(ctx context.Context) ([]string, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  l.apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if l.baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: l.baseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	var models []string
	for model, err := range client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		for _, action := range model.SupportedActions {
			if action == "generateContent" {
				models = append(models, strings.TrimPrefix(model.Name, "models/"))
				break
			}
		}
	}
	return models, nil
}

// ListAvailableModels prints the chat models, marking the configured one
func (l *Lister) ListAvailableModels(ctx context.Context) error {
	models, err := l.ChatModels(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(l.out, "Chat/Translation Models (%s):\n", l.provider)
	if len(models) == 0 {
		fmt.Fprintln(l.out, "  No chat models found")
		return nil
	}

	for _, model := range models {
		marker := " "
		if model == l.current {
			marker = "*"
		}
		fmt.Fprintf(l.out, " %s %s\n", marker, model)
	}

	return nil
}
