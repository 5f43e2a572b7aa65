package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/shared"
	"github.com/openai/openai-go/v2/shared/constant"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// VariantGenerator produces phonetically similar variants of a person name,
// ordered most common to least common. A malformed upstream payload yields an
// empty candidate list, not an error; errors are reserved for upstream failures.
type VariantGenerator interface {
	Variants(ctx context.Context, name string, limit int) ([]string, error)
}

// GeneratorOptions configures the upstream-backed variant generator.
type GeneratorOptions struct {
	Client       *Client
	Model        string
	Timeout      time.Duration
	SystemPrompt string
}

type variantGenerator struct {
	client         *Client
	logger         *logrus.Logger
	model          string
	timeout        time.Duration
	systemPrompt   string
	responseFormat openai.ChatCompletionNewParamsResponseFormatUnion
}

// The persona constrains output to full phonetic variants in Latin-American
// Spanish orthography, excluding abbreviations and nicknames, ordered by
// commonness.
const defaultSystemPrompt = "Eres un experto en onomástica, con un profundo conocimiento de nombres en Latinoamérica. Tu tarea es generar variaciones de nombres de persona que suenen lo más similar posible al nombre dado, priorizando la fonética y la ortografía común de la región. Evita las abreviaciones, acortamientos o nombres que, aunque relacionados, no compartan la misma pronunciación exacta (por ejemplo, para 'Cristian' evita 'Cris' y para 'Leonidas' evita 'León' o 'Leonardo'). La lista debe estar ordenada de las variaciones más comunes a las menos comunes y debe ser un arreglo de cadenas de texto en formato JSON. Considera los patrones como 'Yesica', 'Jessica', 'Jesika', 'Jezica', etc."

// NewVariantGenerator constructs a VariantGenerator backed by the generation API.
func NewVariantGenerator(opts GeneratorOptions) (VariantGenerator, error) {
	if opts.Client == nil {
		return nil, eris.New("llm client is required")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, eris.New("generator model is required")
	}

	systemPrompt := strings.TrimSpace(opts.SystemPrompt)
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	return &variantGenerator{
		client:         opts.Client,
		logger:         opts.Client.logger,
		model:          model,
		timeout:        opts.Timeout,
		systemPrompt:   systemPrompt,
		responseFormat: buildVariantsResponseFormat(),
	}, nil
}

func (g *variantGenerator) Variants(ctx context.Context, name string, limit int) ([]string, error) {
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return nil, eris.New("name is required")
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(g.systemPrompt),
			openai.UserMessage(fmt.Sprintf("Genera una lista de %d variaciones de nombres que suenen o se escriban de manera similar a \"%s\".", limit, trimmedName)),
		},
		ResponseFormat: g.responseFormat,
	}

	completion, err := g.client.chat.New(ctx, params)
	if err != nil {
		g.logError(logrus.Fields{"name": trimmedName}, err, "requesting chat completion")
		return nil, eris.Wrap(err, "requesting chat completion")
	}

	if len(completion.Choices) == 0 {
		g.logMalformed(trimmedName, "completion returned no choices")
		return []string{}, nil
	}

	candidates, ok := parseCandidates(completion.Choices[0].Message.Content)
	if !ok {
		g.logMalformed(trimmedName, "completion payload is not a JSON array of strings")
		return []string{}, nil
	}

	return candidates, nil
}

// parseCandidates treats the model payload as untrusted input: anything that
// is not a JSON array of strings is reported as malformed, never as an error.
func parseCandidates(raw string) ([]string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, false
	}

	var candidates []string
	if err := json.Unmarshal([]byte(trimmed), &candidates); err != nil {
		return nil, false
	}

	if candidates == nil {
		candidates = []string{}
	}

	return candidates, true
}

func (g *variantGenerator) logMalformed(name, reason string) {
	if g.logger == nil {
		return
	}
	g.logger.WithFields(logrus.Fields{
		"name":   name,
		"reason": reason,
	}).Warn("malformed upstream payload, returning no candidates")
}

func (g *variantGenerator) logError(fields logrus.Fields, err error, message string) {
	if g.logger == nil || err == nil {
		return
	}

	entry := g.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}

func buildVariantsResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	schema := map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "string",
		},
	}

	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        "name_variants",
				Description: openai.String("Name variants ordered most common to least common"),
				Schema:      schema,
			},
			Type: constant.ValueOf[constant.JSONSchema](),
		},
	}
}
