// Package assistant implements the test design, chat and code generation
// collaborator on top of an LLM service.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/suitesmith/internal/adapters/driven/config/file"
	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driven"
	"github.com/custodia-labs/suitesmith/internal/logger"
)

// Ensure Assistant implements the interfaces.
var (
	_ driven.Assistant        = (*Assistant)(nil)
	_ driven.PromptStoreAware = (*Assistant)(nil)
)

// Generation parameters per phase.
const (
	designTemperature = 0.4
	chatTemperature   = 0.3
	codeTemperature   = 0.2
	designMaxTokens   = 4096
	chatMaxTokens     = 4096
	codeMaxTokens     = 8192
	noInstructions    = "None"
)

// Assistant talks to an LLM using prompt templates from a PromptStore.
type Assistant struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// New creates an assistant. prompts may be nil, in which case the built-in
// templates are used.
func New(llm driven.LLMService, prompts driven.PromptStore) *Assistant {
	return &Assistant{llm: llm, prompts: prompts}
}

// SetPromptStore replaces the prompt source.
func (a *Assistant) SetPromptStore(store driven.PromptStore) {
	a.prompts = store
}

// DesignTests asks the model for desiredCount test cases for page.
func (a *Assistant) DesignTests(ctx context.Context, page domain.PageSnapshot, desiredCount int) (*domain.DesignResult, error) {
	if a.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if desiredCount <= 0 {
		desiredCount = domain.DefaultDesiredCount
	}

	prompt, err := a.render(driven.PromptDesignTests,
		desiredCount, page.URL, SummarizeStructure(page.Structure), SummarizeElements(page.Elements))
	if err != nil {
		return nil, err
	}

	logger.Debug("design prompt: %d chars, model %s", len(prompt), a.llm.ModelName())
	out, err := a.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   designMaxTokens,
		Temperature: designTemperature,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}

	cases := ParseTestCases(out)
	logger.Debug("parsed %d test cases", len(cases))
	return &domain.DesignResult{
		TestCases:     cases,
		CoverageScore: Coverage(cases, page.Elements),
	}, nil
}

// chatEnvelope is the JSON object the chat prompt asks for.
type chatEnvelope struct {
	Response  string          `json:"response"`
	TestCases json.RawMessage `json:"test_cases"`
}

// Chat sends one turn with the suite's history and current cases.
// A reply that is not the expected JSON object is treated as plain text
// with no modifications.
func (a *Assistant) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	if a.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	casesJSON, err := json.MarshalIndent(req.TestCases, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: encode test cases: %w", domain.ErrValidation, err)
	}
	system, err := a.render(driven.PromptChatSystem, pageContext(req.Exploration), string(casesJSON))
	if err != nil {
		return nil, err
	}

	messages := make([]driven.ChatMessage, 0, len(req.History)+2)
	messages = append(messages, driven.ChatMessage{Role: "system", Content: system})
	for _, m := range req.History {
		messages = append(messages, driven.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, driven.ChatMessage{Role: string(domain.ChatRoleUser), Content: req.Message})

	out, err := a.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}
	return parseChatReply(out)
}

func parseChatReply(out string) (*domain.ChatReply, error) {
	obj, ok := extractJSON(out, '{', '}')
	if !ok {
		return &domain.ChatReply{ResponseText: strings.TrimSpace(out)}, nil
	}

	var env chatEnvelope
	if err := json.Unmarshal([]byte(obj), &env); err != nil {
		logger.Debug("chat reply is not the expected envelope: %v", err)
		return &domain.ChatReply{ResponseText: strings.TrimSpace(out)}, nil
	}

	cases, err := decodeModifiedCases(env.TestCases)
	if err != nil {
		return nil, err
	}
	reply := &domain.ChatReply{ResponseText: strings.TrimSpace(env.Response)}
	if len(cases) > 0 {
		domain.RenumberTestCases(cases)
		reply.ModifiedTestCases = cases
	}
	if reply.ResponseText == "" {
		if reply.HasModifications() {
			reply.ResponseText = fmt.Sprintf("Updated the suite to %d test cases.", len(cases))
		} else {
			return nil, fmt.Errorf("%w: empty chat reply", domain.ErrValidation)
		}
	}
	return reply, nil
}

// GenerateCode asks the model for a pytest module.
func (a *Assistant) GenerateCode(ctx context.Context, req domain.CodeRequest) (*domain.CodeResult, error) {
	if a.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	casesJSON, err := json.MarshalIndent(req.TestCases, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: encode test cases: %w", domain.ErrValidation, err)
	}
	instructions := strings.TrimSpace(req.CustomInstructions)
	if instructions == "" {
		instructions = noInstructions
	}
	prompt, err := a.render(driven.PromptGenerateCode,
		req.SuiteName, req.URL, LocatorList(req.Elements), string(casesJSON), instructions)
	if err != nil {
		return nil, err
	}

	out, err := a.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   codeMaxTokens,
		Temperature: codeTemperature,
	})
	if err != nil {
		return nil, err
	}

	code := StripCodeFence(out)
	if !looksLikePython(code) {
		return nil, fmt.Errorf("%w: model output does not look like Python test code", domain.ErrValidation)
	}
	return &domain.CodeResult{Code: code + "\n"}, nil
}

// render loads a template and fills it.
func (a *Assistant) render(name string, args ...any) (string, error) {
	tmpl, ok := file.DefaultPrompt(name)
	if a.prompts != nil {
		loaded, err := a.prompts.Load(name)
		switch {
		case err == nil:
			tmpl, ok = loaded, true
		case !ok:
			return "", err
		default:
			logger.Warn("prompt %s: %v, using default", name, err)
		}
	}
	if !ok {
		return "", fmt.Errorf("%w: unknown prompt %q", domain.ErrNotFound, name)
	}

	out := fmt.Sprintf(tmpl, args...)
	if strings.Contains(out, "%!") {
		return "", fmt.Errorf("%w: prompt %s has mismatched placeholders", domain.ErrValidation, name)
	}
	return out, nil
}

// StripCodeFence removes a surrounding markdown code fence, if any.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		s = rest
	}
	return strings.TrimSpace(s)
}

func looksLikePython(code string) bool {
	hasDef := strings.Contains(code, "def ") || strings.Contains(code, "class ")
	hasImport := strings.Contains(code, "import")
	return (hasDef || hasImport) && len(code) > 100
}
