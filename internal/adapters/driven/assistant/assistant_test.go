package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driven"
)

// scriptedLLM returns canned output and records what it was sent.
type scriptedLLM struct {
	out      string
	err      error
	prompt   string
	messages []driven.ChatMessage
	genOpts  driven.GenerateOptions
	chatOpts driven.ChatOptions
}

func (s *scriptedLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	s.prompt, s.genOpts = prompt, opts
	return s.out, s.err
}

func (s *scriptedLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	s.messages, s.chatOpts = messages, opts
	return s.out, s.err
}

func (s *scriptedLLM) ModelName() string          { return "scripted" }
func (s *scriptedLLM) Ping(context.Context) error { return nil }
func (s *scriptedLLM) Close() error               { return nil }

// mapPrompts is an in-memory PromptStore.
type mapPrompts map[string]string

func (m mapPrompts) Load(name string) (string, error) {
	if p, ok := m[name]; ok {
		return p, nil
	}
	return "", errors.New("missing")
}

func (m mapPrompts) Reload() {}

func samplePage() domain.PageSnapshot {
	return domain.PageSnapshot{
		URL:   "https://shop.example.com",
		Title: "Shop",
		Elements: []domain.PageElement{
			{Tag: "button", Text: "Sign in", ID: "signin", Visible: true},
			{Tag: "input", Type: "search", Name: "q", Visible: true},
		},
		Structure: domain.PageStructure{Buttons: 1, Inputs: 1},
	}
}

func TestDesignTests(t *testing.T) {
	llm := &scriptedLLM{out: `{"test_cases":[{"name":"Sign in","steps":["Click signin"],"priority":"High"},{"name":"Search","steps":["Use the search input"]}]}`}
	a := New(llm, nil)

	result, err := a.DesignTests(context.Background(), samplePage(), 5)

	require.NoError(t, err)
	require.Len(t, result.TestCases, 2)
	assert.Equal(t, 95.0, result.CoverageScore)
	assert.Contains(t, llm.prompt, "exactly 5 test cases")
	assert.Contains(t, llm.prompt, "https://shop.example.com")
	assert.Contains(t, llm.prompt, "text='Sign in'")
	assert.True(t, llm.genOpts.JSON)
}

func TestDesignTests_UsesPromptStore(t *testing.T) {
	llm := &scriptedLLM{out: "garbage"}
	a := New(llm, mapPrompts{driven.PromptDesignTests: "N=%d U=%s S=%s E=%s"})

	result, err := a.DesignTests(context.Background(), samplePage(), 0)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(llm.prompt, "N=12 U=https://shop.example.com"))
	assert.Equal(t, "Header Presence", result.TestCases[0].Name)
}

func TestDesignTests_BadTemplate(t *testing.T) {
	a := New(&scriptedLLM{}, mapPrompts{driven.PromptDesignTests: "only %s"})

	_, err := a.DesignTests(context.Background(), samplePage(), 3)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDesignTests_Errors(t *testing.T) {
	_, err := New(nil, nil).DesignTests(context.Background(), samplePage(), 3)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	a := New(&scriptedLLM{err: domain.ErrNetwork}, nil)
	_, err = a.DesignTests(context.Background(), samplePage(), 3)
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestChat_BuildsConversation(t *testing.T) {
	llm := &scriptedLLM{out: `{"response":"Looks good","test_cases":null}`}
	a := New(llm, nil)
	page, err := json.Marshal(samplePage())
	require.NoError(t, err)

	reply, err := a.Chat(context.Background(), domain.ChatRequest{
		TestCases:   []domain.TestCase{{ID: 1, Name: "Sign in", Priority: domain.PriorityHigh}},
		Message:     "Any gaps?",
		Exploration: page,
		History: []domain.ChatMessage{
			{Role: domain.ChatRoleUser, Content: "hello"},
			{Role: domain.ChatRoleAssistant, Content: "hi"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "Looks good", reply.ResponseText)
	assert.False(t, reply.HasModifications())

	require.Len(t, llm.messages, 4)
	assert.Equal(t, "system", llm.messages[0].Role)
	assert.Contains(t, llm.messages[0].Content, "URL: https://shop.example.com")
	assert.Contains(t, llm.messages[0].Content, `"name": "Sign in"`)
	assert.Equal(t, "user", llm.messages[1].Role)
	assert.Equal(t, "assistant", llm.messages[2].Role)
	assert.Equal(t, "Any gaps?", llm.messages[3].Content)
	assert.True(t, llm.chatOpts.JSON)
}

func TestChat_Modifications(t *testing.T) {
	llm := &scriptedLLM{out: `{"response":"Added two","test_cases":[
		{"id":3,"name":"A","steps":["x"],"priority":"low"},
		{"id":9,"name":"B","steps":["y"],"priority":"High"}]}`}

	reply, err := New(llm, nil).Chat(context.Background(), domain.ChatRequest{Message: "add"})

	require.NoError(t, err)
	require.True(t, reply.HasModifications())
	assert.Equal(t, 1, reply.ModifiedTestCases[0].ID)
	assert.Equal(t, 2, reply.ModifiedTestCases[1].ID)
	assert.Equal(t, domain.PriorityLow, reply.ModifiedTestCases[0].Priority)
}

func TestParseChatReply(t *testing.T) {
	tests := []struct {
		name     string
		out      string
		wantText string
		wantMods int
		wantErr  error
	}{
		{name: "plain text", out: "Just words", wantText: "Just words"},
		{name: "broken json", out: "{not json}", wantText: "{not json}"},
		{name: "empty list is no change", out: `{"response":"ok","test_cases":[]}`, wantText: "ok"},
		{name: "mods without text", out: `{"test_cases":[{"name":"A"}]}`, wantText: "Updated the suite to 1 test cases.", wantMods: 1},
		{name: "empty reply", out: `{"response":""}`, wantErr: domain.ErrValidation},
		{name: "bad cases", out: `{"response":"x","test_cases":"no"}`, wantErr: domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := parseChatReply(tt.out)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, reply.ResponseText)
			assert.Len(t, reply.ModifiedTestCases, tt.wantMods)
		})
	}
}

const sampleCode = `import pytest
from playwright.sync_api import Page, expect


def test_sign_in(page: Page):
    page.goto("https://shop.example.com")
    page.locator("#signin").click()
`

func TestGenerateCode(t *testing.T) {
	llm := &scriptedLLM{out: "```python\n" + sampleCode + "```\nHope this helps"}
	a := New(llm, nil)

	result, err := a.GenerateCode(context.Background(), domain.CodeRequest{
		TestCases: []domain.TestCase{{ID: 1, Name: "Sign in"}},
		URL:       "https://shop.example.com",
		SuiteName: "Shop",
		Elements:  []domain.PageElement{{Tag: "button", Text: "Sign in", Locator: "#signin"}},
	})

	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(sampleCode)+"\n", result.Code)
	assert.Contains(t, llm.prompt, "Suite: Shop")
	assert.Contains(t, llm.prompt, `button "Sign in": #signin`)
	assert.Contains(t, llm.prompt, "instructions from the user:\nNone")
}

func TestGenerateCode_RejectsNonCode(t *testing.T) {
	a := New(&scriptedLLM{out: "Sorry, I can't do that."}, nil)

	_, err := a.GenerateCode(context.Background(), domain.CodeRequest{SuiteName: "S"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, "x = 1", StripCodeFence("```python\nx = 1\n```"))
	assert.Equal(t, "x = 1", StripCodeFence("  x = 1  "))
	assert.Equal(t, "x = 1", StripCodeFence("Here:\n```\nx = 1\n```\nbye"))
}
