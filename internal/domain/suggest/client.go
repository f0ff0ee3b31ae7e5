package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/plumenote/plume/internal/infra/llm"
)

// Request is one suggestion refresh call. Previous carries the full current
// suggestion set so the service can re-validate and carry forward advice that
// still applies instead of regenerating from scratch. Model is an opaque
// caller choice, passed through unchanged.
type Request struct {
	Model    string
	Content  string
	Previous []Suggestion
}

// Client is the AI suggestion service as the coordinator sees it: one call,
// unbounded latency, may fail. Transport and validation failures are
// indistinguishable to the caller.
type Client interface {
	Suggest(ctx context.Context, req Request) ([]Suggestion, error)
}

// errMalformedResponse means the response envelope itself did not parse.
// Individual bad items are dropped instead, without failing the request.
var errMalformedResponse = errors.New("malformed suggestion response")

var jsonFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

const suggestSystemPrompt = "You are Plume, a writing assistant for short professional documents. " +
	"Return only valid JSON."

// ServiceClient implements Client on top of the LLM provider router.
type ServiceClient struct {
	router *llm.Router
}

// NewServiceClient creates a ServiceClient.
func NewServiceClient(router *llm.Router) *ServiceClient {
	return &ServiceClient{router: router}
}

// Suggest performs one refresh call: build the prompt, run the chat
// completion, parse and sanitize the response. An empty (or absent) suggestion
// list in a well-formed response is a valid result that clears the set.
func (c *ServiceClient) Suggest(ctx context.Context, req Request) ([]Suggestion, error) {
	provider, err := c.router.RouteKey(ctx, req.Model)
	if err != nil {
		return nil, err
	}

	resp, err := provider.ChatCompletion(ctx, llm.ChatRequest{
		Model: req.Model,
		Messages: []llm.Message{
			{Role: "system", Content: suggestSystemPrompt},
			{Role: "user", Content: buildSuggestPrompt(req.Content, req.Previous)},
		},
		Temperature: 0.1,
		MaxTokens:   800,
	})
	if err != nil {
		return nil, err
	}

	return parseSuggestions(resp.Content)
}

// buildSuggestPrompt renders the document and the previous suggestions into
// the user message.
func buildSuggestPrompt(content string, previous []Suggestion) string {
	b := strings.Builder{}
	b.WriteString("Document:\n")
	b.WriteString(content)
	b.WriteString("\n\nPrevious suggestions:\n")
	b.WriteString(renderPreviousForPrompt(previous))
	b.WriteString("\nTask: Review the document and return writing suggestions.")
	b.WriteString(" Keep previous suggestions that still apply, drop the rest, add new ones.")
	b.WriteString(" Each matcher must be a lowercase substring of the document text it refers to.")
	b.WriteString("\nRespond ONLY with JSON in this format:")
	b.WriteString(` {"suggestions":[{"matcher":"...","advice":"..."}]}`)
	return b.String()
}

func renderPreviousForPrompt(previous []Suggestion) string {
	if len(previous) == 0 {
		return "(none)\n"
	}
	b := strings.Builder{}
	for i, s := range previous {
		b.WriteString("[")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("] ")
		b.WriteString(s.Matcher)
		b.WriteString(" — ")
		b.WriteString(s.Advice)
		b.WriteString("\n")
	}
	return b.String()
}

// parseSuggestions extracts the suggestion envelope from raw model output.
// Models wrap JSON in prose or code fences, so several candidate substrings
// are tried; the first that decodes wins. If no candidate decodes, the whole
// response is a failure.
func parseSuggestions(raw string) ([]Suggestion, error) {
	for _, candidate := range extractJSONCandidates(raw) {
		if items, ok := decodeSuggestionEnvelope(candidate); ok {
			return sanitizeSuggestions(items), nil
		}
	}
	return nil, errMalformedResponse
}

func extractJSONCandidates(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	candidates := make([]string, 0, 4)
	candidates = appendNonEmptyCandidate(candidates, trimmed)
	candidates = append(candidates, extractFencedCandidates(trimmed)...)
	candidates = appendRangeCandidate(candidates, trimmed, "{", "}")
	candidates = appendRangeCandidate(candidates, trimmed, "[", "]")
	return dedupeStrings(candidates)
}

func appendNonEmptyCandidate(candidates []string, value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return candidates
	}
	return append(candidates, value)
}

func extractFencedCandidates(input string) []string {
	matches := jsonFenceRe.FindAllStringSubmatch(input, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		if len(match) < 2 {
			continue
		}
		out = appendNonEmptyCandidate(out, match[1])
	}
	return out
}

func appendRangeCandidate(candidates []string, input, open, close string) []string {
	start, end := strings.Index(input, open), strings.LastIndex(input, close)
	if start < 0 || end <= start {
		return candidates
	}
	return appendNonEmptyCandidate(candidates, input[start:end+1])
}

// decodeSuggestionEnvelope tries the documented envelope and, tolerantly, a
// bare array. ok=true means the envelope parsed — an empty or null list is
// then a legitimate "no suggestions" result, not an error.
func decodeSuggestionEnvelope(candidate string) ([]Suggestion, bool) {
	var envelope struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(candidate), &envelope); err == nil {
		return envelope.Suggestions, true
	}

	var list []Suggestion
	if err := json.Unmarshal([]byte(candidate), &list); err == nil {
		return list, true
	}
	return nil, false
}

// sanitizeSuggestions drops items missing either field and normalizes the
// rest: trimmed advice, trimmed lowercase matcher, duplicates removed.
func sanitizeSuggestions(items []Suggestion) []Suggestion {
	clean := make([]Suggestion, 0, len(items))
	seen := map[string]struct{}{}
	for _, item := range items {
		item.Matcher = strings.ToLower(strings.TrimSpace(item.Matcher))
		item.Advice = strings.TrimSpace(item.Advice)
		if item.Matcher == "" || item.Advice == "" {
			continue
		}
		key := item.Matcher + "|" + item.Advice
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		clean = append(clean, item)
	}
	return clean
}

func dedupeStrings(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
