package llm

import "strings"

// FallbackReply is returned to the user when a provider result has no usable text.
const FallbackReply = "Sorry — error parsing model response."

// Kind identifies which shape of provider result produced the reply.
type Kind int

const (
	KindUnknown Kind = iota
	KindResponse
	KindOutput
	KindChoices
	KindText
	KindContent
)

func (k Kind) String() string {
	switch k {
	case KindResponse:
		return "response"
	case KindOutput:
		return "output"
	case KindChoices:
		return "choices"
	case KindText:
		return "text"
	case KindContent:
		return "content"
	default:
		return "unknown"
	}
}

// Result is a provider result reduced to one of the known shapes.
type Result struct {
	Kind Kind
	Text string
}

// Reply returns the text to show the user.
func (r Result) Reply() string {
	if r.Kind == KindUnknown {
		return FallbackReply
	}
	return r.Text
}

// Parse matches raw against the known shapes in priority order:
// a "response" string, an "output" list of parts, a "choices" list,
// a bare string, then a "content" string. The first shape yielding
// non-empty text wins; whitespace counts as text. Anything else, including a panic while
// inspecting raw, is KindUnknown.
func Parse(raw any) (res Result) {
	defer func() {
		if recover() != nil {
			res = Result{Kind: KindUnknown}
		}
	}()

	obj, _ := raw.(map[string]any)

	if obj != nil {
		if s, ok := obj["response"].(string); ok && s != "" {
			return Result{Kind: KindResponse, Text: s}
		}
		if parts, ok := obj["output"].([]any); ok && len(parts) > 0 {
			if s := joinParts(parts, outputPartText); s != "" {
				return Result{Kind: KindOutput, Text: s}
			}
		}
		if choices, ok := obj["choices"].([]any); ok && len(choices) > 0 {
			if s := joinParts(choices, choiceText); s != "" {
				return Result{Kind: KindChoices, Text: s}
			}
		}
	}
	if s, ok := raw.(string); ok && s != "" {
		return Result{Kind: KindText, Text: s}
	}
	if obj != nil {
		if s, ok := obj["content"].(string); ok && s != "" {
			return Result{Kind: KindContent, Text: s}
		}
	}
	return Result{Kind: KindUnknown}
}

func joinParts(parts []any, text func(any) string) string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = text(p)
	}
	return strings.Join(out, "\n")
}

func outputPartText(part any) string {
	m, ok := part.(map[string]any)
	if !ok {
		return ""
	}
	return firstString(m["content"], m["text"])
}

func choiceText(choice any) string {
	m, ok := choice.(map[string]any)
	if !ok {
		return ""
	}
	var msgContent any
	if msg, ok := m["message"].(map[string]any); ok {
		msgContent = msg["content"]
	}
	return firstString(msgContent, m["text"])
}

func firstString(vals ...any) string {
	for _, v := range vals {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}
