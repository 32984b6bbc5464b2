package agent

import (
	"fmt"
	"strings"
)

// systemPrompt gives strict directions for the tool-marker contract. The
// model either answers directly or emits JSON-only tool calls, one object per
// line; anything else is treated as narrative.
func systemPrompt(r *Registry) string {
	var tools []string
	for _, t := range r.Tools() {
		line := fmt.Sprintf("- %s : %s", t.Name, t.Description)
		if len(t.Aliases) > 0 {
			line += fmt.Sprintf(" (aliases: %s)", strings.Join(t.Aliases, ", "))
		}
		tools = append(tools, line)
	}
	return `You are an assistant for a social-support application intake service.

Either ANSWER the user directly, or, when you need structured data, EMIT one
or more JSON tool calls embedded in your answer, each on its own line:

{"tool": "<tool_name>", "args": {}}

Available tools:
` + strings.Join(tools, "\n") + `

Rules:
- Tool calls must be valid JSON objects with a "tool" field.
- Never invent tool names and never fabricate applicant data.
- Keep answers concise; no chain-of-thought.`
}

// userPrompt wraps the applicant context and the question.
func userPrompt(contextBlock, question string) string {
	return fmt.Sprintf("CONTEXT:\n%s\n\nUSER: %s", contextBlock, question)
}

// contextFor renders the state snapshot handed to the model. Plain text only,
// no structured payloads.
func contextFor(b *Bundle) string {
	income := "N/A"
	if b.App.NetMonthlyIncome != nil {
		income = fmt.Sprintf("%.2f", *b.App.NetMonthlyIncome)
	}
	ratio := "N/A"
	if b.App.CreditObligationsRatio != nil {
		ratio = fmt.Sprintf("%.2f", *b.App.CreditObligationsRatio)
	}
	docs, _ := documentsSummary(nil, b)
	decision, _ := decisionExplain(nil, b)

	return strings.Join([]string{
		fmt.Sprintf("Applicant: %s, age %d", b.App.FullName, b.App.Age),
		fmt.Sprintf("Address: %s", b.App.Address),
		fmt.Sprintf("Employment: %s | Income: %s | Obligations ratio: %s",
			b.App.EmploymentStatus, income, ratio),
		"",
		"Documents:",
		docs,
		"",
		"Latest decision:",
		decision,
	}, "\n")
}
