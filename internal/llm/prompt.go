package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spice-categorizer/internal/model"
)

const systemPrompt = "You are a financial transaction classifier. You MUST respond with ONLY a valid JSON object. " +
	"Do not include any explanatory text, markdown formatting, or commentary before or after the JSON. " +
	"Start your response directly with { and end with }."

// buildPrompt creates the classification prompt for a transaction text.
func buildPrompt(text string, categories []model.Category) string {
	var sb strings.Builder

	sb.WriteString("Classify this financial transaction into exactly one category.\n\n")
	fmt.Fprintf(&sb, "Transaction: %s\n\n", text)

	if len(categories) > 0 {
		sb.WriteString("Categories (respond with the id):\n")
		for _, cat := range categories {
			if cat.Description != "" {
				fmt.Fprintf(&sb, "- %s: %s\n", cat.ID, cat.Description)
			} else {
				fmt.Fprintf(&sb, "- %s\n", cat.ID)
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString(`Respond with JSON: {"category": "<id>", "confidence": <number between 0 and 1>}` + "\n")
	sb.WriteString("Use a low confidence when the transaction text is ambiguous.")

	return sb.String()
}
