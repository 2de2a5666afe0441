package prompts

import (
	"bytes"
	"errors"
	"fmt"
)

// Render executes a prompt template with the provided data and returns the
// result. The data type should match the expected type for the given prompt
// ID.
//
// Example:
//
//	data := prompts.NewProfileGenerateData(topic, electionDate, titles,
//	    candidates, minSources, minConfidence, clk.Now())
//	prompt, err := prompts.Render(prompts.ProfileGenerate, data)
func Render(id PromptID, data any) (string, error) {
	tmpl, err := globalRegistry.get(id)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Join(ErrTemplateExecution, fmt.Errorf("prompt %s: %w", id, err))
	}

	return buf.String(), nil
}

// MustRender executes a prompt template and panics on error.
// Use this only when template execution should never fail (e.g., with known-good data).
func MustRender(id PromptID, data any) string {
	result, err := Render(id, data)
	if err != nil {
		panic(fmt.Sprintf("prompts.MustRender(%s): %v", id, err))
	}
	return result
}

// List returns all registered prompt IDs.
// Useful for debugging or documentation generation.
func List() []PromptID {
	return globalRegistry.list()
}

// Exists checks if a prompt ID is registered.
func Exists(id PromptID) bool {
	_, err := globalRegistry.get(id)
	return err == nil
}

// GetTemplate returns the raw template source for a prompt ID.
// This is primarily useful for debugging, testing, and documentation generation.
func GetTemplate(id PromptID) (string, error) {
	return globalRegistry.getSource(id)
}
