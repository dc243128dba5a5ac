package library

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dpshade/contract-desk/internal/models"
)

// parseFrontmatter decodes the YAML block between the leading "---" lines into
// meta and returns the body that follows it
func parseFrontmatter(content []byte, meta any) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() || strings.TrimRight(scanner.Text(), "\r") != "---" {
		return "", fmt.Errorf("missing frontmatter delimiter")
	}

	var frontmatterLines []string
	closed := false
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "---" {
			closed = true
			break
		}
		frontmatterLines = append(frontmatterLines, line)
	}
	if !closed {
		return "", fmt.Errorf("unterminated frontmatter")
	}

	if err := yaml.Unmarshal([]byte(strings.Join(frontmatterLines, "\n")), meta); err != nil {
		return "", fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	var bodyLines []string
	for scanner.Scan() {
		bodyLines = append(bodyLines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}

	// Trim only leading whitespace/newlines
	return strings.TrimLeft(strings.Join(bodyLines, "\n"), " \t\n"), nil
}

func parseTemplateFile(content []byte) (models.ContractTemplate, error) {
	var tmpl models.ContractTemplate
	body, err := parseFrontmatter(content, &tmpl)
	if err != nil {
		return models.ContractTemplate{}, err
	}
	if tmpl.ID == "" {
		return models.ContractTemplate{}, fmt.Errorf("template has no id")
	}
	tmpl.Content = body
	return tmpl, nil
}

func parseDraftFile(content []byte) (models.PrebuiltDraft, error) {
	var draft models.PrebuiltDraft
	body, err := parseFrontmatter(content, &draft)
	if err != nil {
		return models.PrebuiltDraft{}, err
	}
	if draft.ID == "" {
		return models.PrebuiltDraft{}, fmt.Errorf("draft has no id")
	}
	draft.Contract = body
	return draft, nil
}
