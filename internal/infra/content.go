package infra

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"

	"giftshop/internal/domain"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

//go:embed content_default.yaml
var defaultContent []byte

// LoadContent reads the marketing copy from path, or the built-in copy
// when path is empty, and renders every FAQ answer.
func LoadContent(path string) (*domain.Content, error) {
	data := defaultContent
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read content %s: %w", path, err)
		}
	}
	return ParseContent(data)
}

// ParseContent decodes YAML content and renders its FAQ answers.
func ParseContent(data []byte) (*domain.Content, error) {
	var c domain.Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}

	r := NewMarkdownRenderer()
	for i := range c.FAQ {
		html, err := r.Render(c.FAQ[i].Answer)
		if err != nil {
			return nil, fmt.Errorf("render faq %d: %w", i, err)
		}
		c.FAQ[i].AnswerHTML = html
	}
	return &c, nil
}

// MarkdownRenderer turns markdown into sanitised HTML.
type MarkdownRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewMarkdownRenderer() *MarkdownRenderer {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	return &MarkdownRenderer{
		md:     goldmark.New(),
		policy: policy,
	}
}

// Render converts src. The output is safe to embed in a page.
func (r *MarkdownRenderer) Render(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}
