package infra

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadContent_Default(t *testing.T) {
	c, err := LoadContent("")
	if err != nil {
		t.Fatalf("LoadContent failed: %v", err)
	}
	if len(c.FAQ) != 5 {
		t.Errorf("expected 5 faq items, got %d", len(c.FAQ))
	}
	if len(c.Features) != 3 {
		t.Errorf("expected 3 features, got %d", len(c.Features))
	}
	if c.Footer.SupportEmail != "support@giftcards.com" {
		t.Errorf("unexpected support email %q", c.Footer.SupportEmail)
	}
	for i, item := range c.FAQ {
		if item.AnswerHTML == "" {
			t.Errorf("faq %d not rendered", i)
		}
	}
	if !strings.Contains(string(c.FAQ[0].AnswerHTML), "<strong>automatically</strong>") {
		t.Errorf("markdown emphasis not rendered: %s", c.FAQ[0].AnswerHTML)
	}
}

func TestLoadContent_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yaml")
	body := "brand: Test\nfaq:\n  - question: Q?\n    answer: A\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadContent(path)
	if err != nil {
		t.Fatalf("LoadContent failed: %v", err)
	}
	if c.Brand != "Test" || len(c.FAQ) != 1 {
		t.Errorf("unexpected content: %+v", c)
	}
}

func TestLoadContent_Missing(t *testing.T) {
	if _, err := LoadContent(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMarkdownRenderer_Sanitises(t *testing.T) {
	r := NewMarkdownRenderer()

	tests := []struct {
		name    string
		src     string
		want    string
		notWant string
	}{
		{"script stripped", "hi <script>alert(1)</script>", "hi", "<script"},
		{"js link dropped", "[x](javascript:alert(1))", "x", "javascript:"},
		{"link nofollow", "[help](https://example.com)", `rel="nofollow"`, ""},
		{"emphasis", "*now*", "<em>now</em>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := r.Render(tt.src)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			out := string(html)
			if !strings.Contains(out, tt.want) {
				t.Errorf("expected %q in %q", tt.want, out)
			}
			if tt.notWant != "" && strings.Contains(out, tt.notWant) {
				t.Errorf("did not expect %q in %q", tt.notWant, out)
			}
		})
	}
}
