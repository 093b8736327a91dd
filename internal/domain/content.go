package domain

import "html/template"

// Hero is the top banner of the page.
type Hero struct {
	Title    string   `yaml:"title" json:"title"`
	Subtitle string   `yaml:"subtitle" json:"subtitle"`
	Image    string   `yaml:"image" json:"image"`
	ImageAlt string   `yaml:"image_alt" json:"image_alt"`
	Badges   []string `yaml:"badges" json:"badges"`
}

// Feature is one highlight tile below the hero.
type Feature struct {
	Icon  string `yaml:"icon" json:"icon"`
	Title string `yaml:"title" json:"title"`
	Text  string `yaml:"text" json:"text"`
}

// FAQItem is a question/answer pair. Answer is markdown; AnswerHTML is the
// rendered and sanitised form.
type FAQItem struct {
	Question   string        `yaml:"question" json:"question"`
	Answer     string        `yaml:"answer" json:"answer"`
	AnswerHTML template.HTML `yaml:"-" json:"answer_html"`
}

// CTA is the call-to-action band.
type CTA struct {
	Title string `yaml:"title" json:"title"`
	Text  string `yaml:"text" json:"text"`
}

// Link is a footer link.
type Link struct {
	Label string `yaml:"label" json:"label"`
	URL   string `yaml:"url" json:"url"`
}

// Footer is the page footer.
type Footer struct {
	Brand        string   `yaml:"brand" json:"brand"`
	Tagline      string   `yaml:"tagline" json:"tagline"`
	SupportEmail string   `yaml:"support_email" json:"support_email"`
	Links        []Link   `yaml:"links" json:"links"`
	Payments     []string `yaml:"payments" json:"payments"`
	Copyright    string   `yaml:"copyright" json:"copyright"`
}

// Content is the static marketing copy of the storefront.
type Content struct {
	Brand    string    `yaml:"brand" json:"brand"`
	Hero     Hero      `yaml:"hero" json:"hero"`
	Features []Feature `yaml:"features" json:"features"`
	FAQ      []FAQItem `yaml:"faq" json:"faq"`
	CTA      CTA       `yaml:"cta" json:"cta"`
	Footer   Footer    `yaml:"footer" json:"footer"`
}
