package main

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"
)

// Embedded page templates
//
//go:embed templates/enhanced.html.tmpl
var enhancedTemplate string

//go:embed templates/legacy.html.tmpl
var legacyTemplate string

// studyPromptFormat is the Chinese study prompt handed to Perplexity, with
// the lesson title appended
const studyPromptFormat = "請根據附檔的課文教學重點格式，提供一篇詳細的課文學習教材，內容盡可能的詳細，題目如下: %s"

// ContentRenderer renders one enhanced lesson into an output format
type ContentRenderer interface {
	Render(lesson Lesson, dateStr string) (string, error)
}

// studyLink builds the Perplexity search URL for a lesson title. All
// reserved and non-ASCII characters are percent-encoded, spaces included.
func studyLink(title string) string {
	prompt := fmt.Sprintf(studyPromptFormat, title)
	query := strings.ReplaceAll(url.QueryEscape(prompt), "+", "%20")
	return "https://www.perplexity.ai/search?q=" + query
}

// lessonPage holds the template data shared by the HTML renderers
type lessonPage struct {
	Title     string
	Subject   string
	ImageURL  string
	StudyLink string
}

// EnhancedHTMLRenderer renders the styled lesson page: title, subject, the
// generated image (or a placeholder) and a countdown redirect to the study
// link
type EnhancedHTMLRenderer struct {
	tmpl *template.Template
}

// NewEnhancedHTMLRenderer parses the embedded enhanced page template
func NewEnhancedHTMLRenderer() *EnhancedHTMLRenderer {
	return &EnhancedHTMLRenderer{
		tmpl: template.Must(template.New("enhanced").Parse(enhancedTemplate)),
	}
}

func (r *EnhancedHTMLRenderer) Render(lesson Lesson, dateStr string) (string, error) {
	var buf bytes.Buffer
	err := r.tmpl.Execute(&buf, lessonPage{
		Title:     lesson.Title,
		Subject:   lesson.Subject,
		ImageURL:  lesson.ImageURL,
		StudyLink: studyLink(lesson.Title),
	})
	if err != nil {
		return "", fmt.Errorf("executing enhanced template: %w", err)
	}
	return buf.String(), nil
}

// JSONRenderer wraps the lesson in the dated JSON envelope persisted next
// to the HTML page
type JSONRenderer struct {
	Now func() time.Time
}

// NewJSONRenderer creates a renderer stamped by the wall clock
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{Now: time.Now}
}

func (r *JSONRenderer) Render(lesson Lesson, dateStr string) (string, error) {
	doc := OutputDocument{
		Date:        dateStr,
		Lessons:     []Lesson{lesson},
		GeneratedAt: r.Now().Format(time.RFC3339),
	}

	// Keep CJK text and URLs readable in the output file
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encoding lesson JSON: %w", err)
	}
	return buf.String(), nil
}

// LegacyHTMLRenderer renders the original bare redirect page: an immediate
// meta refresh to the study link plus a fallback anchor, no styling
type LegacyHTMLRenderer struct {
	tmpl *template.Template
}

// NewLegacyHTMLRenderer parses the embedded legacy page template
func NewLegacyHTMLRenderer() *LegacyHTMLRenderer {
	return &LegacyHTMLRenderer{
		tmpl: template.Must(template.New("legacy").Parse(legacyTemplate)),
	}
}

func (r *LegacyHTMLRenderer) Render(lesson Lesson, dateStr string) (string, error) {
	var buf bytes.Buffer
	err := r.tmpl.Execute(&buf, lessonPage{
		Title:     lesson.Title,
		StudyLink: studyLink(lesson.Title),
	})
	if err != nil {
		return "", fmt.Errorf("executing legacy template: %w", err)
	}
	return buf.String(), nil
}
