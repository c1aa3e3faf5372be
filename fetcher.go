package main

import (
	"context"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// LessonFetcher extracts candidate lessons for one subject
type LessonFetcher interface {
	FetchLessons(ctx context.Context, subject SubjectConfig) ([]Lesson, error)
}

// ScrapeFetcher loads a course page and extracts the headings matching the
// subject's selector and filter
type ScrapeFetcher struct {
	loader    PageLoader
	filters   map[string]FilterFunc
	converter *md.Converter
}

// NewScrapeFetcher creates a fetcher with the built-in subject filters
func NewScrapeFetcher(loader PageLoader) *ScrapeFetcher {
	return &ScrapeFetcher{
		loader:    loader,
		filters:   DefaultFilters(),
		converter: md.NewConverter("", true, nil),
	}
}

// FetchLessons loads the subject's page and returns the lessons whose
// headings pass the subject filter. Lesson IDs keep each heading's position
// in document order, so they stay stable when filtering drops entries.
func (f *ScrapeFetcher) FetchLessons(ctx context.Context, subject SubjectConfig) ([]Lesson, error) {
	html, err := f.loader.LoadPage(ctx, subject.URL)
	if err != nil {
		return nil, fmt.Errorf("loading %s page: %w", subject.Name, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing %s page: %w", subject.Name, err)
	}

	filter := f.filters[subject.Name]

	var lessons []Lesson
	doc.Find(subject.Selector).Each(func(i int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Text())
		if title == "" {
			return
		}
		if filter != nil && !filter(title) {
			debugLog("Skipping %s heading %d: %q", subject.Name, i, title)
			return
		}

		lessons = append(lessons, Lesson{
			ID:        fmt.Sprintf("%s_%d", subject.Name, i),
			Subject:   subject.Name,
			Title:     title,
			Content:   f.lessonContent(doc, subject, i, title),
			SourceURL: subject.URL,
		})
	})

	return lessons, nil
}

// lessonContent extracts the body for the i-th heading. Without a content
// selector the title doubles as content.
func (f *ScrapeFetcher) lessonContent(doc *goquery.Document, subject SubjectConfig, i int, title string) string {
	if subject.ContentSelector == "" {
		return title
	}

	sel := doc.Find(subject.ContentSelector).Eq(i)
	if sel.Length() == 0 {
		return title
	}

	html, err := sel.Html()
	if err != nil {
		debugLog("Extracting %s content %d: %v", subject.Name, i, err)
		return title
	}

	markdown, err := f.converter.ConvertString(html)
	if err != nil {
		debugLog("Converting %s content %d: %v", subject.Name, i, err)
		return title
	}

	if markdown = strings.TrimSpace(markdown); markdown == "" {
		return title
	}
	return markdown
}
