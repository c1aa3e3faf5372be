package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Orchestrator coordinates the daily pipeline: fetch all subjects, select
// the lesson of the day, enhance it with an image, render and persist
type Orchestrator struct {
	fetcher      LessonFetcher
	selector     LessonSelector
	images       *ImageService
	htmlRenderer ContentRenderer
	jsonRenderer ContentRenderer

	subjects   []SubjectConfig
	outputDir  string
	fetchDelay time.Duration
	now        func() time.Time
}

// NewOrchestrator wires the pipeline from explicit dependencies
func NewOrchestrator(fetcher LessonFetcher, selector LessonSelector, generator ImageGenerator, htmlRenderer, jsonRenderer ContentRenderer, settings *Settings) *Orchestrator {
	return &Orchestrator{
		fetcher:      fetcher,
		selector:     selector,
		images:       NewImageService(generator),
		htmlRenderer: htmlRenderer,
		jsonRenderer: jsonRenderer,
		subjects:     settings.Subjects,
		outputDir:    settings.OutputDirectory,
		fetchDelay:   settings.FetchDelay(),
		now:          time.Now,
	}
}

// NewProductionOrchestrator builds the real pipeline. With an API key the
// generator calls the image API and falls back to the mock on failure;
// without one the run stays fully offline.
func NewProductionOrchestrator(settings *Settings, apiKey string) (*Orchestrator, error) {
	var generator ImageGenerator
	if apiKey != "" {
		real, err := NewOpenAIImageGenerator(settings.Image, apiKey)
		if err != nil {
			return nil, fmt.Errorf("creating image generator: %w", err)
		}
		generator = &FallbackImageGenerator{Primary: real, Fallback: MockImageGenerator{}}
		log.Printf("Using image generation API at %s", settings.Image.BaseURL)
	} else {
		generator = MockImageGenerator{}
		log.Printf("Warning: no API key found, using the mock image generator")
		log.Printf("Set GITHUB_TOKEN or pass --api-key to enable real image generation")
	}

	return NewOrchestrator(
		NewScrapeFetcher(NewHTTPPageLoader()),
		NewDaySelector(),
		generator,
		NewEnhancedHTMLRenderer(),
		NewJSONRenderer(),
		settings,
	), nil
}

// NewDemoOrchestrator builds a pipeline that needs no credentials
func NewDemoOrchestrator(settings *Settings) *Orchestrator {
	return NewOrchestrator(
		NewScrapeFetcher(NewHTTPPageLoader()),
		NewDaySelector(),
		MockImageGenerator{},
		NewEnhancedHTMLRenderer(),
		NewJSONRenderer(),
		settings,
	)
}

// Run executes one complete daily lesson generation. An empty lesson pool
// is a clean no-op; render and write failures abort the run.
func (o *Orchestrator) Run(ctx context.Context) error {
	log.Printf("Starting daily lesson generation...")

	lessons, results := o.fetchAllLessons(ctx)

	total, failed := 0, 0
	for _, result := range results {
		if result.Status == FetchError {
			failed++
			continue
		}
		total += result.Count
	}
	log.Printf("Fetched %d lessons across %d subjects (%d failed)", total, len(o.subjects), failed)

	if len(lessons) == 0 {
		log.Printf("No lessons found, nothing to generate")
		return nil
	}

	lesson, err := o.selector.SelectDaily(lessons)
	if err != nil {
		return fmt.Errorf("selecting daily lesson: %w", err)
	}
	log.Printf("Today's lesson: %s - %s", lesson.Subject, lesson.Title)

	lesson = o.enhanceLesson(ctx, lesson)

	if err := o.saveLessonContent(lesson, o.now().Format("2006-01-02")); err != nil {
		return err
	}

	log.Printf("✓ Daily lesson generation complete")
	return nil
}

// fetchAllLessons collects candidates from every configured subject. A
// failing subject is logged and skipped, never aborting the run.
func (o *Orchestrator) fetchAllLessons(ctx context.Context) ([]Lesson, []FetchResult) {
	var all []Lesson
	results := make([]FetchResult, 0, len(o.subjects))

	for i, subject := range o.subjects {
		log.Printf("[%d/%d] Fetching subject: %s", i+1, len(o.subjects), subject.Name)

		lessons, err := o.fetcher.FetchLessons(ctx, subject)
		switch {
		case err != nil:
			log.Printf("✗ Failed %s: %v", subject.Name, err)
			results = append(results, FetchResult{Subject: subject.Name, Status: FetchError, Error: err})
		case len(lessons) == 0:
			log.Printf("No lessons matched for %s", subject.Name)
			results = append(results, FetchResult{Subject: subject.Name, Status: FetchEmpty})
		default:
			log.Printf("✓ Found %d lessons for %s", len(lessons), subject.Name)
			all = append(all, lessons...)
			results = append(results, FetchResult{Subject: subject.Name, Status: FetchSuccess, Count: len(lessons)})
		}

		// Courtesy pause toward the course site
		if i < len(o.subjects)-1 {
			time.Sleep(o.fetchDelay)
		}
	}

	return all, results
}

// enhanceLesson attaches a generated image. Failure is recorded on the
// lesson and never escalated, so rendering always proceeds.
func (o *Orchestrator) enhanceLesson(ctx context.Context, lesson Lesson) Lesson {
	url, err := o.images.GenerateLessonImage(ctx, lesson.Subject, lesson.Title, lesson.Content)
	if err != nil {
		log.Printf("✗ Image generation failed for %s: %v", lesson.Title, err)
		lesson.ImageError = err.Error()
		return lesson
	}

	lesson.ImageURL = url
	lesson.ImageGeneratedAt = o.now().Format(time.RFC3339)
	return lesson
}

// saveLessonContent renders and writes the HTML page and the JSON envelope
func (o *Orchestrator) saveLessonContent(lesson Lesson, dateStr string) error {
	if err := os.MkdirAll(o.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	html, err := o.htmlRenderer.Render(lesson, dateStr)
	if err != nil {
		return fmt.Errorf("rendering HTML: %w", err)
	}
	htmlFile := filepath.Join(o.outputDir, dateStr+".html")
	if err := os.WriteFile(htmlFile, []byte(html), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", htmlFile, err)
	}
	log.Printf("✓ Generated: %s", htmlFile)

	jsonOut, err := o.jsonRenderer.Render(lesson, dateStr)
	if err != nil {
		return fmt.Errorf("rendering JSON: %w", err)
	}
	jsonFile := filepath.Join(o.outputDir, dateStr+".json")
	if err := os.WriteFile(jsonFile, []byte(jsonOut), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", jsonFile, err)
	}
	log.Printf("✓ Generated: %s", jsonFile)

	return nil
}
