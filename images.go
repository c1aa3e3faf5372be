package main

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ImageGenerator produces an illustration URL for a lesson
type ImageGenerator interface {
	GenerateImage(ctx context.Context, subject, title, content string) (string, error)
}

// subjectStyles tunes the prompt per subject; unknown subjects get a
// generic educational style
var subjectStyles = map[string]string{
	"自然": "scientific illustration, educational diagram, nature",
	"國文": "traditional Chinese calligraphy, literature, classical art",
	"歷史": "historical illustration, ancient artifacts, timeline",
	"地理": "geographical map, landscape, cultural landmarks",
	"公民": "civic education, society, democratic concepts",
}

// buildImagePrompt assembles the generation prompt, capping the lesson
// content at 200 characters to keep the prompt within API limits
func buildImagePrompt(subject, title, content string) string {
	style, ok := subjectStyles[subject]
	if !ok {
		style = "educational illustration"
	}

	return fmt.Sprintf(`Create an educational illustration for %s lesson titled '%s'.
Content focus: %s
Style: %s
Requirements: suitable for 7th grade students, clear and informative, culturally appropriate for Taiwan education`,
		subject, title, truncateRunes(content, 200), style)
}

// truncateRunes limits s to n characters, counting runes rather than bytes
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// OpenAIImageGenerator calls an OpenAI-compatible Images API. The default
// endpoint is the GitHub Models inference service, which serves dall-e-3
// against a GitHub token credential.
type OpenAIImageGenerator struct {
	model string
	opts  []option.RequestOption
}

// NewOpenAIImageGenerator creates a generator for the configured endpoint
func NewOpenAIImageGenerator(cfg ImageSettings, apiKey string) (*OpenAIImageGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("image api key missing; provide --api-key or GITHUB_TOKEN")
	}
	if cfg.Model == "" {
		return nil, errors.New("image model is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIImageGenerator{model: cfg.Model, opts: opts}, nil
}

// GenerateImage requests one 1024x1024 natural-style illustration
func (g *OpenAIImageGenerator) GenerateImage(ctx context.Context, subject, title, content string) (string, error) {
	prompt := buildImagePrompt(subject, title, content)
	debugLog("Image prompt for %q: %q", title, prompt)

	client := openai.NewClient(g.opts...)
	res, err := client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:  prompt,
		Model:   openai.ImageModel(g.model),
		Size:    openai.ImageGenerateParamsSize1024x1024,
		Quality: openai.ImageGenerateParamsQualityStandard,
		Style:   openai.ImageGenerateParamsStyleNatural,
	})
	if err != nil {
		return "", fmt.Errorf("image API request: %w", err)
	}
	if len(res.Data) == 0 {
		return "", fmt.Errorf("no image in API response")
	}

	return res.Data[0].URL, nil
}

// mockImagePrefix marks placeholder URLs so downstream tools can tell them
// apart from real generated images
const mockImagePrefix = "https://example.com/mock-images/"

// MockImageGenerator returns deterministic placeholder URLs without touching
// the network. Used in demo runs and whenever no credential is present.
type MockImageGenerator struct{}

func (MockImageGenerator) GenerateImage(ctx context.Context, subject, title, content string) (string, error) {
	hash := generateImageHash(subject, title)
	return fmt.Sprintf("%s%s_%s.jpg", mockImagePrefix, hash, subject), nil
}

func generateImageHash(subject, title string) string {
	h := sha256.Sum256([]byte(subject + "|" + title))
	return fmt.Sprintf("%x", h)[:8]
}

// FallbackImageGenerator tries the primary generator first and falls back
// on error. With the mock as fallback the chain never fails.
type FallbackImageGenerator struct {
	Primary  ImageGenerator
	Fallback ImageGenerator
}

func (g *FallbackImageGenerator) GenerateImage(ctx context.Context, subject, title, content string) (string, error) {
	url, err := g.Primary.GenerateImage(ctx, subject, title, content)
	if err == nil {
		return url, nil
	}

	log.Printf("✗ Primary image generator failed: %v, using fallback", err)
	return g.Fallback.GenerateImage(ctx, subject, title, content)
}

// ImageService coordinates image generation for lessons
type ImageService struct {
	generator ImageGenerator
}

// NewImageService creates a service around the given generator
func NewImageService(generator ImageGenerator) *ImageService {
	return &ImageService{generator: generator}
}

// GenerateLessonImage generates the illustration for a single lesson
func (s *ImageService) GenerateLessonImage(ctx context.Context, subject, title, content string) (string, error) {
	log.Printf("→ Generating image: %s - %s", subject, title)

	url, err := s.generator.GenerateImage(ctx, subject, title, content)
	if err != nil {
		return "", fmt.Errorf("generating image for %s: %w", title, err)
	}

	log.Printf("✓ Image generated: %s", url)
	return url, nil
}

// GenerateBatch generates images for every lesson, pausing between calls to
// stay under API rate limits. Failed lessons are logged and left out of the
// results.
func (s *ImageService) GenerateBatch(ctx context.Context, lessons []Lesson, delay time.Duration) map[string]string {
	results := make(map[string]string)

	for _, lesson := range lessons {
		url, err := s.generator.GenerateImage(ctx, lesson.Subject, lesson.Title, lesson.Content)
		if err != nil {
			log.Printf("✗ Batch image failed for %s: %v", lesson.ID, err)
		} else {
			results[lesson.ID] = url
		}
		// The pause applies to failed lessons too
		time.Sleep(delay)
	}

	return results
}
