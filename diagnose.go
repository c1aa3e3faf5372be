package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ImageStatus classifies the illustration attached to a lesson document
type ImageStatus string

const (
	ImageStatusMissing ImageStatus = "missing"
	ImageStatusMock    ImageStatus = "mock"
	ImageStatusReal    ImageStatus = "real"
)

func classifyImage(lesson Lesson) ImageStatus {
	switch {
	case !lesson.HasImage():
		return ImageStatusMissing
	case strings.HasPrefix(lesson.ImageURL, mockImagePrefix):
		return ImageStatusMock
	default:
		return ImageStatusReal
	}
}

// Report summarizes the observable state of an output directory, so a
// failed nightly run can be triaged without poking at files by hand
type Report struct {
	CredentialPresent bool
	CredentialLength  int

	OutputDirExists bool
	HTMLCount       int
	JSONCount       int

	LatestJSON  string
	LatestHTML  string
	DocDate     string
	Lesson      *Lesson
	ImageStatus ImageStatus

	HTMLHasImage       bool
	HTMLHasPlaceholder bool
}

// BuildReport inspects outputDir and the credential without touching the
// network. File names sort chronologically (YYYY-MM-DD), so the latest
// document is the lexicographically greatest name.
func BuildReport(outputDir, apiKey string) *Report {
	r := &Report{
		CredentialPresent: apiKey != "",
		CredentialLength:  len(apiKey),
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return r
	}
	r.OutputDirExists = true

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		switch {
		case strings.HasSuffix(name, ".json"):
			r.JSONCount++
			if name > r.LatestJSON {
				r.LatestJSON = name
			}
		case strings.HasSuffix(name, ".html"):
			r.HTMLCount++
			if name > r.LatestHTML {
				r.LatestHTML = name
			}
		}
	}

	if r.LatestJSON != "" {
		doc, err := readOutputDocument(filepath.Join(outputDir, r.LatestJSON))
		if err == nil && len(doc.Lessons) > 0 {
			lesson := doc.Lessons[0]
			r.DocDate = doc.Date
			r.Lesson = &lesson
			r.ImageStatus = classifyImage(lesson)
		}
	}

	if r.LatestHTML != "" {
		if data, err := os.ReadFile(filepath.Join(outputDir, r.LatestHTML)); err == nil {
			page := string(data)
			r.HTMLHasImage = strings.Contains(page, `class="lesson-image"`)
			r.HTMLHasPlaceholder = strings.Contains(page, `class="image-placeholder"`)
		}
	}

	return r
}

// Print writes the report through the standard logger
func (r *Report) Print() {
	if r.CredentialPresent {
		log.Printf("✓ API credential present (%d chars)", r.CredentialLength)
	} else {
		log.Printf("✗ No API credential set, runs use the mock image generator")
	}

	if !r.OutputDirExists {
		log.Printf("✗ Output directory not found, run the generator first")
		return
	}
	log.Printf("✓ Output directory exists (%d HTML, %d JSON)", r.HTMLCount, r.JSONCount)

	if r.Lesson == nil {
		log.Printf("✗ No readable lesson document found")
		return
	}
	log.Printf("Latest document: %s (date %s)", r.LatestJSON, r.DocDate)
	log.Printf("Lesson: %s - %s", r.Lesson.Subject, r.Lesson.Title)

	switch r.ImageStatus {
	case ImageStatusReal:
		log.Printf("✓ Real generated image: %s", r.Lesson.ImageURL)
	case ImageStatusMock:
		log.Printf("→ Mock image in use: %s", r.Lesson.ImageURL)
	default:
		if r.Lesson.ImageError != "" {
			log.Printf("✗ Image missing: %s", r.Lesson.ImageError)
		} else {
			log.Printf("✗ Image missing")
		}
	}

	switch {
	case r.HTMLHasImage:
		log.Printf("✓ Latest page embeds the lesson image")
	case r.HTMLHasPlaceholder:
		log.Printf("→ Latest page shows the image placeholder")
	default:
		log.Printf("✗ Latest page has neither image nor placeholder")
	}
}

// readOutputDocument loads and parses a JSON lesson envelope
func readOutputDocument(path string) (*OutputDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var doc OutputDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &doc, nil
}
