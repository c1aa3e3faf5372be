package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// lessonDoc is a trimmed view of the daily JSON document, just enough to
// locate the generated images
type lessonDoc struct {
	Date    string `json:"date"`
	Lessons []struct {
		ID       string `json:"id"`
		ImageURL string `json:"image_url"`
	} `json:"lessons"`
}

// Mock URLs point at a placeholder host and are never downloadable
const mockPrefix = "https://example.com/mock-images/"

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: fetch-images <docs-directory> [YYYY-MM-DD]")
	}

	docsDir := os.Args[1]
	dateStr := time.Now().Format("2006-01-02")
	if len(os.Args) > 2 {
		dateStr = os.Args[2]
	}

	if err := fetchImages(docsDir, dateStr); err != nil {
		log.Fatal(err)
	}
}

// fetchImages downloads every real generated image referenced by the
// document for dateStr into <docsDir>/images/<dateStr>/. Generated image
// URLs expire after a while, so this runs right after generation.
func fetchImages(docsDir, dateStr string) error {
	docPath := filepath.Join(docsDir, dateStr+".json")
	data, err := os.ReadFile(docPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", docPath, err)
	}

	var doc lessonDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", docPath, err)
	}

	targetDir := filepath.Join(docsDir, "images", dateStr)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", targetDir, err)
	}

	client := resty.New()
	client.SetTimeout(30 * time.Second)

	downloaded := 0
	candidates := 0
	for _, lesson := range doc.Lessons {
		if lesson.ImageURL == "" || strings.HasPrefix(lesson.ImageURL, mockPrefix) {
			log.Printf("Skipping %s: no downloadable image", lesson.ID)
			continue
		}
		candidates++

		target := filepath.Join(targetDir, lesson.ID+imageExt(lesson.ImageURL))
		if err := download(client, lesson.ImageURL, target); err != nil {
			log.Printf("✗ %s: %v", lesson.ID, err)
			continue
		}
		downloaded++
	}

	log.Printf("Downloaded %d/%d images to %s", downloaded, candidates, targetDir)
	return nil
}

// imageExt picks a file extension from the URL path, ignoring the query
// string the image host appends for signing
func imageExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".jpg"
	}
	if ext := path.Ext(u.Path); ext != "" {
		return ext
	}
	return ".jpg"
}

func download(client *resty.Client, imageURL, target string) error {
	res, err := client.R().Get(imageURL)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", imageURL, err)
	}
	if res.StatusCode() != http.StatusOK {
		return fmt.Errorf("HTTP %d for %s", res.StatusCode(), imageURL)
	}

	if err := os.WriteFile(target, res.Body(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}

	log.Printf("✓ %s (%d bytes)", target, len(res.Body()))
	return nil
}
