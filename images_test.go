package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// Stub generator for testing
type stubImageGenerator struct {
	url   string
	err   error
	calls int
}

func (s *stubImageGenerator) GenerateImage(ctx context.Context, subject, title, content string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func TestMockImageGeneratorDeterministic(t *testing.T) {
	gen := MockImageGenerator{}

	url1, err := gen.GenerateImage(context.Background(), "自然", "測試課程", "測試內容")
	if err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}
	url2, err := gen.GenerateImage(context.Background(), "自然", "測試課程", "測試內容")
	if err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}

	if url1 != url2 {
		t.Errorf("same inputs produced %q and %q", url1, url2)
	}
	if !strings.HasPrefix(url1, "https://example.com/mock-images/") {
		t.Errorf("URL = %q, want mock-images prefix", url1)
	}
	if !strings.Contains(url1, "自然") {
		t.Errorf("URL = %q, want subject name included", url1)
	}
	if !strings.HasSuffix(url1, ".jpg") {
		t.Errorf("URL = %q, want .jpg suffix", url1)
	}
}

func TestMockImageGeneratorDistinctInputs(t *testing.T) {
	gen := MockImageGenerator{}

	url1, _ := gen.GenerateImage(context.Background(), "自然", "課程A", "內容A")
	url2, _ := gen.GenerateImage(context.Background(), "國文", "課程B", "內容B")

	if url1 == url2 {
		t.Errorf("different inputs produced the same URL %q", url1)
	}
}

func TestMockImageGeneratorEmptyInputs(t *testing.T) {
	gen := MockImageGenerator{}

	url, err := gen.GenerateImage(context.Background(), "", "", "")
	if err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}
	if !strings.HasPrefix(url, "https://example.com/mock-images/") {
		t.Errorf("URL = %q, want mock-images prefix", url)
	}
}

func TestBuildImagePrompt(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		contains string
	}{
		{"nature style", "自然", "scientific illustration"},
		{"chinese style", "國文", "traditional Chinese calligraphy"},
		{"history style", "歷史", "historical illustration"},
		{"geography style", "地理", "geographical map"},
		{"civics style", "公民", "civic education"},
		{"unknown subject fallback", "未知科目", "educational illustration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := buildImagePrompt(tt.subject, "測試課程", "測試內容")
			if !strings.Contains(prompt, tt.contains) {
				t.Errorf("prompt missing style %q:\n%s", tt.contains, prompt)
			}
			if !strings.Contains(prompt, "測試課程") {
				t.Error("prompt missing lesson title")
			}
			if !strings.Contains(prompt, "7th grade") {
				t.Error("prompt missing grade level")
			}
		})
	}
}

func TestBuildImagePromptTruncatesContent(t *testing.T) {
	content := strings.Repeat("甲", 250)
	prompt := buildImagePrompt("自然", "測試課程", content)

	if !strings.Contains(prompt, strings.Repeat("甲", 200)) {
		t.Error("prompt should keep the first 200 characters of content")
	}
	if strings.Contains(prompt, strings.Repeat("甲", 201)) {
		t.Error("prompt should cap content at 200 characters")
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		n        int
		expected string
	}{
		{"shorter than limit", "abc", 5, "abc"},
		{"exactly at limit", "abcde", 5, "abcde"},
		{"ascii over limit", "abcdef", 3, "abc"},
		{"cjk over limit", "光合作用重點", 4, "光合作用"},
		{"empty", "", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := truncateRunes(tt.input, tt.n)
			if result != tt.expected {
				t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.input, tt.n, result, tt.expected)
			}
		})
	}
}

func TestFallbackImageGeneratorUsesPrimary(t *testing.T) {
	primary := &stubImageGenerator{url: "https://primary.example.com/a.png"}
	fallback := &stubImageGenerator{url: "https://fallback.example.com/b.jpg"}
	gen := &FallbackImageGenerator{Primary: primary, Fallback: fallback}

	url, err := gen.GenerateImage(context.Background(), "自然", "課程", "內容")
	if err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}
	if url != primary.url {
		t.Errorf("GenerateImage() = %q, want primary URL", url)
	}
	if fallback.calls != 0 {
		t.Error("fallback should not be called when primary succeeds")
	}
}

func TestFallbackImageGeneratorFallsBack(t *testing.T) {
	primary := &stubImageGenerator{err: errors.New("API quota exceeded")}
	gen := &FallbackImageGenerator{Primary: primary, Fallback: MockImageGenerator{}}

	url, err := gen.GenerateImage(context.Background(), "自然", "課程", "內容")
	if err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}
	if !strings.HasPrefix(url, "https://example.com/mock-images/") {
		t.Errorf("GenerateImage() = %q, want mock fallback URL", url)
	}
}

func TestImageServiceGenerateLessonImage(t *testing.T) {
	service := NewImageService(&stubImageGenerator{url: "https://img.example.com/x.jpg"})

	url, err := service.GenerateLessonImage(context.Background(), "自然", "課程", "內容")
	if err != nil {
		t.Fatalf("GenerateLessonImage() error = %v", err)
	}
	if url != "https://img.example.com/x.jpg" {
		t.Errorf("GenerateLessonImage() = %q", url)
	}
}

func TestImageServiceGenerateLessonImageError(t *testing.T) {
	genErr := errors.New("connection refused")
	service := NewImageService(&stubImageGenerator{err: genErr})

	_, err := service.GenerateLessonImage(context.Background(), "自然", "課程", "內容")
	if !errors.Is(err, genErr) {
		t.Errorf("GenerateLessonImage() error = %v, want wrapped generator error", err)
	}
}

// Generator that fails for one subject only
type selectiveFailGenerator struct {
	failSubject string
}

func (g *selectiveFailGenerator) GenerateImage(ctx context.Context, subject, title, content string) (string, error) {
	if subject == g.failSubject {
		return "", errors.New("API Error")
	}
	return "https://example.com/images/" + subject + ".jpg", nil
}

func TestGenerateBatchSkipsFailures(t *testing.T) {
	service := NewImageService(&selectiveFailGenerator{failSubject: "國文"})

	lessons := []Lesson{
		{ID: "自然_1", Subject: "自然", Title: "課程1", Content: "內容1"},
		{ID: "國文_2", Subject: "國文", Title: "課程2", Content: "內容2"},
		{ID: "歷史_3", Subject: "歷史", Title: "課程3", Content: "內容3"},
	}

	results := service.GenerateBatch(context.Background(), lessons, 0)

	if len(results) != 2 {
		t.Fatalf("GenerateBatch() returned %d results, want 2", len(results))
	}
	if _, ok := results["自然_1"]; !ok {
		t.Error("GenerateBatch() missing 自然_1")
	}
	if _, ok := results["國文_2"]; ok {
		t.Error("GenerateBatch() should skip the failed lesson")
	}
	if _, ok := results["歷史_3"]; !ok {
		t.Error("GenerateBatch() missing 歷史_3")
	}
}

func TestGenerateBatchPausesAfterFailure(t *testing.T) {
	stub := &stubImageGenerator{err: errors.New("API Error: rate limited")}
	service := NewImageService(stub)

	lessons := []Lesson{
		{ID: "自然_1", Subject: "自然", Title: "課程1", Content: "內容1"},
		{ID: "國文_2", Subject: "國文", Title: "課程2", Content: "內容2"},
	}

	delay := 25 * time.Millisecond
	start := time.Now()
	results := service.GenerateBatch(context.Background(), lessons, delay)
	elapsed := time.Since(start)

	if len(results) != 0 {
		t.Fatalf("GenerateBatch() returned %d results, want 0", len(results))
	}
	if stub.calls != 2 {
		t.Errorf("GenerateBatch() made %d calls, want 2", stub.calls)
	}
	if elapsed < 2*delay {
		t.Errorf("GenerateBatch() finished in %v, want at least %v of rate-limit pauses", elapsed, 2*delay)
	}
}

func TestGenerateBatchEmpty(t *testing.T) {
	stub := &stubImageGenerator{url: "https://img.example.com/x.jpg"}
	service := NewImageService(stub)

	results := service.GenerateBatch(context.Background(), nil, 0)
	if len(results) != 0 {
		t.Errorf("GenerateBatch(nil) returned %d results, want 0", len(results))
	}
	if stub.calls != 0 {
		t.Error("GenerateBatch(nil) should not call the generator")
	}
}

func TestNewOpenAIImageGeneratorValidation(t *testing.T) {
	if _, err := NewOpenAIImageGenerator(ImageSettings{Model: "dall-e-3"}, ""); err == nil {
		t.Error("NewOpenAIImageGenerator() should require an API key")
	}
	if _, err := NewOpenAIImageGenerator(ImageSettings{}, "token"); err == nil {
		t.Error("NewOpenAIImageGenerator() should require a model")
	}
}

func TestOpenAIImageGeneratorGenerate(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"created":1700000000,"data":[{"url":"https://images.example.com/lesson.png"}]}`)
	}))
	defer server.Close()

	gen, err := NewOpenAIImageGenerator(ImageSettings{Model: "dall-e-3", BaseURL: server.URL}, "test-token")
	if err != nil {
		t.Fatalf("NewOpenAIImageGenerator() error = %v", err)
	}

	url, err := gen.GenerateImage(context.Background(), "自然", "【1-1】植物的營養", "光合作用")
	if err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}
	if url != "https://images.example.com/lesson.png" {
		t.Errorf("GenerateImage() = %q", url)
	}

	if !strings.HasSuffix(gotPath, "/images/generations") {
		t.Errorf("request path = %q, want images/generations endpoint", gotPath)
	}
	if gotBody["model"] != "dall-e-3" {
		t.Errorf("request model = %v, want dall-e-3", gotBody["model"])
	}
	if gotBody["size"] != "1024x1024" {
		t.Errorf("request size = %v, want 1024x1024", gotBody["size"])
	}
	if gotBody["quality"] != "standard" {
		t.Errorf("request quality = %v, want standard", gotBody["quality"])
	}
	if gotBody["style"] != "natural" {
		t.Errorf("request style = %v, want natural", gotBody["style"])
	}

	prompt, _ := gotBody["prompt"].(string)
	if !strings.Contains(prompt, "【1-1】植物的營養") {
		t.Error("request prompt missing lesson title")
	}
	if !strings.Contains(prompt, "scientific illustration") {
		t.Error("request prompt missing subject style")
	}
}

func TestOpenAIImageGeneratorAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"invalid prompt"}}`)
	}))
	defer server.Close()

	gen, err := NewOpenAIImageGenerator(ImageSettings{Model: "dall-e-3", BaseURL: server.URL}, "test-token")
	if err != nil {
		t.Fatalf("NewOpenAIImageGenerator() error = %v", err)
	}

	if _, err := gen.GenerateImage(context.Background(), "自然", "課程", "內容"); err == nil {
		t.Error("GenerateImage() should surface API errors")
	}
}

func TestOpenAIImageGeneratorEmptyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"created":1700000000,"data":[]}`)
	}))
	defer server.Close()

	gen, err := NewOpenAIImageGenerator(ImageSettings{Model: "dall-e-3", BaseURL: server.URL}, "test-token")
	if err != nil {
		t.Fatalf("NewOpenAIImageGenerator() error = %v", err)
	}

	if _, err := gen.GenerateImage(context.Background(), "自然", "課程", "內容"); err == nil {
		t.Error("GenerateImage() should fail when the response has no images")
	}
}
