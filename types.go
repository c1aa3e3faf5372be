package main

// SubjectConfig describes one course page to scrape
type SubjectConfig struct {
	Name            string `yaml:"name"`
	URL             string `yaml:"url"`
	Selector        string `yaml:"selector"`
	ContentSelector string `yaml:"content_selector,omitempty"`
}

// Lesson represents one candidate lesson extracted from a course page.
// The image fields are filled in by the enhancement step: ImageURL and
// ImageGeneratedAt on success, ImageError on failure.
type Lesson struct {
	ID               string `json:"id"`
	Subject          string `json:"subject"`
	Title            string `json:"title"`
	Content          string `json:"content"`
	SourceURL        string `json:"source_url"`
	ImageURL         string `json:"image_url,omitempty"`
	ImageGeneratedAt string `json:"image_generated_at,omitempty"`
	ImageError       string `json:"image_error,omitempty"`
}

// HasImage reports whether the lesson carries a generated image URL
func (l Lesson) HasImage() bool {
	return l.ImageURL != ""
}

// OutputDocument is the JSON envelope persisted next to the HTML page
type OutputDocument struct {
	Date        string   `json:"date"`
	Lessons     []Lesson `json:"lessons"`
	GeneratedAt string   `json:"generated_at"`
}

// FetchStatus represents the outcome status of fetching one subject
type FetchStatus string

const (
	FetchSuccess FetchStatus = "success"
	FetchEmpty   FetchStatus = "empty"
	FetchError   FetchStatus = "error"
)

// FetchResult tracks the outcome of fetching each subject
type FetchResult struct {
	Subject string
	Status  FetchStatus
	Count   int
	Error   error
}
