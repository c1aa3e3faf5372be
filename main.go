package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var (
	configFile string
	outputDir  string
	apiKey     string
	mockMode   bool
	legacyMode bool
	fetchDelay int
	debugMode  bool
)

var rootCmd = &cobra.Command{
	Use:   "daily-lesson",
	Short: "Daily lesson generator for 7th grade subjects",
	Long: `Fetches lesson titles from LearnMode course pages, picks one lesson
per day, attaches a generated illustration and publishes an HTML study
page plus a JSON document under the output directory.

Image generation needs a GitHub Models credential: pass --api-key or set
GITHUB_TOKEN. Without one the run falls back to mock image URLs.`,
	Args: cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugMode {
			SetDebugMode(true)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		settings := mustLoadSettings()
		o := buildOrchestrator(settings)
		if err := o.Run(context.Background()); err != nil {
			log.Fatalf("Generation failed: %v", err)
		}
	},
}

var titlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "List every candidate lesson per subject",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		settings := mustLoadSettings()
		fetcher := NewScrapeFetcher(NewHTTPPageLoader())
		ctx := context.Background()

		for i, subject := range settings.Subjects {
			log.Printf("[%d/%d] Fetching subject: %s", i+1, len(settings.Subjects), subject.Name)
			lessons, err := fetcher.FetchLessons(ctx, subject)
			if err != nil {
				log.Printf("✗ Failed %s: %v", subject.Name, err)
				continue
			}

			fmt.Printf("%s (%d lessons)\n", subject.Name, len(lessons))
			for _, lesson := range lessons {
				fmt.Printf("  %-12s %s\n", lesson.ID, lesson.Title)
			}

			if i < len(settings.Subjects)-1 {
				time.Sleep(settings.FetchDelay())
			}
		}
	},
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Inspect the output directory and credential without fetching",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		settings := mustLoadSettings()
		BuildReport(settings.OutputDirectory, resolveAPIKey()).Print()
	},
}

var regenCmd = &cobra.Command{
	Use:   "regen",
	Short: "Regenerate today's lesson and verify the written files",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		settings := mustLoadSettings()
		o := buildOrchestrator(settings)
		if err := o.Run(context.Background()); err != nil {
			log.Fatalf("Regeneration failed: %v", err)
		}
		reportToday(settings.OutputDirectory)
	},
}

// mustLoadSettings loads the configuration and applies flag overrides
func mustLoadSettings() *Settings {
	settings, err := loadSettings(configFile)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	if outputDir != "" {
		settings.OutputDirectory = outputDir
	}
	if fetchDelay >= 0 {
		settings.FetchDelaySeconds = fetchDelay
	}
	return settings
}

func resolveAPIKey() string {
	if apiKey != "" {
		return apiKey
	}
	return os.Getenv("GITHUB_TOKEN")
}

func buildOrchestrator(settings *Settings) *Orchestrator {
	var o *Orchestrator
	if mockMode {
		log.Printf("Mock mode enabled, image generation stays offline")
		o = NewDemoOrchestrator(settings)
	} else {
		var err error
		o, err = NewProductionOrchestrator(settings, resolveAPIKey())
		if err != nil {
			log.Fatalf("Failed to build pipeline: %v", err)
		}
	}

	if legacyMode {
		o.htmlRenderer = NewLegacyHTMLRenderer()
	}
	return o
}

// reportToday confirms both of today's output files landed on disk
func reportToday(dir string) {
	dateStr := time.Now().Format("2006-01-02")

	for _, ext := range []string{".html", ".json"} {
		path := filepath.Join(dir, dateStr+ext)
		info, err := os.Stat(path)
		if err != nil {
			log.Printf("✗ Missing %s", path)
			continue
		}
		log.Printf("✓ %s (%d bytes)", path, info.Size())
	}

	doc, err := readOutputDocument(filepath.Join(dir, dateStr+".json"))
	if err != nil || len(doc.Lessons) == 0 {
		return
	}
	lesson := doc.Lessons[0]
	log.Printf("Lesson: %s - %s (image: %s)", lesson.Subject, lesson.Title, classifyImage(lesson))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a subjects YAML file (defaults to the embedded one)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output", "", "Override the output directory")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "GitHub Models API key")
	rootCmd.PersistentFlags().BoolVar(&mockMode, "mock", false, "Use the mock image generator even with a credential")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.Flags().IntVar(&fetchDelay, "delay", -1, "Override the pause between subject fetches in seconds")
	rootCmd.Flags().BoolVar(&legacyMode, "legacy", false, "Render the bare redirect page instead of the styled one")

	rootCmd.AddCommand(titlesCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(regenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
