package main

import "regexp"

// FilterFunc reports whether a heading is a selectable lesson title
type FilterFunc func(title string) bool

var (
	numberedLessonPattern = regexp.MustCompile(`^【\d+-\d+】`)
	bracketedTitlePattern = regexp.MustCompile(`【[^】]+】`)
)

// NumberedLessonFilter accepts headings prefixed with a 【unit-lesson】 marker,
// e.g. 【2-3】秦漢統一
func NumberedLessonFilter(title string) bool {
	if title == "" {
		return false
	}
	return numberedLessonPattern.MatchString(title)
}

// BracketedTitleFilter accepts headings containing a 【...】 marker anywhere,
// e.g. 【第一課】聲音鐘. Chinese course chapters are numbered by name, not unit.
func BracketedTitleFilter(title string) bool {
	if title == "" {
		return false
	}
	return bracketedTitlePattern.MatchString(title)
}

// DefaultFilters maps each built-in subject to its heading filter.
// Subjects without an entry accept every heading.
func DefaultFilters() map[string]FilterFunc {
	return map[string]FilterFunc{
		"自然": NumberedLessonFilter,
		"國文": BracketedTitleFilter,
		"歷史": NumberedLessonFilter,
		"地理": NumberedLessonFilter,
		"公民": NumberedLessonFilter,
	}
}
