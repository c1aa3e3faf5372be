package main

import (
	"errors"
	"time"
)

// ErrNoLessons is returned when selection runs against an empty pool
var ErrNoLessons = errors.New("no lessons available")

// LessonSelector picks the lesson of the day from a pool of candidates
type LessonSelector interface {
	SelectDaily(lessons []Lesson) (Lesson, error)
}

// DaySelector indexes the pool by day of year, so consecutive days walk
// through the whole pool and reruns within one day pick the same lesson.
type DaySelector struct {
	Now func() time.Time
}

// NewDaySelector creates a selector driven by the wall clock
func NewDaySelector() *DaySelector {
	return &DaySelector{Now: time.Now}
}

// SelectDaily returns today's entry from the pool
func (s *DaySelector) SelectDaily(lessons []Lesson) (Lesson, error) {
	if len(lessons) == 0 {
		return Lesson{}, ErrNoLessons
	}
	idx := (s.Now().YearDay() - 1) % len(lessons)
	return lessons[idx], nil
}
