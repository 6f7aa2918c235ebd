package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// InitialDateLayout is the accepted format for INITIAL_DATE and
// widget.initial_date.
const InitialDateLayout = "2006-01-02"

// MaxCategoryLength is the width of the category column, in characters.
const MaxCategoryLength = 64

// WidgetConfig describes the calendar widget defaults. Read from the
// environment first, then overlaid by the YAML file at CONFIG_FILE.
type WidgetConfig struct {
	// InitialView is "month" or "week".
	InitialView string `yaml:"initial_view" json:"initial_view"`

	// InitialDate is the reference date for new sessions (YYYY-MM-DD).
	// Empty means the current date.
	InitialDate string `yaml:"initial_date" json:"initial_date"`

	// DisplayCap is how many events a month cell lists before "+N more".
	DisplayCap int `yaml:"display_cap" json:"display_cap"`

	// Colors is the event color palette. The first entry is the default.
	Colors []string `yaml:"colors" json:"colors"`

	// Categories lists the selectable event categories.
	Categories []string `yaml:"categories" json:"categories"`
}

// DefaultWidget returns the built-in widget configuration.
func DefaultWidget() WidgetConfig {
	return WidgetConfig{
		InitialView: "month",
		DisplayCap:  3,
		Colors: []string{
			"#3b82f6", "#10b981", "#f59e0b", "#8b5cf6",
			"#ef4444", "#06b6d4", "#f97316", "#ec4899",
		},
		Categories: []string{
			"Meeting", "Work", "Personal", "Design", "Development", "Other",
		},
	}
}

// fileConfig is the top-level YAML document. Only the widget section is
// read; everything else stays in the environment.
type fileConfig struct {
	Widget *WidgetConfig `yaml:"widget"`
}

// loadFile overlays w with the widget section of the YAML file at path.
// Keys missing from the file keep their current values. A missing file is
// an error because the operator asked for it explicitly.
func loadFile(path string, w *WidgetConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file not found: %w", err)
		}
		return err
	}

	doc := fileConfig{Widget: w}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}
	return nil
}

// Validate checks the widget section.
func (w WidgetConfig) Validate() error {
	switch w.InitialView {
	case "month", "week":
	default:
		return fmt.Errorf("initial view must be month or week, got %q", w.InitialView)
	}
	if w.InitialDate != "" {
		if _, err := time.ParseInLocation(InitialDateLayout, w.InitialDate, time.Local); err != nil {
			return fmt.Errorf("initial date %q: %w", w.InitialDate, err)
		}
	}
	if w.DisplayCap < 1 {
		return fmt.Errorf("display cap must be at least 1, got %d", w.DisplayCap)
	}
	if len(w.Colors) == 0 {
		return errors.New("at least one event color is required")
	}
	if len(w.Categories) == 0 {
		return errors.New("at least one event category is required")
	}
	for _, c := range w.Categories {
		if n := utf8.RuneCountInString(c); n == 0 || n > MaxCategoryLength {
			return fmt.Errorf("category %q must be 1 to %d characters", c, MaxCategoryLength)
		}
	}
	return nil
}

// InitialTime parses InitialDate in the local zone. ok is false when no
// initial date is configured.
func (w WidgetConfig) InitialTime() (t time.Time, ok bool) {
	if w.InitialDate == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(InitialDateLayout, w.InitialDate, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
