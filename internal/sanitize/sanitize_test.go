package sanitize

import "testing"

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "Team standup", "Team standup"},
		{"trims", "  Lunch  ", "Lunch"},
		{"strips tags", "<b>Review</b> sprint", "Review sprint"},
		{"drops script", "Demo<script>alert(1)</script>", "Demo"},
		{"keeps ampersand", "Q&A session", "Q&A session"},
		{"keeps angle text", "a < b", "a < b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.input); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestColor(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"#3b82f6", "#3b82f6"},
		{"#3B82F6", "#3b82f6"},
		{"#fff", "#fff"},
		{"red", ""},
		{"#12345g", ""},
		{"#3b82f6;background:url(x)", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Color(tt.input); got != tt.want {
			t.Errorf("Color(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
