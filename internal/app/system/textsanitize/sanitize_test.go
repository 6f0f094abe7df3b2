package textsanitize_test

import (
	"testing"

	"github.com/dalemusser/campusconnect/internal/app/system/textsanitize"
)

func TestText_KeepsSubmittedText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain text", in: "Football at 5pm", want: "Football at 5pm"},
		{name: "angle brackets", in: "if a<b and c>d then", want: "if a<b and c>d then"},
		{name: "tag-like words", in: "press <enter> to go", want: "press <enter> to go"},
		{name: "entities stay literal", in: "write &lt; literally", want: "write &lt; literally"},
		{name: "markup is not stripped", in: "<b>Bold</b> move", want: "<b>Bold</b> move"},
		{name: "keeps newlines and tabs", in: "line one\n\tline two", want: "line one\n\tline two"},
		{name: "drops control characters", in: "bell\a and nul\x00", want: "bell and nul"},
		{name: "drops carriage returns", in: "a\r\nb", want: "a\nb"},
		{name: "trims", in: "  padded \n", want: "padded"},
		{name: "whitespace only", in: " \t\n ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := textsanitize.Text(tt.in); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Evening   \n cricket  ", "Evening cricket"},
		{"<b>Main</b> ground", "Main ground"},
		{"<b></b>", ""},
		{"\t", ""},
		{"hi<script>alert('x')</script>", "hi"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
	}
	for _, tt := range tests {
		if got := textsanitize.Line(tt.in); got != tt.want {
			t.Errorf("Line(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
