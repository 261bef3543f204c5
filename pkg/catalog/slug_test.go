package catalog

import (
	"regexp"
	"testing"
)

func TestSlug(t *testing.T) {
	testCases := []struct {
		name     string
		expected string
	}{
		{"Finder", "finder"},
		{"Notes", "notes"},
		{"Adobe Photoshop 2024", "adobe-photoshop-2024"},
		{"QuickTime Player", "quicktime-player"},
		{"My__App..Name", "my-app-name"},
		{"a/b/c", "a-b-c"},
		{"  Spaced   Out  ", "spaced-out"},
		{"--Already-Slugged--", "already-slugged"},
		{"Caffé", "caffe"},
		{"Straße", "strae"},
		{"日本語", ""},
		{"App (beta)", "app-beta"},
		{"", ""},
		{"___", ""},
		{"X", "x"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slug(tc.name); got != tc.expected {
				t.Errorf("Slug(%q) = %q, expected %q", tc.name, got, tc.expected)
			}
		})
	}
}

func TestSlugIsIdempotent(t *testing.T) {
	inputs := []string{
		"Finder",
		"Adobe Photoshop 2024",
		"My__App..Name",
		"  Spaced   Out  ",
		"Caffé",
		"App (beta)",
	}

	for _, input := range inputs {
		once := Slug(input)
		if twice := Slug(once); twice != once {
			t.Errorf("Slug(Slug(%q)): %q != %q", input, twice, once)
		}
	}
}

func TestSlugShape(t *testing.T) {
	shape := regexp.MustCompile(`^$|^[a-z0-9]+(-[a-z0-9]+)*$`)

	inputs := []string{
		"Finder", "-lead", "trail-", "a  b", "Ä Ö Ü", "1Password 8", "...", "mixedCASE",
	}
	for _, input := range inputs {
		if got := Slug(input); !shape.MatchString(got) {
			t.Errorf("Slug(%q) = %q violates the slug shape", input, got)
		}
	}
}
