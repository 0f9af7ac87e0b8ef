package i18n

import (
	"testing"
)

func TestNewLocalizer(t *testing.T) {
	localizer, err := NewLocalizer()
	if err != nil {
		t.Fatalf("Failed to create localizer: %v", err)
	}

	if localizer == nil {
		t.Fatal("Localizer is nil")
	}

	if len(localizer.catalogs) == 0 {
		t.Fatal("No translations loaded")
	}

	// Check that both languages are loaded
	if _, ok := localizer.catalogs["en"]; !ok {
		t.Error("English translations not loaded")
	}

	if _, ok := localizer.catalogs["uk"]; !ok {
		t.Error("Ukrainian translations not loaded")
	}
}

func TestDictionariesShareKeys(t *testing.T) {
	localizer, err := NewLocalizer()
	if err != nil {
		t.Fatalf("Failed to create localizer: %v", err)
	}

	for key := range localizer.catalogs["en"] {
		if _, ok := localizer.catalogs["uk"][key]; !ok {
			t.Errorf("key %q missing from uk dictionary", key)
		}
	}
	for key := range localizer.catalogs["uk"] {
		if _, ok := localizer.catalogs["en"][key]; !ok {
			t.Errorf("key %q missing from en dictionary", key)
		}
	}
}

func TestGet(t *testing.T) {
	localizer, err := NewLocalizer()
	if err != nil {
		t.Fatalf("Failed to create localizer: %v", err)
	}

	tests := []struct {
		name     string
		lang     string
		key      string
		expected string
	}{
		{
			name:     "English message",
			lang:     "en",
			key:      "staff.header",
			expected: "👥 Staff members:",
		},
		{
			name:     "Ukrainian message",
			lang:     "uk",
			key:      "staff.header",
			expected: "👥 Працівники:",
		},
		{
			name:     "Fallback to English",
			lang:     "unknown",
			key:      "staff.empty",
			expected: "No staff members yet.",
		},
		{
			name:     "Non-existent key returns key itself",
			lang:     "en",
			key:      "non.existent.key",
			expected: "non.existent.key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := localizer.Get(tt.lang, tt.key)
			if result != tt.expected {
				t.Errorf("Get(%q, %q) = %q, want %q", tt.lang, tt.key, result, tt.expected)
			}
		})
	}
}

func TestGetWithData(t *testing.T) {
	localizer, err := NewLocalizer()
	if err != nil {
		t.Fatalf("Failed to create localizer: %v", err)
	}

	tests := []struct {
		name     string
		lang     string
		key      string
		data     map[string]any
		expected string
	}{
		{
			name:     "Replace placeholders in English",
			lang:     "en",
			key:      "staff.line",
			data:     map[string]any{"id": "A", "name": "Alice"},
			expected: "• A: Alice",
		},
		{
			name:     "Replace numeric placeholder in Ukrainian",
			lang:     "uk",
			key:      "free.none",
			data:     map[string]any{"start": "2025-01-01T09:00:00Z", "minutes": 60},
			expected: "😔 Ніхто не вільний з 2025-01-01T09:00:00Z на 60 хв.",
		},
		{
			name:     "Repeated and missing placeholders",
			lang:     "en",
			key:      "bookings.line",
			data:     map[string]any{"start": "s", "end": "e", "staff": "A"},
			expected: "• s - e | A | {customer}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := localizer.GetWithData(tt.lang, tt.key, tt.data)
			if result != tt.expected {
				t.Errorf("GetWithData(%q, %q, %v) = %q, want %q", tt.lang, tt.key, tt.data, result, tt.expected)
			}
		})
	}
}

func TestNormalizeLanguageCode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "English",
			input:    "en",
			expected: "en",
		},
		{
			name:     "English with region",
			input:    "en-US",
			expected: "en",
		},
		{
			name:     "Ukrainian (uk)",
			input:    "uk",
			expected: "uk",
		},
		{
			name:     "Ukrainian (ua)",
			input:    "ua",
			expected: "uk",
		},
		{
			name:     "Unknown language defaults to English",
			input:    "de",
			expected: "en",
		},
		{
			name:     "Ukrainian with region and underscore",
			input:    "uk_UA",
			expected: "uk",
		},
		{
			name:     "Upper case code",
			input:    "UK",
			expected: "uk",
		},
		{
			name:     "Empty string defaults to English",
			input:    "",
			expected: "en",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeLanguageCode(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeLanguageCode(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFallbackFollowsFirstSupportedLanguage(t *testing.T) {
	localizer, err := NewLocalizer()
	if err != nil {
		t.Fatalf("Failed to create localizer: %v", err)
	}

	original := SupportedLanguages
	SupportedLanguages = []string{"uk", "en"}
	t.Cleanup(func() { SupportedLanguages = original })

	if got := NormalizeLanguageCode("de"); got != "uk" {
		t.Errorf("NormalizeLanguageCode(%q) = %q, want %q", "de", got, "uk")
	}

	localizer.catalogs["en"] = catalog{}
	if got, want := localizer.Get("en", "staff.header"), "👥 Працівники:"; got != want {
		t.Errorf("Get(%q, %q) = %q, want %q", "en", "staff.header", got, want)
	}
}
