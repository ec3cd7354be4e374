package service

import (
	"regexp"
	"testing"
)

func newTestEmailService() *EmailService {
	return &EmailService{
		emailRegex: regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`),
	}
}

// TestApplyVariables tests the template variable replacement
func TestApplyVariables(t *testing.T) {
	service := newTestEmailService()

	tests := []struct {
		name      string
		template  string
		variables map[string]string
		expected  string
	}{
		{
			name:     "single variable",
			template: "Reminder: {{title}}",
			variables: map[string]string{
				"title": "Call Acme",
			},
			expected: "Reminder: Call Acme",
		},
		{
			name:     "multiple variables",
			template: "Follow up with {{contact}} at {{company}}",
			variables: map[string]string{
				"contact": "Dana Wheeler",
				"company": "Acme Logistics",
			},
			expected: "Follow up with Dana Wheeler at Acme Logistics",
		},
		{
			name:      "no variables",
			template:  "Your reminder is due.",
			variables: map[string]string{},
			expected:  "Your reminder is due.",
		},
		{
			name:     "markup in values is escaped",
			template: "Reminder: {{title}}",
			variables: map[string]string{
				"title": "<script>alert('x')</script>",
			},
			expected: "Reminder: &lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;",
		},
		{
			name:     "unknown placeholder left alone",
			template: "Hello {{name}}, due {{when}}",
			variables: map[string]string{
				"name": "Sam",
			},
			expected: "Hello Sam, due {{when}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := service.applyVariables(tt.template, tt.variables)
			if result != tt.expected {
				t.Errorf("applyVariables() = %v, want %v", result, tt.expected)
			}
		})
	}
}

// TestIsValidEmail tests email address validation
func TestIsValidEmail(t *testing.T) {
	service := newTestEmailService()

	tests := []struct {
		email string
		valid bool
	}{
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.co.uk", true},
		{"invalid.email", false},
		{"@example.com", false},
		{"user@", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			result := service.isValidEmail(tt.email)
			if result != tt.valid {
				t.Errorf("isValidEmail(%s) = %v, want %v", tt.email, result, tt.valid)
			}
		})
	}
}

// BenchmarkApplyVariables benchmarks placeholder replacement
func BenchmarkApplyVariables(b *testing.B) {
	service := newTestEmailService()
	template := "Reminder: {{title}} for {{contact}} at {{company}}, due {{when}}."
	variables := map[string]string{
		"title":   "Quarterly check-in",
		"contact": "Dana Wheeler",
		"company": "Acme Logistics",
		"when":    "Tomorrow 09:00",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		service.applyVariables(template, variables)
	}
}
