package service

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const validAnalysisJSON = `{
	"question_understanding": "Find the roots of the equation.",
	"solving_strategy": "Use the quadratic formula.",
	"solution_steps": ["Step 1: Identify coefficients", "Step 2: Apply the formula", "Conclusion: $x = 2$"]
}`

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantErr   bool
		wantField string
		wantSteps int
	}{
		{
			name:      "valid json",
			raw:       validAnalysisJSON,
			wantSteps: 3,
		},
		{
			name:      "json wrapped in prose",
			raw:       "Here is the analysis you asked for:\n" + validAnalysisJSON + "\nHope this helps!",
			wantSteps: 3,
		},
		{
			name:      "latex backslashes survive recovery",
			raw:       `{"question_understanding": "Compute $\frac{1}{2}$", "solving_strategy": "Simplify $\sqrt{x}$", "solution_steps": ["Step 1: done"]}`,
			wantSteps: 1,
		},
		{
			name:      "raw newline inside string value",
			raw:       "{\"question_understanding\": \"line one\nline two\", \"solving_strategy\": \"s\", \"solution_steps\": [\"Step 1\"]}",
			wantSteps: 1,
		},
		{
			name:    "no json object at all",
			raw:     "I could not read the image, sorry.",
			wantErr: true,
		},
		{
			name:      "missing question_understanding",
			raw:       `{"solving_strategy": "s", "solution_steps": ["Step 1"]}`,
			wantErr:   true,
			wantField: "question_understanding",
		},
		{
			name:      "empty solving_strategy",
			raw:       `{"question_understanding": "u", "solving_strategy": "", "solution_steps": ["Step 1"]}`,
			wantErr:   true,
			wantField: "solving_strategy",
		},
		{
			name:      "empty solution_steps array",
			raw:       `{"question_understanding": "u", "solving_strategy": "s", "solution_steps": []}`,
			wantErr:   true,
			wantField: "solution_steps",
		},
		{
			name:    "truncated json",
			raw:     `{"question_understanding": "u", "solving_strategy}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := parseAnalysis(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseAnalysis() error = nil, want error")
				}
				var malformed *MalformedResponseError
				if !errors.As(err, &malformed) {
					t.Fatalf("parseAnalysis() error type = %T, want *MalformedResponseError", err)
				}
				if malformed.Field != tt.wantField {
					t.Errorf("MalformedResponseError.Field = %q, want %q", malformed.Field, tt.wantField)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAnalysis() error = %v", err)
			}
			if len(analysis.SolutionSteps) != tt.wantSteps {
				t.Errorf("len(SolutionSteps) = %d, want %d", len(analysis.SolutionSteps), tt.wantSteps)
			}
			if analysis.QuestionUnderstanding == "" || analysis.SolvingStrategy == "" {
				t.Errorf("parsed analysis has empty required field: %+v", analysis)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	t.Run("success passes image and language through", func(t *testing.T) {
		vision := &fakeVision{
			generateFunc: func(system, user string, image []byte, mimeType string) (string, error) {
				if !strings.Contains(system, "spanish") {
					t.Errorf("system prompt does not mention requested language: %q", system)
				}
				if mimeType != "image/png" {
					t.Errorf("mimeType = %q, want image/png", mimeType)
				}
				if len(image) == 0 {
					t.Error("image bytes were not forwarded")
				}
				return validAnalysisJSON, nil
			},
		}
		svc := NewExtractService(vision)

		analysis, err := svc.Extract(context.Background(), []byte{0x89, 0x50}, "image/png", "spanish")
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if analysis.QuestionUnderstanding == "" {
			t.Error("Extract() returned empty understanding")
		}
	})

	t.Run("empty language defaults to english", func(t *testing.T) {
		vision := &fakeVision{
			generateFunc: func(system, _ string, _ []byte, _ string) (string, error) {
				if !strings.Contains(system, "english") {
					t.Errorf("system prompt does not default to english: %q", system)
				}
				return validAnalysisJSON, nil
			},
		}
		if _, err := NewExtractService(vision).Extract(context.Background(), []byte{1}, "image/jpeg", ""); err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
	})

	t.Run("vision error propagates", func(t *testing.T) {
		vision := &fakeVision{
			generateFunc: func(_, _ string, _ []byte, _ string) (string, error) {
				return "", errors.New("quota exceeded")
			},
		}
		if _, err := NewExtractService(vision).Extract(context.Background(), []byte{1}, "image/jpeg", "english"); err == nil {
			t.Fatal("Extract() error = nil, want error")
		}
	})

	t.Run("malformed output is not retried", func(t *testing.T) {
		vision := &fakeVision{
			generateFunc: func(_, _ string, _ []byte, _ string) (string, error) {
				return "not json at all", nil
			},
		}
		svc := NewExtractService(vision)
		_, err := svc.Extract(context.Background(), []byte{1}, "image/jpeg", "english")
		var malformed *MalformedResponseError
		if !errors.As(err, &malformed) {
			t.Fatalf("Extract() error type = %T, want *MalformedResponseError", err)
		}
		if vision.calls != 1 {
			t.Errorf("vision calls = %d, want 1", vision.calls)
		}
	})
}
