package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clear-ai-go/internal/model"
)

func explainQuestion() *model.Question {
	return &model.Question{
		QuestionID:            "q_testtest_1714032000",
		QuestionUnderstanding: "Solve the quadratic equation $x^2 - 4 = 0$.",
		SolvingStrategy:       "Factor and apply the zero product rule.",
		SolutionSteps: []string{
			"Step 1: Factor as $(x-2)(x+2) = 0$",
			"Step 2: Set each factor to zero",
			"Conclusion: $x = \\pm 2$",
		},
	}
}

func TestExplainStepValidation(t *testing.T) {
	tests := []struct {
		name string
		step int
	}{
		{name: "zero", step: 0},
		{name: "negative", step: -3},
		{name: "one past the end", step: 4},
		{name: "far past the end", step: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llmClient := &fakeLLM{}
			svc := NewExplainService(llmClient)

			_, _, err := svc.Explain(context.Background(), explainQuestion(), tt.step)
			if !errors.Is(err, ErrInvalidStep) {
				t.Fatalf("Explain() error = %v, want ErrInvalidStep", err)
			}
			if llmClient.chatJSONCalls != 0 {
				t.Errorf("llm calls = %d, want 0 for out-of-range step", llmClient.chatJSONCalls)
			}
		})
	}
}

func TestExplain(t *testing.T) {
	t.Run("structured output", func(t *testing.T) {
		llmClient := &fakeLLM{
			chatJSONFunc: func(_, user string) (string, error) {
				if !strings.Contains(user, "step 2 of 3") {
					t.Errorf("user prompt lacks step position: %q", user)
				}
				return `{"why_this_way": "Zero product rule applies to factored forms.", "key_concepts": "Zero product property."}`, nil
			},
		}
		svc := NewExplainService(llmClient)

		explanation, fallback, err := svc.Explain(context.Background(), explainQuestion(), 2)
		if err != nil {
			t.Fatalf("Explain() error = %v", err)
		}
		if fallback {
			t.Error("Explain() fallback = true for valid JSON output")
		}
		if explanation.Step != 2 {
			t.Errorf("Step = %d, want 2", explanation.Step)
		}
		if explanation.StepContent != "Step 2: Set each factor to zero" {
			t.Errorf("StepContent = %q", explanation.StepContent)
		}
		if explanation.WhyThisWay == "" || explanation.KeyConcepts == "" {
			t.Errorf("explanation fields empty: %+v", explanation)
		}
	})

	t.Run("paragraph fallback with two paragraphs", func(t *testing.T) {
		llmClient := &fakeLLM{
			chatJSONFunc: func(_, _ string) (string, error) {
				return "Because the equation is factored, each factor can be zero.\n\nThis relies on the zero product property.", nil
			},
		}
		svc := NewExplainService(llmClient)

		explanation, fallback, err := svc.Explain(context.Background(), explainQuestion(), 2)
		if err != nil {
			t.Fatalf("Explain() error = %v", err)
		}
		if !fallback {
			t.Error("Explain() fallback = false for non-JSON output")
		}
		if !strings.HasPrefix(explanation.WhyThisWay, "Because the equation") {
			t.Errorf("WhyThisWay = %q", explanation.WhyThisWay)
		}
		if !strings.HasPrefix(explanation.KeyConcepts, "This relies on") {
			t.Errorf("KeyConcepts = %q", explanation.KeyConcepts)
		}
	})

	t.Run("paragraph fallback with single paragraph fills generic concepts", func(t *testing.T) {
		llmClient := &fakeLLM{
			chatJSONFunc: func(_, _ string) (string, error) {
				return "A single undivided explanation.", nil
			},
		}
		svc := NewExplainService(llmClient)

		explanation, fallback, err := svc.Explain(context.Background(), explainQuestion(), 1)
		if err != nil {
			t.Fatalf("Explain() error = %v", err)
		}
		if !fallback {
			t.Error("Explain() fallback = false")
		}
		if explanation.WhyThisWay != "A single undivided explanation." {
			t.Errorf("WhyThisWay = %q", explanation.WhyThisWay)
		}
		if explanation.KeyConcepts != genericKeyConcepts {
			t.Errorf("KeyConcepts = %q, want generic text", explanation.KeyConcepts)
		}
	})

	t.Run("empty output falls back to generic text", func(t *testing.T) {
		llmClient := &fakeLLM{
			chatJSONFunc: func(_, _ string) (string, error) {
				return "   \n  ", nil
			},
		}
		svc := NewExplainService(llmClient)

		explanation, fallback, err := svc.Explain(context.Background(), explainQuestion(), 1)
		if err != nil {
			t.Fatalf("Explain() error = %v", err)
		}
		if !fallback {
			t.Error("Explain() fallback = false")
		}
		if explanation.WhyThisWay != genericWhyThisWay || explanation.KeyConcepts != genericKeyConcepts {
			t.Errorf("expected generic fields, got %+v", explanation)
		}
	})

	t.Run("llm error propagates", func(t *testing.T) {
		llmClient := &fakeLLM{
			chatJSONFunc: func(_, _ string) (string, error) {
				return "", errors.New("unavailable")
			},
		}
		svc := NewExplainService(llmClient)
		if _, _, err := svc.Explain(context.Background(), explainQuestion(), 1); err == nil {
			t.Fatal("Explain() error = nil, want error")
		}
	})
}
