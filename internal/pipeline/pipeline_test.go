package pipeline

import (
	"context"
	"errors"
	"testing"

	"clear-ai-go/internal/model"
	"clear-ai-go/internal/service"
)

type fakeExtract struct {
	result model.Analysis
	err    error
	calls  int
	gotLng string
}

func (f *fakeExtract) Extract(_ context.Context, _ []byte, _ string, language string) (model.Analysis, error) {
	f.calls++
	f.gotLng = language
	return f.result, f.err
}

type fakeTranslate struct {
	result     model.Analysis
	translated bool
	calls      int
	gotLng     string
}

func (f *fakeTranslate) Translate(_ context.Context, analysis model.Analysis, targetLanguage string) (model.Analysis, bool) {
	f.calls++
	f.gotLng = targetLanguage
	if !f.translated {
		return analysis, false
	}
	return f.result, true
}

// fakeQuestions 只实现链路用到的 Create，其余方法不应被触达。
type fakeQuestions struct {
	created   []*model.Question
	createErr error
}

func (f *fakeQuestions) Create(_ context.Context, analysis model.Analysis, imageRef string) (*model.Question, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	q := &model.Question{
		QuestionID:            model.GenerateQuestionID(),
		QuestionUnderstanding: analysis.QuestionUnderstanding,
		SolvingStrategy:       analysis.SolvingStrategy,
		SolutionSteps:         analysis.SolutionSteps,
		Conversations:         []string{},
		ImageS3:               imageRef,
	}
	f.created = append(f.created, q)
	return q, nil
}

func (f *fakeQuestions) Get(context.Context, string) (*model.Question, error) {
	panic("unexpected Get")
}
func (f *fakeQuestions) List(context.Context, int) ([]*model.Question, error) {
	panic("unexpected List")
}
func (f *fakeQuestions) Update(context.Context, string, service.QuestionUpdate) (*model.Question, error) {
	panic("unexpected Update")
}
func (f *fakeQuestions) Delete(context.Context, string) error { panic("unexpected Delete") }
func (f *fakeQuestions) AppendConversation(context.Context, string, string) (*model.Question, error) {
	panic("unexpected AppendConversation")
}
func (f *fakeQuestions) AppendExchange(context.Context, string, string, string) (*model.Question, error) {
	panic("unexpected AppendExchange")
}

func englishAnalysis() model.Analysis {
	return model.Analysis{
		QuestionUnderstanding: "english understanding",
		SolvingStrategy:       "english strategy",
		SolutionSteps:         []string{"Step 1: a", "Conclusion: b"},
	}
}

func thaiAnalysis() model.Analysis {
	return model.Analysis{
		QuestionUnderstanding: "thai understanding",
		SolvingStrategy:       "thai strategy",
		SolutionSteps:         []string{"Step 1: ก", "Conclusion: ข"},
	}
}

func TestPipelineSubmit(t *testing.T) {
	t.Run("full chain with translation", func(t *testing.T) {
		extract := &fakeExtract{result: englishAnalysis()}
		translate := &fakeTranslate{result: thaiAnalysis(), translated: true}
		questions := &fakeQuestions{}
		uploads := 0
		uploader := func(_ context.Context, _ []byte, _, _ string) (string, error) {
			uploads++
			return "minio://bucket/images/x.jpg", nil
		}
		p := NewAnalysisPipeline(extract, translate, questions, uploader)

		result, err := p.Submit(context.Background(), []byte{1, 2}, "image/jpeg", "photo.jpg", "thai")
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if !result.Translated {
			t.Error("Translated = false, want true")
		}
		if extract.gotLng != "english" {
			t.Errorf("extraction language = %q, want english", extract.gotLng)
		}
		if translate.gotLng != "thai" {
			t.Errorf("translation target = %q, want thai", translate.gotLng)
		}
		if uploads != 1 {
			t.Errorf("uploads = %d, want 1", uploads)
		}
		if len(questions.created) != 1 {
			t.Fatalf("persisted %d questions, want exactly 1", len(questions.created))
		}
		stored := questions.created[0]
		if stored.QuestionUnderstanding != "thai understanding" {
			t.Errorf("persisted understanding = %q, want translated text", stored.QuestionUnderstanding)
		}
		if stored.ImageS3 != "minio://bucket/images/x.jpg" {
			t.Errorf("persisted ImageS3 = %q", stored.ImageS3)
		}
	})

	t.Run("english target skips translation case-insensitively", func(t *testing.T) {
		for _, lang := range []string{"english", "English", "ENGLISH"} {
			extract := &fakeExtract{result: englishAnalysis()}
			translate := &fakeTranslate{result: thaiAnalysis(), translated: true}
			questions := &fakeQuestions{}
			p := NewAnalysisPipeline(extract, translate, questions, nil)

			result, err := p.Submit(context.Background(), []byte{1}, "image/jpeg", "a.jpg", lang)
			if err != nil {
				t.Fatalf("Submit(%q) error = %v", lang, err)
			}
			if translate.calls != 0 {
				t.Errorf("Submit(%q) translation calls = %d, want 0", lang, translate.calls)
			}
			if result.Translated {
				t.Errorf("Submit(%q) Translated = true, want false", lang)
			}
			if questions.created[0].QuestionUnderstanding != "english understanding" {
				t.Errorf("Submit(%q) persisted wrong analysis", lang)
			}
		}
	})

	t.Run("empty language defaults to thai", func(t *testing.T) {
		extract := &fakeExtract{result: englishAnalysis()}
		translate := &fakeTranslate{result: thaiAnalysis(), translated: true}
		questions := &fakeQuestions{}
		p := NewAnalysisPipeline(extract, translate, questions, nil)

		if _, err := p.Submit(context.Background(), []byte{1}, "image/jpeg", "a.jpg", ""); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if translate.gotLng != "thai" {
			t.Errorf("translation target = %q, want thai", translate.gotLng)
		}
	})

	t.Run("translation failure persists original once", func(t *testing.T) {
		extract := &fakeExtract{result: englishAnalysis()}
		translate := &fakeTranslate{translated: false}
		questions := &fakeQuestions{}
		p := NewAnalysisPipeline(extract, translate, questions, nil)

		result, err := p.Submit(context.Background(), []byte{1}, "image/jpeg", "a.jpg", "thai")
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if result.Translated {
			t.Error("Translated = true after degraded translation")
		}
		if len(questions.created) != 1 {
			t.Fatalf("persisted %d questions, want 1", len(questions.created))
		}
		if questions.created[0].QuestionUnderstanding != "english understanding" {
			t.Error("degraded run should persist the original analysis")
		}
	})

	t.Run("upload failure does not block analysis", func(t *testing.T) {
		extract := &fakeExtract{result: englishAnalysis()}
		translate := &fakeTranslate{}
		questions := &fakeQuestions{}
		uploader := func(_ context.Context, _ []byte, _, _ string) (string, error) {
			return "", errors.New("minio down")
		}
		p := NewAnalysisPipeline(extract, translate, questions, uploader)

		result, err := p.Submit(context.Background(), []byte{1}, "image/jpeg", "a.jpg", "english")
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if result.Question.ImageS3 != "" {
			t.Errorf("ImageS3 = %q, want empty after upload failure", result.Question.ImageS3)
		}
	})

	t.Run("extraction failure persists nothing", func(t *testing.T) {
		extract := &fakeExtract{err: &service.MalformedResponseError{Field: "solution_steps", Reason: "missing"}}
		translate := &fakeTranslate{}
		questions := &fakeQuestions{}
		p := NewAnalysisPipeline(extract, translate, questions, nil)

		_, err := p.Submit(context.Background(), []byte{1}, "image/jpeg", "a.jpg", "thai")
		var malformed *service.MalformedResponseError
		if !errors.As(err, &malformed) {
			t.Fatalf("Submit() error = %v, want *MalformedResponseError", err)
		}
		if translate.calls != 0 {
			t.Errorf("translation calls = %d, want 0", translate.calls)
		}
		if len(questions.created) != 0 {
			t.Errorf("persisted %d questions, want 0", len(questions.created))
		}
	})
}
