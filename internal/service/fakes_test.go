package service

import (
	"context"
	"sync"

	"clear-ai-go/internal/model"
	"clear-ai-go/internal/repository"
)

// fakeLLM 是 llm.Client 的测试替身，按字段注入行为并记录调用次数。
type fakeLLM struct {
	mu            sync.Mutex
	chatJSONFunc  func(system, user string) (string, error)
	chatFunc      func(system, user string, maxTokens int) (string, error)
	chatJSONCalls int
	chatCalls     int
	lastSystem    string
	lastUser      string
	lastMaxTokens int
}

func (f *fakeLLM) ChatJSON(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	f.chatJSONCalls++
	f.lastSystem = system
	f.lastUser = user
	f.mu.Unlock()
	if f.chatJSONFunc == nil {
		return "{}", nil
	}
	return f.chatJSONFunc(system, user)
}

func (f *fakeLLM) Chat(_ context.Context, system, user string, maxTokens int) (string, error) {
	f.mu.Lock()
	f.chatCalls++
	f.lastSystem = system
	f.lastUser = user
	f.lastMaxTokens = maxTokens
	f.mu.Unlock()
	if f.chatFunc == nil {
		return "ok", nil
	}
	return f.chatFunc(system, user, maxTokens)
}

// fakeVision 是 gemini.Client 的测试替身。
type fakeVision struct {
	generateFunc func(system, user string, image []byte, mimeType string) (string, error)
	calls        int
}

func (f *fakeVision) GenerateVision(_ context.Context, system, user string, image []byte, mimeType string) (string, error) {
	f.calls++
	if f.generateFunc == nil {
		return "{}", nil
	}
	return f.generateFunc(system, user, image, mimeType)
}

// fakeQuestionRepo 是 repository.QuestionRepository 的内存实现。
// 读写都做深拷贝，模拟真实存储的值语义。
type fakeQuestionRepo struct {
	mu        sync.Mutex
	questions map[string]*model.Question
	saveErr   error
	findErr   error
	saveCalls int
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: make(map[string]*model.Question)}
}

func copyQuestion(q *model.Question) *model.Question {
	clone := *q
	clone.SolutionSteps = append([]string(nil), q.SolutionSteps...)
	clone.Conversations = append([]string(nil), q.Conversations...)
	return &clone
}

func (r *fakeQuestionRepo) Create(_ context.Context, q *model.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions[q.QuestionID] = copyQuestion(q)
	return nil
}

func (r *fakeQuestionRepo) FindByID(_ context.Context, questionID string) (*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	q, ok := r.questions[questionID]
	if !ok {
		return nil, repository.ErrQuestionNotFound
	}
	return copyQuestion(q), nil
}

func (r *fakeQuestionRepo) Save(_ context.Context, q *model.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.questions[q.QuestionID] = copyQuestion(q)
	return nil
}

func (r *fakeQuestionRepo) List(_ context.Context, limit int) ([]*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Question, 0, len(r.questions))
	for _, q := range r.questions {
		if len(out) >= limit {
			break
		}
		out = append(out, copyQuestion(q))
	}
	return out, nil
}

func (r *fakeQuestionRepo) Delete(_ context.Context, questionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.questions[questionID]; !ok {
		return repository.ErrQuestionNotFound
	}
	delete(r.questions, questionID)
	return nil
}
