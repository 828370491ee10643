package service

import (
	"context"
	"time"

	"clear-ai-go/internal/model"
	"clear-ai-go/internal/repository"
	"clear-ai-go/pkg/log"
	"clear-ai-go/pkg/tasks"
)

// IndexTaskProducer 将问题索引任务投递到消息队列。
// 投递失败只记录日志，不影响主流程。
type IndexTaskProducer func(task tasks.QuestionIndexTask) error

// QuestionUpdate 描述一次部分字段更新，nil 字段保持不变。
type QuestionUpdate struct {
	QuestionUnderstanding *string
	SolvingStrategy       *string
	SolutionSteps         []string
	Conversations         []string
	ImageS3               *string
}

// QuestionService 承载问题实体的业务语义：创建、查询、更新、删除，
// 以及对话日志的追加。所有追加路径共用按问题 ID 的进程内互斥锁，
// 串行化读-改-写（跨实例部署时存储侧仍是最后写入者获胜，见 DESIGN.md）。
type QuestionService interface {
	Create(ctx context.Context, analysis model.Analysis, imageRef string) (*model.Question, error)
	Get(ctx context.Context, questionID string) (*model.Question, error)
	List(ctx context.Context, limit int) ([]*model.Question, error)
	Update(ctx context.Context, questionID string, upd QuestionUpdate) (*model.Question, error)
	Delete(ctx context.Context, questionID string) error
	AppendConversation(ctx context.Context, questionID, message string) (*model.Question, error)
	// AppendExchange 把一问一答两条记录作为整体追加，日志中不会出现未回答的用户消息。
	AppendExchange(ctx context.Context, questionID, userMessage, aiResponse string) (*model.Question, error)
}

type questionService struct {
	repo     repository.QuestionRepository
	produce  IndexTaskProducer
	appendMu *keyedMutex
}

// NewQuestionService 创建一个新的 QuestionService 实例。
// produce 可以为 nil（例如测试环境），此时不投递索引任务。
func NewQuestionService(repo repository.QuestionRepository, produce IndexTaskProducer) QuestionService {
	return &questionService{
		repo:     repo,
		produce:  produce,
		appendMu: newKeyedMutex(),
	}
}

// Create 由完整的解析结果创建问题实体，conversations 初始为空。
func (s *questionService) Create(ctx context.Context, analysis model.Analysis, imageRef string) (*model.Question, error) {
	now := time.Now().UTC()
	q := &model.Question{
		QuestionID:            model.GenerateQuestionID(),
		QuestionUnderstanding: analysis.QuestionUnderstanding,
		SolvingStrategy:       analysis.SolvingStrategy,
		SolutionSteps:         analysis.SolutionSteps,
		Conversations:         []string{},
		ImageS3:               imageRef,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}
	log.Infof("创建问题成功, questionID=%s, 步骤数=%d", q.QuestionID, len(q.SolutionSteps))
	s.produceTask(q.QuestionID, tasks.ActionIndex)
	return q, nil
}

// Get 按 ID 查询问题。
func (s *questionService) Get(ctx context.Context, questionID string) (*model.Question, error) {
	return s.repo.FindByID(ctx, questionID)
}

// List 查询问题列表，limit 限定在 [1, 100]，默认 20。
func (s *questionService) List(ctx context.Context, limit int) ([]*model.Question, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, limit)
}

// Update 按提供的字段部分更新问题，并刷新 updated_at。
func (s *questionService) Update(ctx context.Context, questionID string, upd QuestionUpdate) (*model.Question, error) {
	unlock := s.appendMu.Lock(questionID)
	defer unlock()

	q, err := s.repo.FindByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	if upd.QuestionUnderstanding != nil {
		q.QuestionUnderstanding = *upd.QuestionUnderstanding
	}
	if upd.SolvingStrategy != nil {
		q.SolvingStrategy = *upd.SolvingStrategy
	}
	if upd.SolutionSteps != nil {
		q.SolutionSteps = upd.SolutionSteps
	}
	if upd.Conversations != nil {
		q.Conversations = upd.Conversations
	}
	if upd.ImageS3 != nil {
		q.ImageS3 = *upd.ImageS3
	}
	q.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, q); err != nil {
		return nil, err
	}
	log.Infof("更新问题成功, questionID=%s", questionID)
	s.produceTask(questionID, tasks.ActionIndex)
	return q, nil
}

// Delete 删除问题并投递索引清理任务。
func (s *questionService) Delete(ctx context.Context, questionID string) error {
	if err := s.repo.Delete(ctx, questionID); err != nil {
		return err
	}
	log.Infof("删除问题成功, questionID=%s", questionID)
	s.produceTask(questionID, tasks.ActionDelete)
	return nil
}

// AppendConversation 追加一条对话记录并刷新 updated_at。
func (s *questionService) AppendConversation(ctx context.Context, questionID, message string) (*model.Question, error) {
	unlock := s.appendMu.Lock(questionID)
	defer unlock()
	return s.appendLocked(ctx, questionID, message)
}

// AppendExchange 在同一把锁内追加一问一答两条记录。
func (s *questionService) AppendExchange(ctx context.Context, questionID, userMessage, aiResponse string) (*model.Question, error) {
	unlock := s.appendMu.Lock(questionID)
	defer unlock()
	return s.appendLocked(ctx, questionID, userMessage, aiResponse)
}

// appendLocked 在持锁状态下重读实体、追加记录并保存。
func (s *questionService) appendLocked(ctx context.Context, questionID string, messages ...string) (*model.Question, error) {
	q, err := s.repo.FindByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	q.Conversations = append(q.Conversations, messages...)
	q.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *questionService) produceTask(questionID, action string) {
	if s.produce == nil {
		return
	}
	if err := s.produce(tasks.QuestionIndexTask{QuestionID: questionID, Action: action}); err != nil {
		log.Errorf("投递索引任务失败, questionID=%s, action=%s: %v", questionID, action, err)
	}
}
