package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clear-ai-go/internal/model"
	"clear-ai-go/internal/repository"
	"clear-ai-go/pkg/es"
	"clear-ai-go/pkg/log"
	"clear-ai-go/pkg/tasks"
)

// Indexer 消费索引任务，把问题文档写入或移出 Elasticsearch。
// 实现 kafka.TaskProcessor。
type Indexer struct {
	repo      repository.QuestionRepository
	indexName string
}

// NewIndexer 创建一个新的 Indexer 实例。
func NewIndexer(repo repository.QuestionRepository, indexName string) *Indexer {
	return &Indexer{repo: repo, indexName: indexName}
}

// Process 处理单个索引任务。
// 索引任务中实体已不存在时按删除处理，任务不算失败。
func (i *Indexer) Process(ctx context.Context, task tasks.QuestionIndexTask) error {
	switch task.Action {
	case tasks.ActionDelete:
		return es.DeleteQuestion(ctx, i.indexName, task.QuestionID)
	case tasks.ActionIndex:
		q, err := i.repo.FindByID(ctx, task.QuestionID)
		if err != nil {
			if errors.Is(err, repository.ErrQuestionNotFound) {
				log.Warnf("索引任务对应的问题已不存在, questionID=%s, 转为删除索引", task.QuestionID)
				return es.DeleteQuestion(ctx, i.indexName, task.QuestionID)
			}
			return err
		}

		doc := model.QuestionDocument{
			QuestionID:            q.QuestionID,
			QuestionUnderstanding: q.QuestionUnderstanding,
			SolvingStrategy:       q.SolvingStrategy,
			SolutionSteps:         q.SolutionSteps,
			CreatedAt:             q.CreatedAt.UTC().Format(time.RFC3339),
		}
		return es.IndexQuestion(ctx, i.indexName, doc)
	default:
		return fmt.Errorf("未知的索引任务类型: %s", task.Action)
	}
}
