// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clear-ai-go/internal/model"
	"clear-ai-go/pkg/log"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// ErrQuestionNotFound 表示给定 ID 的问题不存在。
var ErrQuestionNotFound = errors.New("question not found")

// questionCacheTTL 是问题读缓存的有效期。
const questionCacheTTL = 10 * time.Minute

// QuestionRepository 定义了问题实体的存取接口。
// 存储语义：按 ID 读取、整体保存、扫描、删除；不提供条件写，
// 并发的读-改-写以"最后写入者获胜"收敛（进程内的互斥由 service 层负责）。
type QuestionRepository interface {
	Create(ctx context.Context, q *model.Question) error
	FindByID(ctx context.Context, questionID string) (*model.Question, error)
	Save(ctx context.Context, q *model.Question) error
	List(ctx context.Context, limit int) ([]*model.Question, error)
	Delete(ctx context.Context, questionID string) error
}

type questionRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewQuestionRepository 创建一个新的 QuestionRepository 实例。
func NewQuestionRepository(db *gorm.DB, rdb *redis.Client) QuestionRepository {
	return &questionRepository{db: db, rdb: rdb}
}

func cacheKey(questionID string) string {
	return fmt.Sprintf("question:%s", questionID)
}

// Create 持久化一个新的问题实体。
func (r *questionRepository) Create(ctx context.Context, q *model.Question) error {
	if err := r.db.WithContext(ctx).Create(q).Error; err != nil {
		return fmt.Errorf("创建问题失败: %w", err)
	}
	return nil
}

// FindByID 按 ID 查找问题，优先命中 Redis 读缓存。
func (r *questionRepository) FindByID(ctx context.Context, questionID string) (*model.Question, error) {
	// 读缓存：缓存故障只降级为直接查库，不影响结果
	if cached, err := r.rdb.Get(ctx, cacheKey(questionID)).Result(); err == nil {
		var q model.Question
		if err := json.Unmarshal([]byte(cached), &q); err == nil {
			return &q, nil
		}
	} else if err != redis.Nil {
		log.Warnf("读取问题缓存失败, questionID=%s: %v", questionID, err)
	}

	var q model.Question
	err := r.db.WithContext(ctx).Where("question_id = ?", questionID).First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询问题失败: %w", err)
	}

	r.setCache(ctx, &q)
	return &q, nil
}

// Save 保存问题的全部字段，并刷新缓存。
func (r *questionRepository) Save(ctx context.Context, q *model.Question) error {
	if err := r.db.WithContext(ctx).Save(q).Error; err != nil {
		return fmt.Errorf("保存问题失败: %w", err)
	}
	r.setCache(ctx, q)
	return nil
}

// List 按创建时间倒序扫描问题列表。
func (r *questionRepository) List(ctx context.Context, limit int) ([]*model.Question, error) {
	var questions []*model.Question
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("查询问题列表失败: %w", err)
	}
	return questions, nil
}

// Delete 删除指定问题并清理缓存。
func (r *questionRepository) Delete(ctx context.Context, questionID string) error {
	res := r.db.WithContext(ctx).Where("question_id = ?", questionID).Delete(&model.Question{})
	if res.Error != nil {
		return fmt.Errorf("删除问题失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrQuestionNotFound
	}
	if err := r.rdb.Del(ctx, cacheKey(questionID)).Err(); err != nil {
		log.Warnf("清理问题缓存失败, questionID=%s: %v", questionID, err)
	}
	return nil
}

func (r *questionRepository) setCache(ctx context.Context, q *model.Question) {
	data, err := json.Marshal(q)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, cacheKey(q.QuestionID), data, questionCacheTTL).Err(); err != nil {
		log.Warnf("写入问题缓存失败, questionID=%s: %v", q.QuestionID, err)
	}
}
