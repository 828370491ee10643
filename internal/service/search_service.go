package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"clear-ai-go/internal/model"
	"clear-ai-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
)

// SearchService 对已索引的问题做关键词全文检索。
type SearchService interface {
	SearchQuestions(ctx context.Context, query string, topK int) ([]model.QuestionSearchHit, error)
}

type searchService struct {
	esClient  *elasticsearch.Client
	indexName string
}

// NewSearchService 创建一个新的 SearchService 实例。
func NewSearchService(esClient *elasticsearch.Client, indexName string) SearchService {
	return &searchService{esClient: esClient, indexName: indexName}
}

// SearchQuestions 在问题索引上执行 multi_match 检索，按相关度排序返回。
func (s *searchService) SearchQuestions(ctx context.Context, query string, topK int) ([]model.QuestionSearchHit, error) {
	if topK <= 0 {
		topK = 10
	}
	if topK > 50 {
		topK = 50
	}

	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query": query,
				"fields": []string{
					"question_understanding^2",
					"solving_strategy",
					"solution_steps",
				},
			},
		},
		"size": topK,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("序列化搜索查询失败: %w", err)
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(ctx),
		s.esClient.Search.WithIndex(s.indexName),
		s.esClient.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		log.Errorf("Elasticsearch 返回错误, status: %s, body: %s", res.Status(), string(bodyBytes))
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.Status())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.QuestionDocument `json:"_source"`
				Score  float64                `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	results := make([]model.QuestionSearchHit, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		results = append(results, model.QuestionSearchHit{
			QuestionID:            hit.Source.QuestionID,
			QuestionUnderstanding: hit.Source.QuestionUnderstanding,
			SolvingStrategy:       hit.Source.SolvingStrategy,
			Score:                 hit.Score,
		})
	}

	log.Infof("问题搜索完成, query='%s', 命中=%d", query, len(results))
	return results, nil
}
