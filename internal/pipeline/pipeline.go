// Package pipeline 串联图片解析的完整链路：上传图片、视觉解析、整体翻译、
// 持久化与异步索引。
package pipeline

import (
	"context"
	"strings"

	"clear-ai-go/internal/model"
	"clear-ai-go/internal/service"
	"clear-ai-go/pkg/log"
)

// ImageUploader 将原始图片写入对象存储并返回存储引用。
// nil 表示未配置对象存储，此时跳过上传。
type ImageUploader func(ctx context.Context, data []byte, fileName, contentType string) (string, error)

// Result 一次解析链路的产物。
type Result struct {
	Question   *model.Question
	Translated bool
}

// AnalysisPipeline 接收一张图片并产出持久化后的问题实体。
// 解析固定先产出英文结果，目标语言非英文时再整体翻译一次；
// 翻译失败不阻断链路，实体只在链路末尾写入一次。
type AnalysisPipeline interface {
	Submit(ctx context.Context, image []byte, mimeType, fileName, targetLanguage string) (*Result, error)
}

type analysisPipeline struct {
	extractService   service.ExtractService
	translateService service.TranslateService
	questionService  service.QuestionService
	upload           ImageUploader
}

// NewAnalysisPipeline 创建一个新的 AnalysisPipeline 实例。
func NewAnalysisPipeline(
	extractService service.ExtractService,
	translateService service.TranslateService,
	questionService service.QuestionService,
	upload ImageUploader,
) AnalysisPipeline {
	return &analysisPipeline{
		extractService:   extractService,
		translateService: translateService,
		questionService:  questionService,
		upload:           upload,
	}
}

// Submit 执行完整链路。图片上传失败不阻断解析，存储引用留空。
func (p *analysisPipeline) Submit(ctx context.Context, image []byte, mimeType, fileName, targetLanguage string) (*Result, error) {
	if targetLanguage == "" {
		targetLanguage = "thai"
	}

	imageRef := ""
	if p.upload != nil {
		ref, err := p.upload(ctx, image, fileName, mimeType)
		if err != nil {
			log.Errorf("图片上传失败，继续解析流程: %v", err)
		} else {
			imageRef = ref
		}
	}

	// 先固定产出英文结果，翻译阶段基于完整的英文结构化对象
	analysis, err := p.extractService.Extract(ctx, image, mimeType, "english")
	if err != nil {
		return nil, err
	}

	translated := false
	if !strings.EqualFold(targetLanguage, "english") {
		analysis, translated = p.translateService.Translate(ctx, analysis, targetLanguage)
	}

	q, err := p.questionService.Create(ctx, analysis, imageRef)
	if err != nil {
		return nil, err
	}

	log.Infof("解析链路完成, questionID=%s, targetLanguage=%s, translated=%v", q.QuestionID, targetLanguage, translated)
	return &Result{Question: q, Translated: translated}, nil
}
