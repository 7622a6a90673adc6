package thumbnail

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhouzirui/manga-thumb/backend/internal/model/thumbnail"
	"github.com/zhouzirui/manga-thumb/backend/internal/render"
)

// Renderer 把答卷渲染成图片。
type Renderer interface {
	Render(answers thumbnail.Answers) (*render.Result, error)
}

// ArtifactStore 提供临时文件的创建与删除。
type ArtifactStore interface {
	Create(prefix, ext string) (*os.File, error)
	Remove(path string)
}

// DeliverFunc hands the rendered file to the user. The file is deleted once it returns.
type DeliverFunc func(ctx context.Context, path string) error

// Report 描述一次成功的渲染。
type Report struct {
	ID        string            `json:"id"`
	FillWidth int               `json:"fillWidth"`
	Fallbacks []render.Fallback `json:"fallbacks,omitempty"`
	Bytes     int64             `json:"bytes"`
	Duration  time.Duration     `json:"duration"`
}

// Service 负责渲染、落盘、投递与清理。
type Service struct {
	renderer  Renderer
	artifacts ArtifactStore
	quality   int
	logger    *zap.Logger
}

// NewService 创建缩略图服务。quality 为 JPEG 质量。
func NewService(renderer Renderer, artifacts ArtifactStore, quality int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		renderer:  renderer,
		artifacts: artifacts,
		quality:   quality,
		logger:    logger.Named("thumbnail"),
	}
}

// Deliver renders answers into a transient JPEG, passes its path to deliver and
// removes the image together with any uploaded custom font, whatever the outcome.
func (s *Service) Deliver(ctx context.Context, userKey string, answers thumbnail.Answers, deliver DeliverFunc) (Report, error) {
	defer s.artifacts.Remove(answers.CustomFontPath)

	report := Report{ID: uuid.NewString()}
	started := time.Now()
	logger := s.logger.With(zap.String("render_id", report.ID), zap.String("user", userKey))

	if err := ctx.Err(); err != nil {
		return report, err
	}

	result, err := s.renderer.Render(answers)
	if err != nil {
		return report, fmt.Errorf("render thumbnail: %w", err)
	}
	report.FillWidth = result.FillWidth
	report.Fallbacks = result.Fallbacks

	file, err := s.artifacts.Create("thumbnail", ".jpg")
	if err != nil {
		return report, err
	}
	path := file.Name()
	defer s.artifacts.Remove(path)

	if err := render.Encode(file, result.Image, s.quality); err != nil {
		file.Close()
		return report, err
	}
	if info, err := file.Stat(); err == nil {
		report.Bytes = info.Size()
	}
	if err := file.Close(); err != nil {
		return report, fmt.Errorf("close thumbnail file: %w", err)
	}

	if err := deliver(ctx, path); err != nil {
		return report, fmt.Errorf("deliver thumbnail: %w", err)
	}

	report.Duration = time.Since(started)
	logger.Info("thumbnail delivered",
		zap.Int("fill_width", report.FillWidth),
		zap.Int("fallbacks", len(report.Fallbacks)),
		zap.Int64("bytes", report.Bytes),
		zap.Duration("duration", report.Duration))
	return report, nil
}
