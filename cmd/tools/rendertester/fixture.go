package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zhouzirui/manga-thumb/backend/internal/model/thumbnail"
)

// fixture 是一份离线答卷；image 为相对 fixture 文件所在目录的图片路径。
type fixture struct {
	thumbnail.Answers `yaml:",inline"`
	ImagePath         string `yaml:"image"`
}

func loadFixture(path string) (thumbnail.Answers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return thumbnail.Answers{}, fmt.Errorf("read fixture: %w", err)
	}

	var fx fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return thumbnail.Answers{}, fmt.Errorf("decode fixture %s: %w", path, err)
	}

	answers := fx.Answers
	if fx.ImagePath != "" {
		imagePath := fx.ImagePath
		if !filepath.IsAbs(imagePath) {
			imagePath = filepath.Join(filepath.Dir(path), imagePath)
		}
		answers.Image, err = os.ReadFile(imagePath)
		if err != nil {
			return thumbnail.Answers{}, fmt.Errorf("read fixture image: %w", err)
		}
	}
	return answers, nil
}
