package chat

import (
	"time"

	"github.com/zhouzirui/manga-thumb/backend/internal/model/thumbnail"
)

// Session captures one user's in-progress questionnaire.
type Session struct {
	UserKey   string            `json:"userKey"`
	State     State             `json:"state"`
	Answers   thumbnail.Answers `json:"answers"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
