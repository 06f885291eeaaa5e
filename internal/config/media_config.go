package config

import "path/filepath"

type MediaConfig interface {
	GetMediaDir() string
	GetMediaURLPrefix() string
	GetThumbnailDir() string
	GetQuillImageDir() string
	GetQuillVideoDir() string
}

type Media struct{}

var _ MediaConfig = Media{}

// GetMediaDir is the on-disk root that media URLs resolve against.
func (Media) GetMediaDir() string {
	return GetEnv("MEDIA_DIR", "./media")
}

// GetMediaURLPrefix scopes reference extraction to the application's own
// uploads; embeds pointing anywhere else are never deletion candidates.
func (Media) GetMediaURLPrefix() string {
	return GetEnv("MEDIA_URL_PREFIX", "/media")
}

func (m Media) GetThumbnailDir() string {
	return filepath.Join(m.GetMediaDir(), GetEnv("ARTICLE_THUMBNAIL_DIR", "articles/thumbnails"))
}

func (m Media) GetQuillImageDir() string {
	return filepath.Join(m.GetMediaDir(), GetEnv("ARTICLE_QUILLS_IMG_DIR", "articles/quills/images"))
}

func (m Media) GetQuillVideoDir() string {
	return filepath.Join(m.GetMediaDir(), GetEnv("ARTICLE_QUILLS_VIDEO_DIR", "articles/quills/videos"))
}
