package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string

	// KeyFromURL возвращает ключ объекта, если URL указывает в наш бакет.
	KeyFromURL(publicURL string) (string, bool)
}

// keyFromURL ищет публичный базовый URL внутри publicURL, поэтому
// работает и для ссылок, обёрнутых префиксом трансформации.
func keyFromURL(publicBaseURL, publicURL string) (string, bool) {
	base := strings.TrimRight(publicBaseURL, "/")
	if base == "" || publicURL == "" {
		return "", false
	}
	idx := strings.Index(publicURL, base+"/")
	if idx < 0 {
		return "", false
	}
	key := publicURL[idx+len(base)+1:]
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	if key == "" {
		return "", false
	}
	return key, true
}

// TransformedURL оборачивает исходный URL префиксом сервиса трансформации
// изображений (формат Cloudflare Images: <base>/width=..,height=..,fit=cover/<src>).
// Пустой base возвращает исходный URL.
func TransformedURL(transformBaseURL, sourceURL string, width, height int) string {
	base := strings.TrimRight(transformBaseURL, "/")
	if base == "" || sourceURL == "" {
		return sourceURL
	}
	return fmt.Sprintf("%s/width=%d,height=%d,fit=cover/%s", base, width, height, sourceURL)
}
