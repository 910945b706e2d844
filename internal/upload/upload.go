// Package upload 把用户上传的图片转存到对象存储并返回可访问的 URL。
package upload

import (
	"context"
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/apperr"
)

// Uploader 上传单个图片文件，返回公开 URL
type Uploader interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (string, error)
}

var ErrNotConfigured = errors.New("image storage is not configured")

var imageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// contentType 只接受常见图片格式
func contentType(file *multipart.FileHeader) (string, error) {
	ct := file.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "image/") {
		return ct, nil
	}
	if ct, ok := imageExts[strings.ToLower(filepath.Ext(file.Filename))]; ok {
		return ct, nil
	}
	return "", apperr.Invalid("only image files can be uploaded")
}

// Disabled 未配置存储时使用
type Disabled struct{}

func (Disabled) Upload(context.Context, *multipart.FileHeader) (string, error) {
	return "", ErrNotConfigured
}
