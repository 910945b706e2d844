package upload

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// S3Options 上传目标
type S3Options struct {
	Bucket        string
	KeyPrefix     string
	PublicBaseURL string
}

// S3Uploader 上传到 Amazon S3（或兼容 API）
type S3Uploader struct {
	uploader *manager.Uploader
	opts     S3Options
}

func NewS3Uploader(client *s3.Client, opts S3Options) *S3Uploader {
	return &S3Uploader{uploader: manager.NewUploader(client), opts: opts}
}

func (u *S3Uploader) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if u.opts.Bucket == "" {
		return "", ErrNotConfigured
	}
	ct, err := contentType(file)
	if err != nil {
		return "", err
	}

	f, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", file.Filename, err)
	}
	defer f.Close()

	key := u.objectKey(file.Filename)
	out, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.opts.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(ct),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", file.Filename, err)
	}

	if u.opts.PublicBaseURL != "" {
		return strings.TrimSuffix(u.opts.PublicBaseURL, "/") + "/" + key, nil
	}
	return out.Location, nil
}

func (u *S3Uploader) objectKey(filename string) string {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	prefix := strings.Trim(u.opts.KeyPrefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
