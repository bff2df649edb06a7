package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"everkeep-api/pkg/utils"
)

// 固定目录命名空间
const (
	FolderAvatars = "memorials/avatars"
	FolderCovers  = "memorials/covers"
	FolderPhotos  = "memorials/photos"
)

type Opts struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// MediaStore 把上传的二进制流写入 S3 兼容对象存储，返回可公开访问的 URL
type MediaStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func New(o Opts) (*MediaStore, error) {
	client, err := minio.New(o.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(o.AccessKey, o.SecretKey, ""),
		Secure: o.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	public := strings.TrimRight(o.PublicURL, "/")
	if public == "" {
		scheme := "http"
		if o.UseSSL {
			scheme = "https"
		}
		public = fmt.Sprintf("%s://%s/%s", scheme, o.Endpoint, o.Bucket)
	}
	return &MediaStore{client: client, bucket: o.Bucket, publicURL: public}, nil
}

// Upload 读完整个流后上传；size 必须为真实长度（来自 multipart header）
func (s *MediaStore) Upload(ctx context.Context, folder, filename string, r io.Reader, size int64) (string, error) {
	key := path.Join(folder, utils.NewID()+strings.ToLower(path.Ext(filename)))

	// 嗅探 content-type，再拼回完整流
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	head = head[:n]
	body := io.MultiReader(strings.NewReader(string(head)), r)

	opts := minio.PutObjectOptions{
		ContentType: http.DetectContentType(head),
	}
	if _, err := s.client.PutObject(ctx, s.bucket, key, body, size, opts); err != nil {
		return "", err
	}
	return s.publicURL + "/" + key, nil
}

func (s *MediaStore) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}
