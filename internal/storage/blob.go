package storage

import (
	"context"
	"io"
)

// BlobStore 商品图片的对象存储协作方。
// Save 返回内部引用，URL 把引用换成可对外访问的地址。
type BlobStore interface {
	Save(ctx context.Context, path string, r io.Reader, contentType string) (ref string, err error)
	URL(ref string) string
}
