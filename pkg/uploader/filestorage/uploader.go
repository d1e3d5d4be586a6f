package filestorage

import (
	"context"
	"errors"
)

var ErrDirectoriesNotSupported = errors.New("storage backend cannot upload directories")

type Uploader interface {
	UploadFile(ctx context.Context, filePath string) (string, error)
	UploadJson(ctx context.Context, json interface{}) (string, error)
}

type DirUploader interface {
	Uploader
	UploadDir(ctx context.Context, dirPath string) (string, error)
}

// BytesUploader stores content exactly as given, without re-encoding it.
type BytesUploader interface {
	UploadBytes(ctx context.Context, name string, data []byte) (string, error)
}
