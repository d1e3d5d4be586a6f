package filestorage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/ipfs/go-cid"

	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/ipfs"
)

const (
	verifiedCacheSize = 1024
	verifiedCacheTTL  = 30 * time.Minute
)

var ErrVerificationFailed = errors.New("uploaded content does not match local content")

type IpfsClient interface {
	AddPath(ctx context.Context, path string, opts ...ipfs.AddOption) (*ipfs.AddResult, error)
	AddBytes(ctx context.Context, name string, data []byte, opts ...ipfs.AddOption) (*ipfs.AddResult, error)
	Cat(ctx context.Context, id cid.Cid) ([]byte, error)
}

type IpfsUploaderOptions struct {
	Pin        bool
	CidVersion int
	// Verify reads every uploaded file back from the node and compares it
	// with the local bytes.
	Verify bool
}

func DefaultIpfsUploaderOptions() IpfsUploaderOptions {
	return IpfsUploaderOptions{
		Pin:        true,
		CidVersion: 1,
	}
}

type IpfsUploader struct {
	client IpfsClient
	opts   IpfsUploaderOptions

	// identifiers already read back and compared
	verified *expirable.LRU[cid.Cid, struct{}]
}

var (
	_ DirUploader   = (*IpfsUploader)(nil)
	_ BytesUploader = (*IpfsUploader)(nil)
)

func NewIpfsUploader(client IpfsClient, opts IpfsUploaderOptions) *IpfsUploader {
	return &IpfsUploader{
		client:   client,
		opts:     opts,
		verified: expirable.NewLRU[cid.Cid, struct{}](verifiedCacheSize, nil, verifiedCacheTTL),
	}
}

func (u *IpfsUploader) addOptions() []ipfs.AddOption {
	return []ipfs.AddOption{
		ipfs.WithPin(u.opts.Pin),
		ipfs.WithCidVersion(u.opts.CidVersion),
	}
}

func (u *IpfsUploader) UploadFile(ctx context.Context, filePath string) (string, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to access file: %w", err)
	}
	if stat.IsDir() {
		return "", fmt.Errorf("%s is a directory", filePath)
	}

	return u.uploadPath(ctx, filePath)
}

func (u *IpfsUploader) UploadDir(ctx context.Context, dirPath string) (string, error) {
	stat, err := os.Stat(dirPath)
	if err != nil {
		return "", fmt.Errorf("failed to access directory: %w", err)
	}
	if !stat.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dirPath)
	}

	return u.uploadPath(ctx, dirPath)
}

func (u *IpfsUploader) uploadPath(ctx context.Context, path string) (string, error) {
	slog.Info("uploading to ipfs", "path", path)

	result, err := u.client.AddPath(ctx, path, u.addOptions()...)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to ipfs: %w", path, err)
	}

	slog.Info("uploaded to ipfs",
		"name", result.Name,
		"cid", result.Cid.String(),
		"size", humanize.IBytes(result.Size),
		"entries", result.Entries,
	)

	if u.opts.Verify {
		if err := u.verifyPath(ctx, path, result.Cid); err != nil {
			return "", err
		}
	}

	return result.Cid.String(), nil
}

func (u *IpfsUploader) UploadJson(ctx context.Context, v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal json: %w", err)
	}

	return u.UploadBytes(ctx, "metadata.json", data)
}

func (u *IpfsUploader) UploadBytes(ctx context.Context, name string, data []byte) (string, error) {
	result, err := u.client.AddBytes(ctx, name, data, u.addOptions()...)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to ipfs: %w", name, err)
	}

	slog.Info("uploaded bytes to ipfs", "name", name, "cid", result.Cid.String(), "size", humanize.IBytes(result.Size))

	if u.opts.Verify {
		if err := u.verifyBytes(ctx, data, result.Cid); err != nil {
			return "", err
		}
	}

	return result.Cid.String(), nil
}

// verifyPath only checks regular files; directory identifiers depend on the
// node's DAG layout.
func (u *IpfsUploader) verifyPath(ctx context.Context, path string, id cid.Cid) error {
	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to access %s for verification: %w", path, err)
	}
	if stat.IsDir() {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s for verification: %w", path, err)
	}

	return u.verifyBytes(ctx, data, id)
}

func (u *IpfsUploader) verifyBytes(ctx context.Context, data []byte, id cid.Cid) error {
	if u.opts.CidVersion == 1 && ipfs.IsSingleLeaf(int64(len(data))) {
		if expected := ipfs.RawCid(data); !expected.Equals(id) {
			return fmt.Errorf("%w: expected cid %s, node returned %s", ErrVerificationFailed, expected, id)
		}
	}

	if u.verified.Contains(id) {
		slog.Debug("upload already verified", "cid", id.String())
		return nil
	}

	fetched, err := u.client.Cat(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read back %s: %w", id, err)
	}
	if !bytes.Equal(data, fetched) {
		return fmt.Errorf("%w: %s", ErrVerificationFailed, id)
	}

	u.verified.Add(id, struct{}{})
	slog.Debug("verified upload", "cid", id.String())

	return nil
}
