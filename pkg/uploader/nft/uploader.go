package nft

import (
	"context"
	"fmt"

	"github.com/ipfs/go-cid"

	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/filestorage"
)

type NftUploader struct {
	uploader filestorage.Uploader
}

type SingleUpload struct {
	ImageCid    cid.Cid
	MetadataCid cid.Cid
	Metadata    Metadata
}

func NewNftUploader(uploader filestorage.Uploader) *NftUploader {
	return &NftUploader{
		uploader: uploader,
	}
}

func (u *NftUploader) UploadSingle(ctx context.Context, imagePath string) (*SingleUpload, error) {
	imageHash, err := u.uploader.UploadFile(ctx, imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	imageCid, err := cid.Decode(imageHash)
	if err != nil {
		return nil, fmt.Errorf("storage returned invalid image cid %q: %w", imageHash, err)
	}

	metadata := NewSingleMetadata(imageCid, imagePath)

	metadataHash, err := u.uploader.UploadJson(ctx, metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to upload metadata: %w", err)
	}

	metadataCid, err := cid.Decode(metadataHash)
	if err != nil {
		return nil, fmt.Errorf("storage returned invalid metadata cid %q: %w", metadataHash, err)
	}

	return &SingleUpload{
		ImageCid:    imageCid,
		MetadataCid: metadataCid,
		Metadata:    metadata,
	}, nil
}
