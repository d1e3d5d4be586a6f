package uploader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/ipfs/go-cid"
	"github.com/samber/lo"

	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/filestorage"
	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/ipfs"
	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/nft"
	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/packager"
	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/setup"
)

var ErrNoNode = errors.New("no ipfs node configured")

type NodeClient interface {
	Version(ctx context.Context) (*ipfs.VersionInfo, error)
}

type Uploader struct {
	storage     filestorage.Uploader
	nftUploader *nft.NftUploader
	packager    *packager.Packager
	node        NodeClient
	collection  nft.Collection
	apiRouter   *gin.Engine
	apiIpPort   string

	// workflows run one at a time, also when triggered through the api
	mu sync.Mutex
}

type UploaderConfig struct {
	Storage  filestorage.Uploader
	Node     NodeClient
	Packager *packager.Packager

	Collection nft.Collection
	ApiIpPort  string
}

type SingleResult struct {
	ImageCid    string       `json:"imageCid"`
	MetadataCid string       `json:"metadataCid"`
	TokenUri    string       `json:"tokenUri"`
	OutputDir   string       `json:"outputDir"`
	Metadata    nft.Metadata `json:"metadata"`
}

type BatchResult struct {
	ImagesCid   string `json:"imagesCid"`
	MetadataCid string `json:"metadataCid"`
	BaseUri     string `json:"baseUri"`
	OutputDir   string `json:"outputDir"`
	Tokens      int    `json:"tokens"`
}

func NewUploader(config *UploaderConfig) (*Uploader, error) {
	if config == nil {
		return nil, errors.New("config is nil")
	}
	if config.Storage == nil {
		return nil, errors.New("storage is nil")
	}

	collection := config.Collection
	if collection.NamePrefix == "" {
		collection = nft.DefaultCollection()
	}
	if err := collection.Validate(); err != nil {
		return nil, fmt.Errorf("invalid collection: %w", err)
	}

	p := config.Packager
	if p == nil {
		p = packager.NewPackager(packager.PackagerOptions{})
	}

	uploader := &Uploader{
		storage:     config.Storage,
		nftUploader: nft.NewNftUploader(config.Storage),
		packager:    p,
		node:        config.Node,
		collection:  collection,
		apiIpPort:   config.ApiIpPort,
	}

	uploader.apiRouter = uploader.generateRouter()

	return uploader, nil
}

func NewUploaderConfigFromSetupResult(setupResult *setup.SetupResult) (*UploaderConfig, error) {
	if setupResult == nil {
		return nil, errors.New("setup result is nil")
	}

	config := &UploaderConfig{
		Packager: packager.NewPackager(packager.PackagerOptions{
			OutputDir:  setupResult.OutputDir,
			JsonSuffix: setupResult.UseJsonSuffix,
		}),
		Collection: setupResult.Collection,
		ApiIpPort:  setupResult.ApiIpPort,
	}

	switch setupResult.StorageBackend {
	case setup.BackendPinata:
		config.Storage = filestorage.NewPinataUploader(setupResult.PinataJwtKey)
	default:
		client, err := ipfs.NewClient(setupResult.IpfsApiUrl, http.DefaultClient)
		if err != nil {
			return nil, fmt.Errorf("failed to create ipfs client: %w", err)
		}

		opts := filestorage.DefaultIpfsUploaderOptions()
		opts.Verify = setupResult.VerifyUploads

		config.Storage = filestorage.NewIpfsUploader(client, opts)
		config.Node = client
	}

	return config, nil
}

// CheckNode makes sure the node answers before any workflow touches local
// output. Backends without a node have nothing to check.
func (u *Uploader) CheckNode(ctx context.Context) (*ipfs.VersionInfo, error) {
	if u.node == nil {
		return nil, ErrNoNode
	}

	version, err := u.node.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reach ipfs node: %w", err)
	}

	slog.Info("connected to ipfs node", "version", version.Version)

	return version, nil
}

// ProcessSingle uploads one image, then its metadata, then packages both
// locally under <output>/<stem>/.
func (u *Uploader) ProcessSingle(ctx context.Context, imagePath string) (*SingleResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	slog.Info("processing single nft", "image", imagePath, "metadataFile", u.packager.MetadataFileName(nft.Stem(imagePath)))

	upload, err := u.nftUploader.UploadSingle(ctx, imagePath)
	if err != nil {
		return nil, err
	}

	outputDir, err := u.packager.WriteSingle(imagePath, upload.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to package nft: %w", err)
	}

	slog.Info("packaged nft locally", "dir", outputDir)

	return &SingleResult{
		ImageCid:    upload.ImageCid.String(),
		MetadataCid: upload.MetadataCid.String(),
		TokenUri:    nft.ImageUri(upload.MetadataCid),
		OutputDir:   outputDir,
		Metadata:    upload.Metadata,
	}, nil
}

// ProcessBatch uploads a folder of images, writes one metadata document per
// image into a new collection directory and uploads the metadata folder.
func (u *Uploader) ProcessBatch(ctx context.Context, imagesDir string) (*BatchResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	dirUploader, ok := u.storage.(filestorage.DirUploader)
	if !ok {
		return nil, filestorage.ErrDirectoriesNotSupported
	}

	images, err := packager.ListImages(imagesDir)
	if err != nil {
		return nil, err
	}
	if duplicates := lo.FindDuplicatesBy(images, nft.Stem); len(duplicates) > 0 {
		return nil, fmt.Errorf("images share a token id: %v", duplicates)
	}
	if len(images) == 0 {
		slog.Warn("no images found", "dir", imagesDir)
	}

	slog.Info("processing nft collection", "dir", imagesDir, "images", len(images))

	imagesHash, err := dirUploader.UploadDir(ctx, imagesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to upload images folder: %w", err)
	}
	imagesCid, err := cid.Decode(imagesHash)
	if err != nil {
		return nil, fmt.Errorf("storage returned invalid images cid %q: %w", imagesHash, err)
	}

	collectionDir, err := u.packager.NewCollection()
	if err != nil {
		return nil, err
	}

	if err := packager.CopyDir(imagesDir, collectionDir.ImagesDir); err != nil {
		return nil, fmt.Errorf("failed to copy images: %w", err)
	}
	slog.Info("copied images", "dir", collectionDir.ImagesDir)

	for _, image := range images {
		metadata := nft.NewCollectionMetadata(u.collection, imagesCid, image)
		if err := u.packager.WriteMetadata(collectionDir.MetadataDir, nft.Stem(image), metadata); err != nil {
			return nil, err
		}
	}
	slog.Info("generated metadata files", "count", len(images), "dir", collectionDir.MetadataDir)

	metadataHash, err := dirUploader.UploadDir(ctx, collectionDir.MetadataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to upload metadata folder: %w", err)
	}
	metadataCid, err := cid.Decode(metadataHash)
	if err != nil {
		return nil, fmt.Errorf("storage returned invalid metadata cid %q: %w", metadataHash, err)
	}

	return &BatchResult{
		ImagesCid:   imagesCid.String(),
		MetadataCid: metadataCid.String(),
		BaseUri:     nft.BaseUri(metadataCid),
		OutputDir:   collectionDir.Root,
		Tokens:      len(images),
	}, nil
}

// AddPath is the single-shot upload: a file or a whole directory, no
// metadata and no local packaging.
func (u *Uploader) AddPath(ctx context.Context, path string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	stat, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to access path: %w", err)
	}

	if !stat.IsDir() {
		return u.storage.UploadFile(ctx, path)
	}

	dirUploader, ok := u.storage.(filestorage.DirUploader)
	if !ok {
		return "", filestorage.ErrDirectoriesNotSupported
	}
	return dirUploader.UploadDir(ctx, path)
}

func (u *Uploader) AddJsonFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read json file: %w", err)
	}

	return u.AddJson(ctx, data)
}

func (u *Uploader) AddJson(ctx context.Context, data []byte) (string, error) {
	if !json.Valid(data) {
		return "", errors.New("content is not valid json")
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if bytesUploader, ok := u.storage.(filestorage.BytesUploader); ok {
		return bytesUploader.UploadBytes(ctx, "metadata.json", data)
	}

	// backends without raw uploads re-encode the document
	return u.storage.UploadJson(ctx, json.RawMessage(data))
}

func (u *Uploader) Collection() nft.Collection {
	return u.collection
}

func (u *Uploader) ApiIpPort() string {
	return u.apiIpPort
}
