package setup

import (
	"fmt"
	"log/slog"

	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/debug"
	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/nft"
)

type SetupResult struct {
	IpfsApiUrl     string
	OutputDir      string
	UseJsonSuffix  bool
	StorageBackend string
	PinataJwtKey   string `json:"-"`
	ApiIpPort      string
	VerifyUploads  bool
	Collection     nft.Collection
}

// Setup validates config and loads the collection template it points to.
func Setup(config *Config) (*SetupResult, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	collection, err := nft.LoadCollection(config.CollectionFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}

	setupResult := &SetupResult{
		IpfsApiUrl:     config.IpfsApiUrl,
		OutputDir:      config.OutputDir,
		UseJsonSuffix:  config.UseJsonSuffix,
		StorageBackend: config.StorageBackend,
		PinataJwtKey:   config.PinataJwtKey,
		ApiIpPort:      config.ApiIpPort,
		VerifyUploads:  config.VerifyUploads,
		Collection:     collection,
	}

	if debug.IsDebugShowSetup() {
		slog.Info("setup output",
			"ipfsApiUrl", setupResult.IpfsApiUrl,
			"outputDir", setupResult.OutputDir,
			"useJsonSuffix", setupResult.UseJsonSuffix,
			"storageBackend", setupResult.StorageBackend,
			"apiIpPort", setupResult.ApiIpPort,
			"verifyUploads", setupResult.VerifyUploads,
			"collection", setupResult.Collection.NamePrefix,
		)
	}

	return setupResult, nil
}
