package setup

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/ipfs"
	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/packager"
)

const (
	BackendIpfs   = "ipfs"
	BackendPinata = "pinata"
)

type Config struct {
	IpfsApiUrl     string
	OutputDir      string
	UseJsonSuffix  bool
	StorageBackend string
	PinataJwtKey   string
	CollectionFile string
	ApiIpPort      string
	VerifyUploads  bool
}

func DefaultConfig() *Config {
	return &Config{
		IpfsApiUrl:     ipfs.DefaultApiUrl,
		OutputDir:      packager.DefaultOutputDir,
		StorageBackend: BackendIpfs,
	}
}

func NewConfigFromEnv() (*Config, error) {
	config := DefaultConfig()

	setString(&config.IpfsApiUrl, EnvIpfsApiUrl)
	setString(&config.OutputDir, EnvOutputDir)
	setString(&config.StorageBackend, EnvStorageBackend)
	setString(&config.PinataJwtKey, EnvPinataJwtKey)
	setString(&config.CollectionFile, EnvCollectionFile)
	setString(&config.ApiIpPort, EnvApiIpPort)

	if err := setBool(&config.UseJsonSuffix, EnvUseJsonSuffix); err != nil {
		return nil, err
	}
	if err := setBool(&config.VerifyUploads, EnvVerifyUploads); err != nil {
		return nil, err
	}

	err := config.Validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("OUTPUT_DIR is required")
	}

	switch c.StorageBackend {
	case BackendIpfs:
		if c.IpfsApiUrl == "" {
			return errors.New("IPFS_API_URL is required")
		}
	case BackendPinata:
		if c.PinataJwtKey == "" {
			return errors.New("PINATA_JWT_KEY is required for the pinata backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	return nil
}

func setString(field *string, key string) {
	if value := os.Getenv(key); value != "" {
		*field = value
	}
}

func setBool(field *bool, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	*field = parsed

	return nil
}
