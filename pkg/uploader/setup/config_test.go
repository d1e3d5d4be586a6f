package setup_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/ipfs"
	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/nft"
	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/setup"
)

func TestNewConfigFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    *setup.Config
		wantErr bool
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			want: &setup.Config{
				IpfsApiUrl:     ipfs.DefaultApiUrl,
				OutputDir:      "output",
				StorageBackend: setup.BackendIpfs,
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				setup.EnvIpfsApiUrl:     "http://ipfs:5001",
				setup.EnvOutputDir:      "/tmp/out",
				setup.EnvUseJsonSuffix:  "true",
				setup.EnvVerifyUploads:  "1",
				setup.EnvCollectionFile: "collection.yaml",
				setup.EnvApiIpPort:      ":8080",
			},
			want: &setup.Config{
				IpfsApiUrl:     "http://ipfs:5001",
				OutputDir:      "/tmp/out",
				UseJsonSuffix:  true,
				VerifyUploads:  true,
				StorageBackend: setup.BackendIpfs,
				CollectionFile: "collection.yaml",
				ApiIpPort:      ":8080",
			},
		},
		{
			name: "pinata",
			env: map[string]string{
				setup.EnvStorageBackend: setup.BackendPinata,
				setup.EnvPinataJwtKey:   "jwt",
			},
			want: &setup.Config{
				IpfsApiUrl:     ipfs.DefaultApiUrl,
				OutputDir:      "output",
				StorageBackend: setup.BackendPinata,
				PinataJwtKey:   "jwt",
			},
		},
		{
			name:    "pinata without key",
			env:     map[string]string{setup.EnvStorageBackend: setup.BackendPinata},
			wantErr: true,
		},
		{
			name:    "unknown backend",
			env:     map[string]string{setup.EnvStorageBackend: "s3"},
			wantErr: true,
		},
		{
			name:    "invalid bool",
			env:     map[string]string{setup.EnvUseJsonSuffix: "sometimes"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{
				setup.EnvIpfsApiUrl, setup.EnvOutputDir, setup.EnvUseJsonSuffix, setup.EnvStorageBackend,
				setup.EnvPinataJwtKey, setup.EnvCollectionFile, setup.EnvApiIpPort, setup.EnvVerifyUploads,
			} {
				t.Setenv(key, tt.env[key])
			}

			config, err := setup.NewConfigFromEnv()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, config)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, config)
		})
	}
}

func TestSetup(t *testing.T) {
	config := setup.DefaultConfig()

	result, err := setup.Setup(config)
	require.NoError(t, err)
	assert.Equal(t, nft.DefaultCollection(), result.Collection)
	assert.Equal(t, config.IpfsApiUrl, result.IpfsApiUrl)

	collectionFile := filepath.Join(t.TempDir(), "collection.yaml")
	require.NoError(t, os.WriteFile(collectionFile, []byte("name_prefix: Garden\n"), 0644))
	config.CollectionFile = collectionFile

	result, err = setup.Setup(config)
	require.NoError(t, err)
	assert.Equal(t, "Garden", result.Collection.NamePrefix)

	config.CollectionFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = setup.Setup(config)
	assert.Error(t, err)

	config.OutputDir = ""
	_, err = setup.Setup(config)
	assert.Error(t, err)
}
