package packager_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/nft"
	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/packager"
)

var imageCid = cid.MustParse("bafkreihdwdcefgh4dqkjv67uzcmw7ojee6xedzdetojuzjevtenxquvyku")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func writeFile(t *testing.T, path string, data []byte) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestPackager_WriteSingle(t *testing.T) {
	tests := []struct {
		name         string
		jsonSuffix   bool
		metadataName string
	}{
		{name: "no suffix", jsonSuffix: false, metadataName: "a"},
		{name: "json suffix", jsonSuffix: true, metadataName: "a.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imagePath := filepath.Join(t.TempDir(), "a.png")
			writeFile(t, imagePath, []byte("image"))

			p := packager.NewPackager(packager.PackagerOptions{
				OutputDir:  filepath.Join(t.TempDir(), "output"),
				JsonSuffix: tt.jsonSuffix,
			})

			metadata := nft.NewSingleMetadata(imageCid, imagePath)
			dir, err := p.WriteSingle(imagePath, metadata)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(p.OutputDir(), "a"), dir)

			image, err := os.ReadFile(filepath.Join(dir, "a.png"))
			require.NoError(t, err)
			assert.Equal(t, []byte("image"), image)

			data, err := os.ReadFile(filepath.Join(dir, tt.metadataName))
			require.NoError(t, err)
			expected, err := packager.MarshalMetadata(metadata)
			require.NoError(t, err)
			assert.Equal(t, expected, data)
		})
	}
}

func TestPackager_WriteSingleMissingImage(t *testing.T) {
	p := packager.NewPackager(packager.PackagerOptions{OutputDir: t.TempDir()})

	_, err := p.WriteSingle(filepath.Join(t.TempDir(), "missing.png"), nft.Metadata{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarshalMetadata(t *testing.T) {
	metadata := nft.Metadata{
		Name:        "Fish & Chips <1>",
		Description: "元数据",
		Image:       "ipfs://x",
		Attributes:  []nft.Attribute{{TraitType: "ID", Value: 1}},
	}

	data, err := packager.MarshalMetadata(metadata)
	require.NoError(t, err)

	expected := `{
    "name": "Fish & Chips <1>",
    "description": "元数据",
    "image": "ipfs://x",
    "attributes": [
        {
            "trait_type": "ID",
            "value": 1
        }
    ]
}`
	assert.Equal(t, expected, string(data))
}

func TestPackager_NewCollection(t *testing.T) {
	now := time.Date(2025, 7, 26, 16, 42, 57, 0, time.UTC)
	p := packager.NewPackager(packager.PackagerOptions{
		OutputDir: t.TempDir(),
		Now:       fixedClock(now),
	})

	first, err := p.NewCollection()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.OutputDir(), "collection_20250726_164257"), first.Root)
	assert.Equal(t, filepath.Join(first.Root, "images"), first.ImagesDir)
	assert.Equal(t, filepath.Join(first.Root, "metadata"), first.MetadataDir)
	assert.DirExists(t, first.MetadataDir)

	second, err := p.NewCollection()
	require.NoError(t, err)
	assert.Equal(t, first.Root+"_1", second.Root)

	third, err := p.NewCollection()
	require.NoError(t, err)
	assert.Equal(t, first.Root+"_2", third.Root)
}

func TestPackager_NewCollectionDistinctTimestamps(t *testing.T) {
	now := time.Date(2025, 7, 26, 16, 42, 57, 0, time.UTC)
	clock := now
	p := packager.NewPackager(packager.PackagerOptions{
		OutputDir: t.TempDir(),
		Now:       func() time.Time { return clock },
	})

	first, err := p.NewCollection()
	require.NoError(t, err)

	clock = now.Add(time.Minute)
	second, err := p.NewCollection()
	require.NoError(t, err)

	assert.NotEqual(t, first.Root, second.Root)
	assert.Equal(t, filepath.Join(p.OutputDir(), "collection_20250726_164357"), second.Root)
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"3.png", "1.JPG", "2.jpeg", "4.gif", "notes.txt", ".hidden.webp", ".5.png"} {
		writeFile(t, filepath.Join(dir, name), []byte(name))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "5.png"), 0755))

	images, err := packager.ListImages(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.JPG", "2.jpeg", "3.png", "4.gif"}, images)

	_, err = packager.ListImages(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestCopyDir(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "1.png"), []byte("1"))
	writeFile(t, filepath.Join(src, "nested", "2.png"), []byte("2"))

	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, packager.CopyDir(src, dst))

	for name, want := range map[string]string{"1.png": "1", filepath.Join("nested", "2.png"): "2"} {
		data, err := os.ReadFile(filepath.Join(dst, name))
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}
}
