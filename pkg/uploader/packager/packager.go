package packager

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/nft"
)

const (
	DefaultOutputDir = "output"

	collectionPrefix = "collection_"
	timestampLayout  = "20060102_150405"
	jsonSuffix       = ".json"

	imagesDirName   = "images"
	metadataDirName = "metadata"

	// collisions are resolved by suffixing; give up after this many.
	maxCollectionAttempts = 1000
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif"}

type Packager struct {
	outputDir  string
	jsonSuffix bool
	now        func() time.Time
}

type PackagerOptions struct {
	OutputDir  string
	JsonSuffix bool
	Now        func() time.Time
}

type CollectionDir struct {
	Root        string
	ImagesDir   string
	MetadataDir string
}

func NewPackager(opts PackagerOptions) *Packager {
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Packager{
		outputDir:  opts.OutputDir,
		jsonSuffix: opts.JsonSuffix,
		now:        opts.Now,
	}
}

func (p *Packager) OutputDir() string {
	return p.outputDir
}

// MetadataFileName is the name token metadata is stored under, with or without
// the .json suffix depending on what the target contract expects.
func (p *Packager) MetadataFileName(stem string) string {
	if p.jsonSuffix {
		return stem + jsonSuffix
	}
	return stem
}

// WriteSingle packages one image and its metadata into <output>/<stem>/.
func (p *Packager) WriteSingle(imagePath string, metadata nft.Metadata) (string, error) {
	fileName := filepath.Base(imagePath)
	dir := filepath.Join(p.outputDir, nft.Stem(fileName))

	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := CopyFile(imagePath, filepath.Join(dir, fileName)); err != nil {
		return "", err
	}

	if err := p.WriteMetadata(dir, nft.Stem(fileName), metadata); err != nil {
		return "", err
	}

	return dir, nil
}

// NewCollection creates a fresh collection_<timestamp> tree. A run never
// reuses a directory left by a previous one.
func (p *Packager) NewCollection() (*CollectionDir, error) {
	if err := os.MkdirAll(p.outputDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	base := filepath.Join(p.outputDir, collectionPrefix+p.now().Format(timestampLayout))

	root := base
	for attempt := 1; ; attempt++ {
		err := os.Mkdir(root, os.ModePerm)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("failed to create collection directory: %w", err)
		}
		if attempt >= maxCollectionAttempts {
			return nil, fmt.Errorf("failed to find a free collection directory for %s", base)
		}
		root = base + "_" + strconv.Itoa(attempt)
	}

	collection := &CollectionDir{
		Root:        root,
		ImagesDir:   filepath.Join(root, imagesDirName),
		MetadataDir: filepath.Join(root, metadataDirName),
	}

	if err := os.MkdirAll(collection.MetadataDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create metadata directory: %w", err)
	}

	return collection, nil
}

func (p *Packager) WriteMetadata(dir, stem string, metadata nft.Metadata) error {
	data, err := MarshalMetadata(metadata)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, p.MetadataFileName(stem))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	return nil
}

// MarshalMetadata renders the local copy: 4-space indentation and no HTML
// escaping so non-ASCII and markup characters stay readable.
func MarshalMetadata(metadata nft.Metadata) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")

	if err := encoder.Encode(metadata); err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// ListImages returns the image files directly inside dir, sorted by name.
// Hidden files are skipped since folder uploads leave them out.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read images directory: %w", err)
	}

	images := lo.FilterMap(entries, func(entry fs.DirEntry, _ int) (string, bool) {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			return "", false
		}
		return entry.Name(), IsImage(entry.Name())
	})

	// ReadDir already sorts by file name
	return images, nil
}

func IsImage(fileName string) bool {
	return lo.Contains(imageExtensions, strings.ToLower(filepath.Ext(fileName)))
}
