package nft

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ipfs/go-cid"
)

const ipfsScheme = "ipfs://"

type Attribute struct {
	TraitType   string      `json:"trait_type" yaml:"trait_type"`
	Value       interface{} `json:"value" yaml:"value"`
	DisplayType string      `json:"display_type,omitempty" yaml:"display_type,omitempty"`
}

type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	ExternalUrl string      `json:"external_url,omitempty"`
	Attributes  []Attribute `json:"attributes"`
}

func ImageUri(imageCid cid.Cid) string {
	return ipfsScheme + imageCid.String()
}

func ImagePathUri(folderCid cid.Cid, fileName string) string {
	return ipfsScheme + folderCid.String() + "/" + fileName
}

// BaseUri is the collection base URI a contract appends token ids to.
func BaseUri(metadataFolderCid cid.Cid) string {
	return ipfsScheme + metadataFolderCid.String() + "/"
}

func Stem(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func NewSingleMetadata(imageCid cid.Cid, imagePath string) Metadata {
	fileName := filepath.Base(imagePath)

	return Metadata{
		Name:        Stem(fileName),
		Description: fmt.Sprintf("Metadata generated for image %s.", fileName),
		Image:       ImageUri(imageCid),
		Attributes:  []Attribute{{TraitType: "Type", Value: "Single artwork"}},
	}
}

// NewCollectionMetadata describes one token of a collection whose images
// were uploaded as a single folder. The token id comes from the file stem.
func NewCollectionMetadata(collection Collection, folderCid cid.Cid, fileName string) Metadata {
	tokenId := TokenId(fileName)

	attributes := make([]Attribute, 0, len(collection.Attributes)+1)
	attributes = append(attributes, Attribute{TraitType: collection.IdTrait, Value: tokenId})
	attributes = append(attributes, collection.Attributes...)

	return Metadata{
		Name:        fmt.Sprintf("%s #%v", collection.NamePrefix, tokenId),
		Description: collection.Description,
		Image:       ImagePathUri(folderCid, fileName),
		ExternalUrl: collection.ExternalUrl,
		Attributes:  attributes,
	}
}

// TokenId returns the numeric id encoded in the file stem, or the stem itself
// when it is not a number.
func TokenId(fileName string) interface{} {
	stem := Stem(fileName)
	if id, err := strconv.ParseUint(stem, 10, 64); err == nil {
		return id
	}
	return stem
}
