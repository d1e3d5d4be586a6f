package ipfs

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// MaxRawLeafSize is the default chunk size of the node's size splitter.
// Content up to this size is stored as a single leaf.
const MaxRawLeafSize = 256 * 1024

// RawCid returns the identifier a node assigns to data that fits in one raw
// leaf when adding with cid-version=1 (which implies raw leaves).
func RawCid(data []byte) cid.Cid {
	// Sum only fails for unknown hash codes.
	digest, _ := multihash.Sum(data, multihash.SHA2_256, -1)
	return cid.NewCidV1(cid.Raw, digest)
}

func IsSingleLeaf(size int64) bool {
	return size <= MaxRawLeafSize
}

func ParseCid(s string) (cid.Cid, error) {
	return cid.Decode(s)
}
