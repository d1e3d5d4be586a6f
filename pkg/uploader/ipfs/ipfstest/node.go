// Package ipfstest runs an in-process stand-in for the Kubo RPC endpoints the
// uploader talks to. Files get the identifier a real node gives to single
// raw leaves; directory identifiers are deterministic but synthetic.
package ipfstest

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/ipfs"
)

const (
	directoryContentType = "application/x-directory"
	DefaultVersion       = "0.29.0"
)

type Node struct {
	server *httptest.Server

	mu       sync.Mutex
	blocks   map[string][]byte
	pins     map[string]bool
	addCalls int
	failAdd  string
}

type entry struct {
	path string
	cid  cid.Cid
	size uint64
	dir  bool
}

func NewNode(t testing.TB) *Node {
	t.Helper()

	n := &Node{
		blocks: make(map[string][]byte),
		pins:   make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v0/version", n.post(n.handleVersion))
	mux.HandleFunc("/api/v0/add", n.post(n.handleAdd))
	mux.HandleFunc("/api/v0/cat", n.post(n.handleCat))

	n.server = httptest.NewServer(mux)
	t.Cleanup(n.server.Close)

	return n
}

func (n *Node) URL() string {
	return n.server.URL
}

func (n *Node) Close() {
	n.server.Close()
}

func (n *Node) Get(id string) ([]byte, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	data, ok := n.blocks[id]
	return data, ok
}

func (n *Node) Pinned(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.pins[id]
}

func (n *Node) AddCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.addCalls
}

// FailAdds makes every following add call fail with message. An empty
// message restores normal behavior.
func (n *Node) FailAdds(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.failAdd = message
}

func (n *Node) post(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "405 - Method Not Allowed")
			return
		}
		handler(w, r)
	}
}

func (n *Node) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ipfs.VersionInfo{
		Version: DefaultVersion,
		Commit:  "ipfstest",
		Repo:    "15",
		System:  "amd64/linux",
		Golang:  "go1.22",
	})
}

func (n *Node) handleCat(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("arg")
	data, ok := n.Get(id)
	if !ok {
		writeError(w, http.StatusInternalServerError, "block was not found locally (offline): "+id)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.Write(data)
}

func (n *Node) handleAdd(w http.ResponseWriter, r *http.Request) {
	n.mu.Lock()
	n.addCalls++
	failAdd := n.failAdd
	n.mu.Unlock()

	if failAdd != "" {
		writeError(w, http.StatusInternalServerError, failAdd)
		return
	}

	query := r.URL.Query()
	cidVersion, err := strconv.Atoi(query.Get("cid-version"))
	if err != nil {
		cidVersion = 0
	}

	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		writeError(w, http.StatusBadRequest, "expected multipart body")
		return
	}

	entries, err := n.readEntries(multipart.NewReader(r.Body, params["boundary"]), cidVersion)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(entries) == 0 {
		writeError(w, http.StatusBadRequest, "no files in request")
		return
	}

	root := entries[len(entries)-1]
	if query.Get("pin") == "true" {
		n.mu.Lock()
		n.pins[root.cid.String()] = true
		n.mu.Unlock()
	}

	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	for _, e := range entries {
		name := e.path
		if name == "" {
			name = e.cid.String()
		}
		encoder.Encode(map[string]string{
			"Name": name,
			"Hash": e.cid.String(),
			"Size": strconv.FormatUint(e.size, 10),
		})
	}
}

// readEntries consumes the multipart body and returns files in request order
// followed by directories, deepest first, so the root comes last.
func (n *Node) readEntries(reader *multipart.Reader, cidVersion int) ([]entry, error) {
	var fileEntries, dirEntries []entry

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read part: %w", err)
		}

		name, err := partPath(part)
		if err != nil {
			return nil, err
		}

		if part.Header.Get("Content-Type") == directoryContentType {
			dirEntries = append(dirEntries, entry{path: name, dir: true})
			continue
		}

		data, err := io.ReadAll(part)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		id := fileCid(data, cidVersion)
		n.mu.Lock()
		n.blocks[id.String()] = data
		n.mu.Unlock()

		fileEntries = append(fileEntries, entry{path: name, cid: id, size: uint64(len(data))})
	}

	sort.SliceStable(dirEntries, func(i, j int) bool {
		return depth(dirEntries[i].path) > depth(dirEntries[j].path)
	})

	done := append([]entry{}, fileEntries...)
	for i := range dirEntries {
		dirEntries[i].cid, dirEntries[i].size = dirCid(dirEntries[i].path, done)
		done = append(done, dirEntries[i])
	}

	return append(fileEntries, dirEntries...), nil
}

func partPath(part *multipart.Part) (string, error) {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return "", fmt.Errorf("invalid content disposition: %w", err)
	}

	name, err := url.QueryUnescape(params["filename"])
	if err != nil {
		return "", fmt.Errorf("invalid file name %q: %w", params["filename"], err)
	}

	return name, nil
}

func fileCid(data []byte, cidVersion int) cid.Cid {
	if cidVersion == 1 {
		return ipfs.RawCid(data)
	}

	digest, _ := multihash.Sum(data, multihash.SHA2_256, -1)
	return cid.NewCidV0(digest)
}

// depth of an entry below the unnamed root the rpc client sends.
func depth(p string) int {
	if p == "" {
		return -1
	}
	return strings.Count(p, "/")
}

func parent(p string) string {
	if dir := path.Dir(p); dir != "." {
		return dir
	}
	return ""
}

func dirCid(dir string, done []entry) (cid.Cid, uint64) {
	var children []entry
	for _, e := range done {
		if e.path != dir && parent(e.path) == dir {
			children = append(children, e)
		}
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].path < children[j].path
	})

	hasher := sha256.New()
	var size uint64
	for _, child := range children {
		fmt.Fprintf(hasher, "%s %s\n", path.Base(child.path), child.cid)
		size += child.size
	}

	digest, _ := multihash.Encode(hasher.Sum(nil), multihash.SHA2_256)
	return cid.NewCidV1(cid.DagProtobuf, digest), size
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"Message": message,
		"Code":    0,
		"Type":    "error",
	})
}
