package ipfs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ipfs/boxo/files"
	"github.com/ipfs/go-cid"
	iface "github.com/ipfs/kubo/core/coreiface"
	"github.com/ipfs/kubo/core/coreiface/options"
)

type AddResult struct {
	Name    string
	Cid     cid.Cid
	Size    uint64
	Entries int
}

type addSettings struct {
	pin        bool
	cidVersion int
	rawLeaves  *bool
	onlyHash   bool
}

type AddOption func(*addSettings)

func WithPin(pin bool) AddOption {
	return func(s *addSettings) {
		s.pin = pin
	}
}

func WithCidVersion(version int) AddOption {
	return func(s *addSettings) {
		s.cidVersion = version
	}
}

func WithRawLeaves(rawLeaves bool) AddOption {
	return func(s *addSettings) {
		s.rawLeaves = &rawLeaves
	}
}

// WithOnlyHash asks the node to compute identifiers without storing blocks.
func WithOnlyHash(onlyHash bool) AddOption {
	return func(s *addSettings) {
		s.onlyHash = onlyHash
	}
}

func newAddSettings(opts []AddOption) (*addSettings, error) {
	settings := &addSettings{
		pin:        true,
		cidVersion: 1,
	}
	for _, opt := range opts {
		opt(settings)
	}

	if settings.cidVersion != 0 && settings.cidVersion != 1 {
		return nil, fmt.Errorf("unsupported cid version %d", settings.cidVersion)
	}

	return settings, nil
}

func (s *addSettings) unixfsOptions() []options.UnixfsAddOption {
	opts := []options.UnixfsAddOption{
		options.Unixfs.Pin(s.pin),
		options.Unixfs.CidVersion(s.cidVersion),
		options.Unixfs.HashOnly(s.onlyHash),
	}
	if s.rawLeaves != nil {
		opts = append(opts, options.Unixfs.RawLeaves(*s.rawLeaves))
	}
	return opts
}

// addEvents collects the per-entry events the node streams back while
// adding. The root entry comes last.
type addEvents struct {
	ch      chan interface{}
	done    chan struct{}
	entries int
	last    *iface.AddEvent
}

func newAddEvents() *addEvents {
	e := &addEvents{
		ch:   make(chan interface{}, 16),
		done: make(chan struct{}),
	}

	go func() {
		defer close(e.done)
		for evt := range e.ch {
			added, ok := evt.(*iface.AddEvent)
			if !ok {
				continue
			}
			e.entries++
			e.last = added
			slog.Debug("node added entry", "name", added.Name, "size", added.Size)
		}
	}()

	return e
}

// wait must only be called once the add call returned.
func (e *addEvents) wait() {
	close(e.ch)
	<-e.done
}

// AddPath streams a file, or a directory and everything under it, to the node.
// Hidden files are left out. The returned identifier is the one of the root:
// the file itself or the top-level directory.
func (c *Client) AddPath(ctx context.Context, path string, opts ...AddOption) (*AddResult, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	node, err := files.NewSerialFile(path, false, stat)
	if err != nil {
		return nil, fmt.Errorf("failed to create file node: %w", err)
	}
	defer node.Close()

	return c.add(ctx, filepath.Base(path), node, opts)
}

func (c *Client) AddBytes(ctx context.Context, name string, data []byte, opts ...AddOption) (*AddResult, error) {
	return c.add(ctx, name, files.NewBytesFile(data), opts)
}

func (c *Client) add(ctx context.Context, name string, node files.Node, opts []AddOption) (*AddResult, error) {
	settings, err := newAddSettings(opts)
	if err != nil {
		return nil, err
	}

	events := newAddEvents()
	root, err := c.api.Unixfs().Add(ctx, node, append(settings.unixfsOptions(), options.Unixfs.Events(events.ch))...)
	events.wait()

	if err != nil {
		if translated := translateError("add", err); translated != nil {
			return nil, translated
		}
		if events.entries == 0 {
			return nil, ErrEmptyResponse
		}
		return nil, fmt.Errorf("failed to decode add response: %w", err)
	}

	result := &AddResult{
		Name:    name,
		Cid:     root.RootCid(),
		Entries: events.entries,
	}
	if events.last != nil && events.last.Size != "" {
		result.Size, err = strconv.ParseUint(events.last.Size, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("node returned invalid size %q: %w", events.last.Size, err)
		}
	}

	return result, nil
}
