// Package ipfs is a narrow client for the Kubo HTTP RPC API. It only knows
// how to add content, read it back and ask the node for its version.
package ipfs

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	rpc "github.com/ipfs/kubo/client/rpc"
)

const DefaultApiUrl = "http://localhost:5001"

type Client struct {
	apiUrl *url.URL
	api    *rpc.HttpApi
}

// NewClient returns a client for the node listening at apiUrl. The handle is
// meant to be opened once per run and reused for every call.
func NewClient(apiUrl string, httpClient *http.Client) (*Client, error) {
	if apiUrl == "" {
		apiUrl = DefaultApiUrl
	}
	if !strings.Contains(apiUrl, "://") {
		apiUrl = "http://" + apiUrl
	}

	parsed, err := url.Parse(apiUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ipfs api url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported ipfs api url scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("ipfs api url has no host")
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	api, err := rpc.NewURLApiWithClient(parsed.String(), httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create ipfs rpc client: %w", err)
	}

	return &Client{
		apiUrl: parsed,
		api:    api,
	}, nil
}

func (c *Client) ApiUrl() string {
	return c.apiUrl.String()
}
