package ipfs

import (
	"context"
)

type VersionInfo struct {
	Version string `json:"Version"`
	Commit  string `json:"Commit"`
	Repo    string `json:"Repo"`
	System  string `json:"System"`
	Golang  string `json:"Golang"`
}

// Version doubles as the connectivity check: it is the cheapest call that
// proves the node answers RPC requests.
func (c *Client) Version(ctx context.Context) (*VersionInfo, error) {
	var info VersionInfo
	if err := c.api.Request("version").Exec(ctx, &info); err != nil {
		return nil, wrapError("version", err)
	}

	return &info, nil
}
