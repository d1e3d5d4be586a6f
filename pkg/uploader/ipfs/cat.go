package ipfs

import (
	"context"
	"fmt"
	"io"

	"github.com/ipfs/go-cid"
)

func (c *Client) Cat(ctx context.Context, id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, fmt.Errorf("cannot cat undefined cid")
	}

	resp, err := c.api.Request("cat", id.String()).Send(ctx)
	if err != nil {
		return nil, wrapError("cat", err)
	}
	defer resp.Close()

	if resp.Error != nil {
		return nil, wrapError("cat", resp.Error)
	}

	data, err := io.ReadAll(resp.Output)
	if err != nil {
		return nil, wrapError("cat", err)
	}

	return data, nil
}
