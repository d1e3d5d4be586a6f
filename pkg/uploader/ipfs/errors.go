package ipfs

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	rpc "github.com/ipfs/kubo/client/rpc"
)

var (
	ErrNodeUnreachable = errors.New("ipfs node unreachable")
	ErrEmptyResponse   = errors.New("ipfs node returned no entries")
)

// Error is the error document Kubo writes for a failed command.
type Error struct {
	Command string
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("ipfs %s failed: %s", e.Command, e.Message)
}

func IsUnreachable(err error) bool {
	return errors.Is(err, ErrNodeUnreachable)
}

// translateError maps rpc client failures onto this package's errors. It
// returns nil when err is neither a node error nor a transport failure.
func translateError(command string, err error) error {
	var rpcErr *rpc.Error
	if errors.As(err, &rpcErr) {
		return &Error{
			Command: command,
			Message: strings.TrimSpace(rpcErr.Message),
			Code:    int(rpcErr.Code),
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %s: %w", ErrNodeUnreachable, command, err)
	}

	return nil
}

func wrapError(command string, err error) error {
	if translated := translateError(command, err); translated != nil {
		return translated
	}
	return fmt.Errorf("ipfs %s failed: %w", command, err)
}
