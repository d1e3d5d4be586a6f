package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/debug"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: debug.LogLevel(),
	})))

	if err := newApp().Run(os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "nft-uploader",
		Usage: "Upload images and NFT metadata to an IPFS node",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "api",
				Usage: "IPFS RPC API url (overrides IPFS_API_URL)",
			},
			&cli.StringFlag{
				Name:      "output",
				Aliases:   []string{"o"},
				Usage:     "Directory receiving packaged outputs (overrides OUTPUT_DIR)",
				TakesFile: true,
			},
			&cli.BoolFlag{
				Name:  "json-suffix",
				Usage: "Name metadata files <stem>.json (overrides USE_JSON_SUFFIX)",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Storage backend, ipfs or pinata (overrides STORAGE_BACKEND)",
			},
			&cli.StringFlag{
				Name:      "collection",
				Usage:     "YAML collection template (overrides COLLECTION_FILE)",
				TakesFile: true,
			},
			&cli.BoolFlag{
				Name:  "verify",
				Usage: "Read uploads back from the node and compare (overrides VERIFY_UPLOADS)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "single",
				Aliases:   []string{"s"},
				Usage:     "Upload one image and its metadata",
				ArgsUsage: "<image>",
				Action:    SingleNft,
			},
			{
				Name:      "batch",
				Aliases:   []string{"b"},
				Usage:     "Upload a folder of images and one metadata document per image",
				ArgsUsage: "<dir>",
				Action:    BatchNft,
			},
			{
				Name:      "add",
				Usage:     "Upload a file or directory and print its CID",
				ArgsUsage: "<path>",
				Action:    AddPath,
			},
			{
				Name:      "add-json",
				Usage:     "Upload a JSON document and print its CID (the pinata backend re-encodes it compactly)",
				ArgsUsage: "<file>",
				Action:    AddJson,
			},
			{
				Name:   "serve",
				Usage:  "Serve the upload workflows over HTTP",
				Action: Serve,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "Address to listen on (overrides API_IP_PORT)",
					},
				},
			},
		},
	}
}
