package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader"
	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/setup"
)

func loadConfig(c *cli.Context) (*setup.Config, error) {
	config, err := setup.NewConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("api") {
		config.IpfsApiUrl = c.String("api")
	}
	if c.IsSet("output") {
		config.OutputDir = c.String("output")
	}
	if c.IsSet("json-suffix") {
		config.UseJsonSuffix = c.Bool("json-suffix")
	}
	if c.IsSet("backend") {
		config.StorageBackend = c.String("backend")
	}
	if c.IsSet("collection") {
		config.CollectionFile = c.String("collection")
	}
	if c.IsSet("verify") {
		config.VerifyUploads = c.Bool("verify")
	}
	if c.IsSet("listen") {
		config.ApiIpPort = c.String("listen")
	}

	return config, nil
}

func newUploader(c *cli.Context) (*uploader.Uploader, error) {
	config, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	setupResult, err := setup.Setup(config)
	if err != nil {
		return nil, fmt.Errorf("failed to setup: %w", err)
	}

	uploaderConfig, err := uploader.NewUploaderConfigFromSetupResult(setupResult)
	if err != nil {
		return nil, err
	}

	u, err := uploader.NewUploader(uploaderConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create uploader: %w", err)
	}

	if _, err := u.CheckNode(c.Context); err != nil && !errors.Is(err, uploader.ErrNoNode) {
		return nil, err
	}

	return u, nil
}

func singleArg(c *cli.Context, name string) (string, error) {
	if c.Args().Len() != 1 {
		return "", fmt.Errorf("expected exactly one argument: <%s>", name)
	}
	return c.Args().First(), nil
}

func SingleNft(c *cli.Context) error {
	imagePath, err := singleArg(c, "image")
	if err != nil {
		return err
	}

	u, err := newUploader(c)
	if err != nil {
		return err
	}

	result, err := u.ProcessSingle(c.Context, imagePath)
	if err != nil {
		return err
	}

	fmt.Printf("Image CID:    %s\n", result.ImageCid)
	fmt.Printf("Metadata CID: %s\n", result.MetadataCid)
	fmt.Printf("Output:       %s\n", result.OutputDir)
	fmt.Printf("Mint with token URI %s\n", result.TokenUri)

	return nil
}

func BatchNft(c *cli.Context) error {
	imagesDir, err := singleArg(c, "dir")
	if err != nil {
		return err
	}

	u, err := newUploader(c)
	if err != nil {
		return err
	}

	result, err := u.ProcessBatch(c.Context, imagesDir)
	if err != nil {
		return err
	}

	fmt.Printf("Images folder CID:   %s\n", result.ImagesCid)
	fmt.Printf("Metadata folder CID: %s\n", result.MetadataCid)
	fmt.Printf("Tokens:              %d\n", result.Tokens)
	fmt.Printf("Output:              %s\n", result.OutputDir)
	fmt.Printf("Set the contract base URI to %s\n", result.BaseUri)

	return nil
}

func AddPath(c *cli.Context) error {
	path, err := singleArg(c, "path")
	if err != nil {
		return err
	}

	u, err := newUploader(c)
	if err != nil {
		return err
	}

	id, err := u.AddPath(c.Context, path)
	if err != nil {
		return err
	}

	fmt.Println(id)
	return nil
}

func AddJson(c *cli.Context) error {
	path, err := singleArg(c, "file")
	if err != nil {
		return err
	}

	u, err := newUploader(c)
	if err != nil {
		return err
	}

	id, err := u.AddJsonFile(c.Context, path)
	if err != nil {
		return err
	}

	fmt.Println(id)
	return nil
}

func Serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	u, err := newUploader(c)
	if err != nil {
		return err
	}
	if u.ApiIpPort() == "" {
		return errors.New("no listen address, set API_IP_PORT or --listen")
	}

	if err := u.StartServer(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	slog.Info("shutting down")

	return nil
}
