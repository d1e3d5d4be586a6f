package uploader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/ipfs/go-cid"

	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/ipfs"
	"github.com/NethermindEth/ipfs-nft-uploader/pkg/uploader/nft"
)

const (
	// multipart bodies above this size spill to temporary files
	maxMultipartMemory = 8 << 20
	maxImageUploadSize = 32 << 20
)

var errInvalidImageUri = errors.New("image must be an ipfs:// uri with a valid cid")

func (u *Uploader) generateRouter() *gin.Engine {
	router := gin.Default()
	router.MaxMultipartMemory = maxMultipartMemory

	router.GET("/version", func(c *gin.Context) {
		version, err := u.CheckNode(c.Request.Context())
		if err != nil {
			c.String(statusForError(err), err.Error())
			return
		}

		c.JSON(http.StatusOK, version)
	})

	router.POST("/single", func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageUploadSize)

		file, err := c.FormFile("image")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.String(http.StatusRequestEntityTooLarge, fmt.Sprintf("image exceeds %d bytes", tooLarge.Limit))
				return
			}
			c.String(http.StatusBadRequest, "missing image file")
			return
		}

		tmpDir, err := os.MkdirTemp("", "nft-upload-")
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		defer os.RemoveAll(tmpDir)

		imagePath := filepath.Join(tmpDir, filepath.Base(file.Filename))
		if err := c.SaveUploadedFile(file, imagePath); err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}

		mtype, err := mimetype.DetectFile(imagePath)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		if !strings.HasPrefix(mtype.String(), "image/") {
			c.String(http.StatusUnsupportedMediaType, fmt.Sprintf("unsupported content type %s", mtype.String()))
			return
		}

		result, err := u.ProcessSingle(c.Request.Context(), imagePath)
		if err != nil {
			slog.Error("failed to process single nft", "error", err)
			c.String(statusForError(err), err.Error())
			return
		}

		c.JSON(http.StatusOK, result)
	})

	router.POST("/metadata", func(c *gin.Context) {
		var metadata nft.Metadata
		if err := c.ShouldBindJSON(&metadata); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		metadataHash, err := u.UploadMetadata(c.Request.Context(), metadata)
		if err != nil {
			c.String(statusForError(err), err.Error())
			return
		}

		metadataCid, err := cid.Decode(metadataHash)
		if err != nil {
			c.String(http.StatusBadGateway, fmt.Sprintf("storage returned invalid metadata cid %q", metadataHash))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"metadataCid": metadataCid.String(),
			"tokenUri":    nft.ImageUri(metadataCid),
		})
	})

	return router
}

func (u *Uploader) GetRouter() *gin.Engine {
	return u.apiRouter
}

// UploadMetadata uploads a document built elsewhere. Its image must already
// point at uploaded content.
func (u *Uploader) UploadMetadata(ctx context.Context, metadata nft.Metadata) (string, error) {
	if err := validateImageUri(metadata.Image); err != nil {
		return "", err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	return u.storage.UploadJson(ctx, metadata)
}

func validateImageUri(uri string) error {
	rest, ok := strings.CutPrefix(uri, "ipfs://")
	if !ok {
		return errInvalidImageUri
	}

	root, _, _ := strings.Cut(rest, "/")
	if _, err := cid.Decode(root); err != nil {
		return errInvalidImageUri
	}

	return nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, errInvalidImageUri):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoNode):
		return http.StatusNotImplemented
	case ipfs.IsUnreachable(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (u *Uploader) StartServer(ctx context.Context) error {
	slog.Info("starting server", "port", u.apiIpPort)

	if u.apiIpPort == "" {
		slog.Info("api ip port is empty, skipping server")
		return nil
	}

	server := &http.Server{
		Addr:    u.apiIpPort,
		Handler: u.apiRouter,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		if err := server.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	return nil
}
