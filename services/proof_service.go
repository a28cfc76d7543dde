package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/hissabbook/admin-api/configs"
)

var dataURIPattern = regexp.MustCompile(`^data:(.+);base64,(.+)$`)

// SaveProof stores a base64 data-URI proof-of-payment and returns an opaque
// reference. Uploads go to Cloudinary when CLOUDINARY_URL is configured,
// otherwise to a local uploads directory. The workflow only ever records the
// returned reference, never the bytes.
func SaveProof(ctx context.Context, proof string) (string, error) {
	if proof == "" {
		return "", nil
	}

	matches := dataURIPattern.FindStringSubmatch(proof)
	if matches == nil {
		return "", validationError("invalid proof format")
	}

	if config.Config("CLOUDINARY_URL") != "" {
		return uploadProofToCloudinary(ctx, proof)
	}
	return saveProofToDisk(matches[1], matches[2])
}

func uploadProofToCloudinary(ctx context.Context, dataURI string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", storageError("failed to initialize cloudinary", err)
	}
	resp, err := cld.Upload.Upload(ctx, dataURI, uploader.UploadParams{Folder: "payout-proofs"})
	if err != nil {
		return "", storageError("failed to upload proof", err)
	}
	return resp.SecureURL, nil
}

func saveProofToDisk(mimeType, encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", validationError("invalid proof format")
	}

	ext := "bin"
	if parts := strings.SplitN(mimeType, "/", 2); len(parts) == 2 && parts[1] != "" {
		ext = parts[1]
	}

	dir := config.ConfigOr("UPLOAD_DIR", "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", storageError("failed to create upload directory", err)
	}

	fileName := fmt.Sprintf("payout-%d-%s.%s", time.Now().UnixMilli(), uuid.NewString(), ext)
	if err := os.WriteFile(filepath.Join(dir, fileName), data, 0o644); err != nil {
		return "", storageError("failed to save proof", err)
	}
	return fileName, nil
}
