package external

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StorageClient issues upload destinations for payment-slip images. The
// actual object store sits behind a signed-URL scheme; this client only
// derives the key and the two URLs the member needs.
type StorageClient struct {
	uploadBaseURL string
	publicBaseURL string
	bucket        string
}

type StorageConfig struct {
	UploadBaseURL string
	PublicBaseURL string
	Bucket        string
}

func NewStorageClient(cfg StorageConfig) *StorageClient {
	return &StorageClient{
		uploadBaseURL: cfg.UploadBaseURL,
		publicBaseURL: cfg.PublicBaseURL,
		bucket:        cfg.Bucket,
	}
}

// SlipUploadURL returns a one-shot upload URL and the public URL the slip
// will be retrievable at once uploaded.
func (sc *StorageClient) SlipUploadURL(userID int64) (uploadURL, publicURL string) {
	key := fmt.Sprintf("slips/%d/%s-%d", userID, uuid.New().String(), time.Now().Unix())
	uploadURL = fmt.Sprintf("%s/%s/%s", sc.uploadBaseURL, sc.bucket, key)
	publicURL = fmt.Sprintf("%s/%s/%s", sc.publicBaseURL, sc.bucket, key)
	return uploadURL, publicURL
}
