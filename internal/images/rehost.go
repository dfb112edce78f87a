package images

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/SparklingP1/property.com.ve/logger"
)

// Rehoster copies listing images into our own object store so records
// stop depending on source-site image hosting. Keys are derived from
// the listing's source_url hash plus the image index, so re-running a
// scrape overwrites the same objects instead of accumulating copies.
type Rehoster struct {
	storeURL string
	apiKey   string
	bucket   string
	client   *http.Client
}

// NewRehoster creates a rehoster against the object storage REST API.
func NewRehoster(storeURL, apiKey, bucket string) *Rehoster {
	return &Rehoster{
		storeURL: strings.TrimRight(storeURL, "/"),
		apiKey:   apiKey,
		bucket:   bucket,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// ObjectKey derives the stable object key for one image of a listing.
func ObjectKey(sourceURL string, index int, imageURL string) string {
	sum := sha256.Sum256([]byte(sourceURL))
	id := hex.EncodeToString(sum[:])[:16]

	ext := strings.ToLower(path.Ext(stripQuery(imageURL)))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
	default:
		ext = ".jpg"
	}
	return fmt.Sprintf("%s/%d%s", id, index, ext)
}

// RehostAll uploads each image and returns the hosted URLs in the same
// order. An image that cannot be fetched or uploaded keeps its original
// URL; one bad image never costs the listing the rest of its gallery.
func (r *Rehoster) RehostAll(ctx context.Context, sourceURL string, imageURLs []string) []string {
	if len(imageURLs) == 0 {
		return imageURLs
	}
	log := logger.ForStore()

	hosted := make([]string, len(imageURLs))
	for i, imageURL := range imageURLs {
		url, err := r.rehostOne(ctx, sourceURL, i, imageURL)
		if err != nil {
			log.Warn().Err(err).Str("image", imageURL).Msg("Image rehost failed, keeping original URL")
			hosted[i] = imageURL
			continue
		}
		hosted[i] = url
	}
	return hosted
}

func (r *Rehoster) rehostOne(ctx context.Context, sourceURL string, index int, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create fetch request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch image status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	key := ObjectKey(sourceURL, index, imageURL)
	objectURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", r.storeURL, r.bucket, key)

	put, err := http.NewRequestWithContext(ctx, http.MethodPut, objectURL, strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	put.Header.Set("Authorization", "Bearer "+r.apiKey)
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	put.Header.Set("Content-Type", contentType)

	putResp, err := r.client.Do(put)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer putResp.Body.Close()
	if putResp.StatusCode != http.StatusOK && putResp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("upload image status %d", putResp.StatusCode)
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", r.storeURL, r.bucket, key), nil
}

func stripQuery(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}
