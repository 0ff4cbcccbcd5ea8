package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/sealstream/internal/client/models"
	"github.com/dmitrijs2005/sealstream/internal/common"
	"github.com/dmitrijs2005/sealstream/internal/ledger"
	"github.com/dmitrijs2005/sealstream/internal/logging"
	"github.com/google/uuid"
)

// DefaultUploadTimeout bounds one relay upload attempt. It is deliberately
// explicit and phase-scoped: relay uploads of large media files can stall
// without tripping transport-level defaults.
const DefaultUploadTimeout = 5 * time.Minute

// Client performs the data-plane half of the storage protocol against the
// relay and aggregator endpoints, and builds the control-plane intents that
// bracket an upload.
type Client struct {
	relayHost      string
	aggregatorHost string
	packageID      string
	uploadTimeout  time.Duration
	http           *http.Client
	log            logging.Logger
}

// NewClient returns a relay client. packageID is the ledger package exposing
// the storage entry points.
func NewClient(relayHost, aggregatorHost, packageID string, log logging.Logger) *Client {
	return &Client{
		relayHost:      relayHost,
		aggregatorHost: aggregatorHost,
		packageID:      packageID,
		uploadTimeout:  DefaultUploadTimeout,
		http:           &http.Client{},
		log:            log,
	}
}

// WithUploadTimeout overrides the per-attempt upload bound; used by tests.
func (c *Client) WithUploadTimeout(d time.Duration) *Client {
	c.uploadTimeout = d
	return c
}

// RegisterIntent produces the not-yet-submitted transaction reserving a
// storage object for the encoded blob.
func (c *Client) RegisterIntent(encoded *EncodedPayload, sender string, epochs uint64, deletable bool, owner string) *ledger.TxIntent {
	return ledger.RegisterStorageObjectIntent(c.packageID, sender, encoded.BlobID, encoded.Size, epochs, deletable, owner)
}

// CertifyIntent produces the final on-chain transaction marking the uploaded
// blob durable and retrievable.
func (c *Client) CertifyIntent(encoded *EncodedPayload, sender, storageObjectID string) *ledger.TxIntent {
	return ledger.CertifyStorageObjectIntent(c.packageID, sender, encoded.BlobID, storageObjectID)
}

// ListPublished resolves the final queryable references for a certified blob.
func (c *Client) ListPublished(encoded *EncodedPayload, storageObjectID string, epochs uint64, deletable bool, owner string) []models.StorageObjectReference {
	return []models.StorageObjectReference{{
		BlobID:    encoded.BlobID,
		ObjectID:  storageObjectID,
		Epochs:    epochs,
		Deletable: deletable,
		Owner:     owner,
	}}
}

// Upload streams the encoded blob to the relay in one POST, tagged with the
// registration digest, the storage object id, and a fresh request nonce. The
// channel is idempotent at-least-once: the relay deduplicates by blob id and
// nonce, so a timed-out attempt may safely be retried without re-registering.
//
// A deadline hit is surfaced as ErrUploadTimeout, distinct from a relay
// refusal (ErrRelayRejected, which carries the relay's body verbatim), so the
// orchestrator can offer "retry upload only".
func (c *Client) Upload(ctx context.Context, encoded *EncodedPayload, registrationDigest, storageObjectID string, onProgress func(sent, total int64)) error {
	if registrationDigest == "" {
		return fmt.Errorf("upload before registration: %w", common.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("blob_id", encoded.BlobID)
	q.Set("deletable_blob_object", storageObjectID)
	q.Set("encoding_type", EncodingType)
	q.Set("transaction_id", registrationDigest)
	q.Set("nonce", uuid.NewString())

	endpoint := c.relayHost + "/v1/blob-upload-relay?" + q.Encode()

	body := io.Reader(newProgressReader(encoded.Blob, onProgress))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = encoded.Size

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("relay upload of %s after %s: %w",
				encoded.BlobID, time.Since(start).Round(time.Second), common.ErrUploadTimeout)
		}
		return fmt.Errorf("relay upload of %s: %w", encoded.BlobID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return fmt.Errorf("relay returned %s: %s: %w", resp.Status, string(b), common.ErrRelayRejected)
	}

	c.log.Info(ctx, "blob uploaded to relay",
		"blob_id", encoded.BlobID, "size", encoded.Size, "took", time.Since(start).String())
	return nil
}

// FetchBlob retrieves the (still encrypted) blob bytes from the aggregator.
func (c *Client) FetchBlob(ctx context.Context, blobID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.aggregatorHost+"/v1/blobs/"+url.PathEscape(blobID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching blob %s: %w", blobID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return nil, fmt.Errorf("aggregator returned %s for blob %s: %s", resp.Status, blobID, string(b))
	}

	return io.ReadAll(resp.Body)
}

// progressReader reports cumulative bytes handed to the transport. Reported
// counts only grow, which keeps the orchestrator's percentage monotonic even
// when the transport re-reads.
type progressReader struct {
	data  []byte
	pos   int
	max   int
	total int64
	fn    func(sent, total int64)
}

func newProgressReader(data []byte, fn func(sent, total int64)) *progressReader {
	return &progressReader{data: data, total: int64(len(data)), fn: fn}
}

func (r *progressReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	if r.pos > r.max {
		r.max = r.pos
		if r.fn != nil {
			r.fn(int64(r.max), r.total)
		}
	}
	return n, nil
}

// Seek lets the transport rewind the body on redirects/retries without the
// progress count ever going backwards.
func (r *progressReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(r.pos) + offset
	case io.SeekEnd:
		abs = int64(len(r.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if abs < 0 || abs > int64(len(r.data)) {
		return 0, fmt.Errorf("seek out of range")
	}
	r.pos = int(abs)
	return abs, nil
}

var _ io.ReadSeeker = (*progressReader)(nil)
