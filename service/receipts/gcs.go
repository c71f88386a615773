package receipts

import (
	"bytes"
	"io"
	"net/url"
	"time"

	"cloud.google.com/go/storage"
	bCtx "github.com/x-xyz/mintingkit/base/ctx"
	"github.com/x-xyz/mintingkit/base/log"
	"github.com/x-xyz/mintingkit/domain/minting"
)

const (
	folder      = "receipts"
	contentType = "application/json"
)

type Cfg struct {
	Timeout    time.Duration
	Client     *storage.Client
	BucketName string
	Url        string
}

type gcsArchive struct {
	client     *storage.Client
	bucketName string
	ctxTimeout time.Duration
	baseUrl    *url.URL
}

// New returns a receipt archive writing into a cloud storage bucket served under cfg.Url
func New(cfg *Cfg) (minting.ReceiptArchive, error) {
	baseUrl, err := url.Parse(cfg.Url)
	if err != nil {
		return nil, err
	}
	return &gcsArchive{
		client:     cfg.Client,
		bucketName: cfg.BucketName,
		ctxTimeout: cfg.Timeout,
		baseUrl:    baseUrl,
	}, nil
}

func objectPath(mintID string) string {
	return folder + "/" + url.PathEscape(mintID) + ".json"
}

func (a *gcsArchive) Store(c bCtx.Ctx, mintID string, receipt []byte) (string, error) {
	p := objectPath(mintID)
	contentPath, err := url.Parse(p)
	if err != nil {
		c.WithFields(log.Fields{
			"path": p,
			"err":  err,
		}).Error("failed to parse path")
		return "", err
	}

	ctx, cancel := bCtx.WithTimeout(c, a.ctxTimeout)
	defer cancel()
	w := a.client.Bucket(a.bucketName).Object(p).NewWriter(ctx)
	w.ObjectAttrs.ContentType = contentType
	if _, err := io.Copy(w, bytes.NewReader(receipt)); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("failed to copy")
		return "", err
	}
	if err := w.Close(); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("failed to close writer")
		return "", err
	}
	return a.baseUrl.ResolveReference(contentPath).String(), nil
}
