package service

import (
	"bytes"
	"compress/gzip"
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/kvv-bao/profiler/internal/app/appconfig"
	"github.com/kvv-bao/profiler/internal/core/profiletree"
	"github.com/kvv-bao/profiler/internal/pkg/observability"
)

// Archive copies audit documents to the export bucket.
type Archive struct {
	conf   *appconfig.Config
	client *s3.Client
}

func NewArchive(conf *appconfig.Config, client *s3.Client) *Archive {
	return &Archive{
		conf:   conf,
		client: client,
	}
}

// Enabled reports whether an export bucket is configured.
func (s *Archive) Enabled() bool {
	return s.client != nil
}

// DocumentKey returns the object key an audit document is exported to.
func (s *Archive) DocumentKey(snapshotID string) string {
	return s.conf.ExportS3Prefix + snapshotID + ".json.gz"
}

func encodeDocument(doc *profiletree.Document) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(doc); err != nil {
		return nil, errors.Wrap(err, "failed to marshal audit document")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to compress audit document")
	}
	return buf.Bytes(), nil
}

// exists reports whether key is already present in the export bucket.
func (s *Archive) exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.conf.ExportS3Bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var ae smithy.APIError
	if errors.As(err, &ae) && ae.ErrorCode() == "NotFound" {
		return false, nil
	}
	return false, errors.Wrap(err, "failed to invoke HeadObject")
}

// ExportDocument uploads doc, gzip-compressed, retrying transient failures. Documents are
// immutable, so one that has already been exported is left untouched. It is a no-op when the
// export is disabled.
func (s *Archive) ExportDocument(ctx context.Context, doc *profiletree.Document) error {
	if !s.Enabled() {
		return nil
	}

	key := s.DocumentKey(doc.SnapshotID)
	if ok, err := s.exists(ctx, key); err != nil {
		return err
	} else if ok {
		log.Info().Str("evt.name", "archive.export.exists").Str("key", key).Msg("audit document already exported")
		return nil
	}

	body, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	start := time.Now()
	err = retry.Do(
		func() error {
			_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
				Bucket:          aws.String(s.conf.ExportS3Bucket),
				Key:             aws.String(key),
				Body:            bytes.NewReader(body),
				ContentType:     aws.String("application/json"),
				ContentEncoding: aws.String("gzip"),
				Metadata: map[string]string{
					"parameter-hash":  doc.ParameterHash,
					"dataset-version": doc.DatasetVersion,
				},
			})
			return err
		},
		retry.Context(ctx),
		retry.Attempts(4),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().
				Err(err).
				Str("evt.name", "archive.export.retry").
				Uint("attempt", n+1).
				Str("key", key).
				Msg("failed to export audit document, retrying")
		}),
	)

	result := "success"
	if err != nil {
		result = "failure"
	}
	observability.ProfileExportDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())

	if err != nil {
		return errors.Wrapf(err, "failed to export audit document to s3://%s/%s", s.conf.ExportS3Bucket, key)
	}

	log.Info().
		Str("evt.name", "archive.export.done").
		Str("bucket", s.conf.ExportS3Bucket).
		Str("key", key).
		Int("size", len(body)).
		Msg("audit document exported")
	return nil
}
