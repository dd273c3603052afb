// Package backup uploads the notes in a vault to an S3-compatible bucket.
package backup

import (
	"context"
	"fmt"
	"os"
	"path"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Paintersrp/knot/internal/config"
	"github.com/Paintersrp/knot/internal/storage"
)

const (
	contentType   = "text/markdown; charset=utf-8"
	defaultRegion = "us-east-1"
)

// Uploader is the part of manager.Uploader that Syncer uses.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Object is one note scheduled for upload.
type Object struct {
	Path string
	Key  string
	Size int64
}

type Result struct {
	Uploaded int
	Bytes    int64
}

type Syncer struct {
	uploader    Uploader
	store       storage.Store
	bucket      string
	prefix      string
	concurrency int
	log         logrus.FieldLogger
}

func New(uploader Uploader, store storage.Store, cfg config.SyncConfig, log logrus.FieldLogger) *Syncer {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Syncer{
		uploader:    uploader,
		store:       store,
		bucket:      cfg.Bucket,
		prefix:      cfg.Prefix,
		concurrency: concurrency,
		log:         log,
	}
}

// NewS3 builds a Syncer backed by the AWS SDK. Static credentials from cfg
// win over the default credential chain; Endpoint selects a path-style
// S3-compatible server.
func NewS3(ctx context.Context, cfg config.SyncConfig, store storage.Store, log logrus.FieldLogger) (*Syncer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sync config: %w", err)
	}

	var opts []func(*awsconfig.LoadOptions) error
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	opts = append(opts, awsconfig.WithRegion(region))
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	uploader := manager.NewUploader(client)
	return New(uploader, store, cfg, log), nil
}

// Plan lists every note in the vault with its destination key.
func (s *Syncer) Plan() ([]Object, error) {
	cats, err := s.store.Categories()
	if err != nil {
		return nil, err
	}

	var objects []Object
	for _, cat := range cats {
		notes, err := s.store.Notes(cat.Name)
		if err != nil {
			return nil, err
		}
		for _, n := range notes {
			info, err := os.Stat(n.Path)
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", n.Path, err)
			}
			objects = append(objects, Object{
				Path: n.Path,
				Key:  path.Join(s.prefix, cat.Name, n.Name),
				Size: info.Size(),
			})
		}
	}
	return objects, nil
}

// Sync uploads objects with at most the configured number of uploads in
// flight. The first failure cancels the remaining uploads.
func (s *Syncer) Sync(ctx context.Context, objects []Object) (Result, error) {
	var uploaded atomic.Int64
	var bytes atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, obj := range objects {
		g.Go(func() error {
			if err := s.upload(gCtx, obj); err != nil {
				return err
			}
			uploaded.Add(1)
			bytes.Add(obj.Size)
			return nil
		})
	}

	err := g.Wait()
	res := Result{Uploaded: int(uploaded.Load()), Bytes: bytes.Load()}
	if err != nil {
		return res, err
	}

	s.log.WithFields(logrus.Fields{
		"bucket":   s.bucket,
		"uploaded": res.Uploaded,
		"bytes":    res.Bytes,
	}).Info("vault sync complete")
	return res, nil
}

func (s *Syncer) upload(ctx context.Context, obj Object) error {
	f, err := os.Open(obj.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", obj.Path, err)
	}
	defer f.Close()

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(obj.Key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.log.WithError(err).WithField("key", obj.Key).Error("upload failed")
		return fmt.Errorf("upload %s: %w", obj.Key, err)
	}

	s.log.WithField("key", obj.Key).Debug("uploaded note")
	return nil
}
