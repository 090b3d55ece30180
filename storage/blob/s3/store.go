// Package s3blob stores uploaded files in an S3 compatible bucket.
package s3blob

import (
	"bytes"
	"context"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"

	"github.com/devShreyas21/studentPortal/core"
	"github.com/devShreyas21/studentPortal/core/file"
)

// object metadata keys
const (
	metaName       = "Name"
	metaUploadedBy = "Uploaded-By"
	metaCreatedAt  = "Created-At"
)

type Store struct {
	client   s3iface.S3API
	uploader *s3manager.Uploader
	bucket   string
	prefix   string
}

var _ file.Store = (*Store)(nil) // interface compliance check

// New builds a Store from the upload config. Credentials come from the default AWS chain.
func New(conf core.UploadConfig) (*Store, error) {
	cfg := aws.NewConfig().WithRegion(conf.S3Region)
	if conf.S3Endpoint != "" {
		cfg = cfg.WithEndpoint(conf.S3Endpoint).WithS3ForcePathStyle(true)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "creating AWS session")
	}
	client := s3.New(sess)
	return NewWithClient(client, conf.S3Bucket, conf.S3Prefix), nil
}

func NewWithClient(client s3iface.S3API, bucket, prefix string) *Store {
	return &Store{
		client:   client,
		uploader: s3manager.NewUploaderWithClient(client),
		bucket:   bucket,
		prefix:   prefix,
	}
}

func (s *Store) key(id string) string {
	return path.Join(s.prefix, id)
}

func (s *Store) Put(ctx context.Context, f file.File) error {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(f.ID)),
		Body:        bytes.NewReader(f.Content),
		ContentType: aws.String(f.ContentType),
		Metadata: map[string]*string{
			metaName:       aws.String(url.QueryEscape(f.Name)),
			metaUploadedBy: aws.String(strconv.FormatInt(f.UploadedBy, 10)),
			metaCreatedAt:  aws.String(f.CreatedAt.UTC().Format(time.RFC3339Nano)),
		},
	})
	return errors.Wrap(err, "uploading file")
}

func (s *Store) Get(ctx context.Context, id string) (file.File, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		if isNotFound(err) {
			return file.File{}, file.ErrNotFound
		}
		return file.File{}, errors.Wrap(err, "downloading file")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer out.Body.Close()

	var buf bytes.Buffer
	if _, err = buf.ReadFrom(out.Body); err != nil {
		return file.File{}, errors.Wrap(err, "reading file")
	}

	f := file.File{
		ID:          id,
		ContentType: aws.StringValue(out.ContentType),
		Size:        int64(buf.Len()),
		Content:     buf.Bytes(),
	}
	if name, err := url.QueryUnescape(aws.StringValue(out.Metadata[metaName])); err == nil {
		f.Name = name
	}
	f.UploadedBy, _ = strconv.ParseInt(aws.StringValue(out.Metadata[metaUploadedBy]), 10, 64)
	f.CreatedAt, _ = time.Parse(time.RFC3339Nano, aws.StringValue(out.Metadata[metaCreatedAt]))
	return f, nil
}

func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "checking file")
	}
	return true, nil
}

func isNotFound(err error) bool {
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}
