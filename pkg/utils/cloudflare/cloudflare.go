package cloudflare

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "realty_backend/pkg/config"
	"realty_backend/pkg/media"
)

// objectAPI is the part of the S3 client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store keeps listing photos in a Cloudflare R2 bucket through the S3 API.
type Store struct {
	client    objectAPI
	bucket    string
	publicURL string
}

var _ media.Store = (*Store)(nil)

func NewStore(ctx context.Context, cfg appconfig.MediaConfig) (*Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.R2AccessKey,
			cfg.R2SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID))
		o.UsePathStyle = true
		o.Region = "auto"
	})

	return newStore(client, cfg.R2Bucket, cfg.R2PublicURL), nil
}

func newStore(client objectAPI, bucket, publicURL string) *Store {
	return &Store{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// Upload stores file under listings/<folder>/ with a unique name and returns
// its public URL. The object key doubles as the external id.
func (s *Store) Upload(ctx context.Context, folder string, file media.File) (media.Object, error) {
	if len(file.Data) == 0 {
		return media.Object{}, media.ErrEmptyFile
	}

	key := media.ObjectKey(folder, file.Filename, time.Now())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file.Data),
		ContentType: aws.String(file.ContentType),
	})
	if err != nil {
		return media.Object{}, fmt.Errorf("could not upload file to R2: %w", err)
	}

	return media.Object{URL: s.publicURL + "/" + key, ExternalID: key}, nil
}

func (s *Store) Delete(ctx context.Context, externalID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(externalID),
	})
	if err != nil {
		return fmt.Errorf("could not delete file from R2: %w", err)
	}
	return nil
}
