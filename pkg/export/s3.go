package export

import (
	"bytes"
	"context"
	"errors"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNoCredentials is returned when the environment carries no AWS keys.
var ErrNoCredentials = errors.New("export: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")

// S3Options configures the client built by NewS3Client.
type S3Options struct {
	// Region is the bucket's AWS region.
	Region string

	// Endpoint overrides the service endpoint, for S3 compatible stores
	// such as MinIO. Path style addressing is used when it is set.
	Endpoint string

	// Credentials overrides the environment credentials.
	Credentials aws.CredentialsProvider
}

// NewS3Client builds an S3 client. Credentials are read from the standard
// AWS environment variables unless opts.Credentials is set.
func NewS3Client(opts S3Options) *s3.Client {
	creds := opts.Credentials
	if creds == nil {
		creds = aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials))
	}
	o := s3.Options{
		Region:      opts.Region,
		Credentials: creds,
	}
	if opts.Endpoint != "" {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	}
	return s3.New(o)
}

func envCredentials(context.Context) (aws.Credentials, error) {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, ErrNoCredentials
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "Environment",
	}, nil
}

// PutObjectAPI is the subset of the S3 client used by S3Store.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads exported pages to an S3 bucket.
//
// Example usage:
//
//	client := export.NewS3Client(export.S3Options{Region: "eu-west-1"})
//	store := export.NewS3Store(client, "my-site", "v2/")
type S3Store struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// NewS3Store creates a new S3 export store.
//
// Parameters:
//   - client: S3 client from aws-sdk-go-v2, or anything with PutObject
//   - bucket: S3 bucket name
//   - prefix: Key prefix for every object (e.g., "site/")
func NewS3Store(client PutObjectAPI, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Bucket returns the target bucket.
func (s *S3Store) Bucket() string {
	return s.bucket
}

// Put uploads body as bucket/prefix+key.
func (s *S3Store) Put(ctx context.Context, key, contentType string, body []byte) error {
	clean, err := cleanKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.prefix + clean),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	return err
}
