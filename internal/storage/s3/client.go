package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"client-vault/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/google/uuid"
)

const (
	emptyAWSSessionToken         = ""
	pathSeparator                = "/"
	extensionSeparator           = "."
	errFailedCreateAWSSessionFmt = "failed to create AWS session: %w"
	errFailedUploadObjectFmt     = "failed to upload object: %w"
	errFailedDeleteObjectFmt     = "failed to delete object: %w"
	errEmptyObjectKey            = "object key cannot be empty"
)

// Client is the media store: it puts raw uploads into one bucket and hands
// back a durable URL for each object.
type Client struct {
	svc           s3iface.S3API
	uploader      s3manageriface.UploaderAPI
	bucket        string
	publicBaseURL string
}

func NewClient(cfg *config.AWSConfig) (*Client, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			emptyAWSSessionToken,
		)
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf(errFailedCreateAWSSessionFmt, err)
	}

	svc := s3.New(sess)
	return NewClientWithAPI(svc, s3manager.NewUploaderWithClient(svc), cfg.Bucket, cfg.PublicBaseURL), nil
}

// NewClientWithAPI builds a Client over explicit SDK interfaces.
func NewClientWithAPI(svc s3iface.S3API, uploader s3manageriface.UploaderAPI, bucket, publicBaseURL string) *Client {
	return &Client{
		svc:           svc,
		uploader:      uploader,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, pathSeparator),
	}
}

// Upload streams body to objectKey and returns the object's durable URL.
func (c *Client) Upload(ctx context.Context, objectKey, contentType string, body io.Reader) (string, error) {
	if objectKey == "" {
		return "", fmt.Errorf(errEmptyObjectKey)
	}

	input := &s3manager.UploadInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(objectKey),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	out, err := c.uploader.UploadWithContext(ctx, input)
	if err != nil {
		return "", fmt.Errorf(errFailedUploadObjectFmt, err)
	}

	if c.publicBaseURL != "" {
		return c.ObjectURL(objectKey), nil
	}
	return out.Location, nil
}

func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	_, err := c.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(objectKey),
	})

	if err != nil {
		return fmt.Errorf(errFailedDeleteObjectFmt, err)
	}

	return nil
}

// ObjectURL joins the public base URL and an escaped object key.
func (c *Client) ObjectURL(objectKey string) string {
	segments := strings.Split(objectKey, pathSeparator)
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return c.publicBaseURL + pathSeparator + strings.Join(segments, pathSeparator)
}

// KeyForURL recovers the object key from a URL produced by Upload. It only
// recognises URLs under the public base URL.
func (c *Client) KeyForURL(rawURL string) (string, bool) {
	if c.publicBaseURL == "" {
		return "", false
	}

	prefix := c.publicBaseURL + pathSeparator
	if !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}

	key, err := url.PathUnescape(strings.TrimPrefix(rawURL, prefix))
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}

// BuildObjectKey places an upload under its owner's prefix with a random
// name that keeps the original extension.
func BuildObjectKey(ownerID, fileName string) string {
	name := uuid.New().String()
	if idx := strings.LastIndex(fileName, extensionSeparator); idx > 0 && idx < len(fileName)-1 {
		name += strings.ToLower(fileName[idx:])
	}

	if ownerID == "" {
		return name
	}
	return ownerID + pathSeparator + name
}
