// utils/objectstore.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var storeClient *s3.Client
var storeBucket string
var cdnBaseURL string

// InitObjectStore wires the S3 client against an R2 bucket. Attachments are
// small public reference files, so they go straight to the CDN bucket.
func InitObjectStore(accountID, accessKeyID, accessKeySecret, bucket, cdnURL string) error {
	storeBucket = bucket
	cdnBaseURL = cdnURL
	if cdnBaseURL == "" {
		cdnBaseURL = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
		awsconfig.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
				}, nil
			}),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to load object store config: %w", err)
	}

	storeClient = s3.NewFromConfig(cfg)
	return nil
}

// ObjectStoreReady reports whether InitObjectStore has run. Attachment
// uploads are rejected when storage was never configured.
func ObjectStoreReady() bool {
	return storeClient != nil
}

// UploadAttachment stores a multipart file under attachments/<uuid><ext> and
// returns its public URL.
func UploadAttachment(fileHeader *multipart.FileHeader) (string, error) {
	if storeClient == nil {
		return "", fmt.Errorf("object store not initialized")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	ext := filepath.Ext(fileHeader.Filename)
	key := "attachments/" + uuid.NewString() + ext

	_, err = storeClient.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(storeBucket),
		Key:         aws.String(key),
		Body:        buf,
		ContentType: aws.String(fileHeader.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload attachment: %w", err)
	}

	return fmt.Sprintf("%s/%s", cdnBaseURL, key), nil
}
