package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	sc "github.com/avoropay/finsync/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func stubPresign(t *testing.T) {
	t.Helper()

	oldNewClient := newS3ClientFromConfig
	oldNewPresign := newS3PresignClient
	oldPut := presignPutObject
	oldGet := presignGetObject
	t.Cleanup(func() {
		newS3ClientFromConfig = oldNewClient
		newS3PresignClient = oldNewPresign
		presignPutObject = oldPut
		presignGetObject = oldGet
	})

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return nil
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return nil
	}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://s3.local/put/" + *in.Key}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://s3.local/get/" + *in.Key}, nil
	}
}

func testS3Config() *sc.Config {
	cfg := &sc.Config{}
	cfg.LoadDefaults()
	return cfg
}

func TestGetUploadURL(t *testing.T) {
	stubPresign(t)
	s := NewReceiptService(testS3Config())

	key, url, err := s.GetUploadURL(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "receipts/u1/"))
	assert.Equal(t, "https://s3.local/put/"+key, url)
}

func TestGetDownloadURL(t *testing.T) {
	stubPresign(t)
	s := NewReceiptService(testS3Config())

	url, err := s.GetDownloadURL(context.Background(), "receipts/u1/x")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.local/get/receipts/u1/x", url)
}

func TestGetUploadURL_PresignError(t *testing.T) {
	stubPresign(t)
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign failed")
	}
	s := NewReceiptService(testS3Config())

	_, _, err := s.GetUploadURL(context.Background(), "u1")
	assert.Error(t, err)
}
