package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	rektypes "github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

/* ─── Meal photo storage (S3) ────────────────────────────────────────── */

// imageStore keeps processed meal photos so history entries can link to them.
type imageStore interface {
	SaveMealPhoto(ctx context.Context, userID int, jpegBytes []byte) (string, error)
}

// s3ImageStore uploads photos to an S3 bucket. publicURL, when set, is the
// CDN prefix used in returned links instead of the bucket's own host.
type s3ImageStore struct {
	client    *s3.Client
	bucket    string
	region    string
	endpoint  string
	publicURL string
}

// newS3ImageStore builds a store from the default AWS credential chain.
// A non-empty endpoint (MinIO, LocalStack) switches to path-style addressing.
func newS3ImageStore(ctx context.Context, region, bucket, endpoint, publicURL string) (*s3ImageStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config for s3: %w", err)
	}
	endpoint = strings.TrimRight(endpoint, "/")
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &s3ImageStore{
		client:    client,
		bucket:    bucket,
		region:    region,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// SaveMealPhoto stores the JPEG under meal-photos/{userID}/{uuid}.jpg and
// returns its public URL.
func (s *s3ImageStore) SaveMealPhoto(ctx context.Context, userID int, jpegBytes []byte) (string, error) {
	key := mealPhotoKey(userID, uuid.NewString())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(jpegBytes),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}
	return s.objectURL(key), nil
}

func (s *s3ImageStore) objectURL(key string) string {
	switch {
	case s.publicURL != "":
		return s.publicURL + "/" + key
	case s.endpoint != "":
		return s.endpoint + "/" + s.bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func mealPhotoKey(userID int, id string) string {
	return fmt.Sprintf("meal-photos/%d/%s.jpg", userID, id)
}

/* ─── Label hints (Rekognition) ──────────────────────────────────────── */

// labelDetector names what is visible in a photo. Its output is only a hint
// for the model.
type labelDetector interface {
	DetectLabels(ctx context.Context, jpegBytes []byte) ([]string, error)
}

const (
	maxImageLabels     = 8
	minLabelConfidence = 75
)

type rekognitionLabelDetector struct {
	client *rekognition.Client
}

func newRekognitionLabelDetector(ctx context.Context, region, endpoint string) (*rekognitionLabelDetector, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config for rekognition: %w", err)
	}
	client := rekognition.NewFromConfig(cfg, func(o *rekognition.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &rekognitionLabelDetector{client: client}, nil
}

func (r *rekognitionLabelDetector) DetectLabels(ctx context.Context, jpegBytes []byte) ([]string, error) {
	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &rektypes.Image{Bytes: jpegBytes},
		MaxLabels:     aws.Int32(maxImageLabels),
		MinConfidence: aws.Float32(minLabelConfidence),
	})
	if err != nil {
		return nil, fmt.Errorf("detect labels: %w", err)
	}
	labels := make([]string, 0, len(out.Labels))
	for _, l := range out.Labels {
		if l.Name != nil {
			labels = append(labels, *l.Name)
		}
	}
	return labels, nil
}
