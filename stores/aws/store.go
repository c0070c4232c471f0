package aws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path"

	"slidesync/core"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "presentations"

// s3Store keeps one object per presentation under the presentations/
// prefix. Reads and writes go straight to the bucket; there is no local
// cache, so every node of a deployment sees the same documents.
type s3Store struct {
	s3Client *s3.Client
	bucket   string
}

// NewStore creates a new S3-based store.
func NewStore(bucketName string) *s3Store {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	return &s3Store{
		s3Client: s3.NewFromConfig(cfg),
		bucket:   bucketName,
	}
}

// objectKey sanitizes the presentation id: ids are opaque names, never
// paths into the bucket.
func (s *s3Store) objectKey(id string) (string, error) {
	if id == "" || id == "." || id == ".." || path.Base(id) != id {
		return "", fmt.Errorf("invalid presentation id %q", id)
	}
	return path.Join(keyPrefix, id), nil
}

func (s *s3Store) Get(ctx context.Context, id string) (*core.Presentation, error) {
	key, err := s.objectKey(id)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"presentation_id": id, "bucket": s.bucket})

	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			log.Debug("Presentation not found")
			return nil, core.ErrNotFound
		}
		log.WithError(err).Error("Failed to get presentation object")
		return nil, fmt.Errorf("failed to get presentation %s: %w", id, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read presentation data: %w", err)
	}

	var p core.Presentation
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal presentation data: %w", err)
	}
	if p.Users == nil {
		p.Users = make(map[string]core.UserInfo)
	}
	if p.Slides == nil {
		p.Slides = []core.Slide{}
	}
	return &p, nil
}

func (s *s3Store) Put(ctx context.Context, p *core.Presentation) error {
	key, err := s.objectKey(p.ID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal presentation: %w", err)
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to save presentation %s: %w", p.ID, err)
	}

	logrus.WithFields(logrus.Fields{
		"presentation_id": p.ID,
		"bucket":          s.bucket,
		"data_length":     len(data),
	}).Debug("Presentation saved")
	return nil
}
