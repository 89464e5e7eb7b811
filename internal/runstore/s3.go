// Copyright 2024 Alexandre Mahdhaoui
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package runstore transports build artifacts to and from CI-run storage
// backed by an S3-compatible bucket.
//
// Run artifacts live under `runs/<run-id>/<filename>`. The contract is
// all-or-nothing: on success every listed file is present at the
// destination, and the first error aborts the batch.
package runstore

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Store is a CI-run artifact store on an S3-compatible service.
type Store struct {
	client *s3.Client
	bucket string
}

// New creates a Store for the given endpoint, region, and bucket.
// The endpoint is a full URL (e.g. "http://localhost:9000" for MinIO);
// credentials come from the default AWS chain of the CI environment.
// If region is empty it defaults to "us-east-1".
func New(ctx context.Context, endpoint, region, bucket string) (*Store, error) {
	if err := validateEndpoint(endpoint); err != nil {
		return nil, err
	}
	if bucket == "" {
		return nil, fmt.Errorf("runstore: bucket is required")
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(normalizeRegion(region)),
		config.WithBaseEndpoint(endpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Store{client: newClient(cfg), bucket: bucket}, nil
}

// NewWithStaticCredentials creates a Store with explicit credentials,
// for CI environments that inject them as plain variables rather than
// through the default chain.
func NewWithStaticCredentials(ctx context.Context, endpoint, region, bucket, accessKeyID, secretAccessKey string) (*Store, error) {
	if err := validateEndpoint(endpoint); err != nil {
		return nil, err
	}
	if bucket == "" {
		return nil, fmt.Errorf("runstore: bucket is required")
	}

	creds := credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(normalizeRegion(region)),
		config.WithCredentialsProvider(creds),
		config.WithBaseEndpoint(endpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config with credentials: %w", err)
	}

	return &Store{client: newClient(cfg), bucket: bucket}, nil
}

func newClient(cfg aws.Config) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		// Path-style addressing for MinIO and other S3-compatible
		// services.
		o.UsePathStyle = true
	})
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("runstore: invalid endpoint %q: want http(s) URL", endpoint)
	}
	return nil
}

func normalizeRegion(region string) string {
	if region == "" {
		return "us-east-1"
	}
	return region
}

// RunKey returns the object key for a file within a run.
func RunKey(runID, filename string) string {
	return path.Join("runs", runID, filename)
}

// Upload stores the given local files under the run's prefix. When runID
// is empty a fresh one is generated and returned, so callers outside a
// CI run can still produce an addressable upload.
func (s *Store) Upload(ctx context.Context, runID string, files []string) (string, error) {
	if len(files) == 0 {
		return "", fmt.Errorf("runstore: no files given")
	}
	if runID == "" {
		runID = uuid.NewString()
		log.Printf("No run ID provided, generated %s", runID)
	}

	for _, file := range files {
		if err := s.uploadOne(ctx, runID, file); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) uploadOne(ctx context.Context, runID, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer f.Close()

	key := RunKey(runID, filepath.Base(file))
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	}); err != nil {
		return fmt.Errorf("failed to upload %s to s3://%s/%s: %w", file, s.bucket, key, err)
	}

	log.Printf("Uploaded %s -> s3://%s/%s", file, s.bucket, key)
	return nil
}

// Download fetches every object of the run whose base name matches the
// glob pattern into destDir and returns the local paths. A pattern that
// matches nothing is an error: a downstream step expecting artifacts
// must not silently proceed with none.
func (s *Store) Download(ctx context.Context, runID, pattern, destDir string) ([]string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	var downloaded []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(path.Join("runs", runID) + "/"),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list run %s: %w", runID, err)
		}

		for _, obj := range page.Contents {
			name := path.Base(aws.ToString(obj.Key))
			ok, err := path.Match(pattern, name)
			if err != nil {
				return nil, fmt.Errorf("runstore: bad pattern %q: %w", pattern, err)
			}
			if !ok {
				continue
			}

			dest := filepath.Join(destDir, name)
			if err := s.downloadOne(ctx, aws.ToString(obj.Key), dest); err != nil {
				return nil, err
			}
			downloaded = append(downloaded, dest)
		}
	}

	if len(downloaded) == 0 {
		return nil, fmt.Errorf("runstore: no artifacts of run %s match %q", runID, pattern)
	}

	return downloaded, nil
}

func (s *Store) downloadOne(ctx context.Context, key, dest string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to download s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, out.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	log.Printf("Downloaded s3://%s/%s -> %s", s.bucket, key, dest)
	return nil
}
