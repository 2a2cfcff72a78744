// Copyright 2020-2021 Dolthub, Inc.
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

package connectors

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/qxengine/qx/sql"
)

// s3API is the subset of *s3.Client this connector calls, so tests can
// substitute a fake without talking to AWS.
type s3API interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 reads data files from objects in an S3 bucket rather than local
// files: one paginated ListObjectsV2 listing of every object under the
// configured prefix, one GetObject + local temp download per data object,
// then the same format decoders Blob uses. It does not walk Blob's
// year_YYYY/month_MM/day_DD partition layout and applies no date pruning:
// every data object under the prefix is read.
type S3 struct {
	client s3API
	bucket string
	prefix string
	cache  *decodeCache
}

// NewS3 builds an S3 connector using the default AWS credential chain
// (environment, shared config, IAM role), matching how every AWS SDK v2
// client in this codebase is constructed.
func NewS3(ctx context.Context, bucket, prefix string, cacheEntries int) (*S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &S3{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: strings.TrimSuffix(prefix, "/"),
		cache:  newDecodeCache(cacheEntries),
	}, nil
}

func (c *S3) GetSchema(ctx *sql.Context) (sql.Schema, error) {
	keys, err := c.listDataKeys(ctx)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return sql.Schema{}, nil
	}
	schema, _, err := c.decode(ctx, keys[0])
	return schema, err
}

func (c *S3) GetStatistics(ctx *sql.Context) (*sql.RelationStatistics, error) {
	return &sql.RelationStatistics{HasCount: false}, nil
}

// ListPartitions returns no partitions for S3: listDataKeys lists every
// object under the configured prefix, and no date range narrows that
// listing.
func (c *S3) ListPartitions(ctx *sql.Context, r sql.TemporalRange) ([]sql.PartitionKey, error) {
	return nil, nil
}

func (c *S3) listDataKeys(ctx *sql.Context) ([]string, error) {
	var keys []string
	var token *string
	for {
		out, err := c.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(c.bucket),
			Prefix:            aws.String(c.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if dataExtensions[strings.ToLower(filepath.Ext(key))] {
				keys = append(keys, key)
			}
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		token = out.NextContinuationToken
	}
	return keys, nil
}

func (c *S3) decode(ctx *sql.Context, key string) (sql.Schema, []sql.Row, error) {
	if c.cache != nil {
		if schema, rows, ok := c.cache.get(key); ok {
			return schema, rows, nil
		}
	}

	local, err := c.download(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	defer os.Remove(local)

	schema, rows, err := decodeFile(local)
	if err != nil {
		return nil, nil, err
	}
	if c.cache != nil {
		c.cache.put(key, schema, rows)
	}
	return schema, rows, nil
}

// download stages an object to a local temp file so the shared decoders
// (which read by path, not by stream) can run unmodified over S3 data.
func (c *S3) download(ctx *sql.Context, key string) (string, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", err
	}
	defer out.Body.Close()

	f, err := os.CreateTemp("", "qx-s3-*"+filepath.Ext(key))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, out.Body); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func (c *S3) ReadDataset(ctx *sql.Context, req sql.PushdownRequest) (sql.BatchIter, []sql.SimplePredicate, error) {
	keys, err := c.listDataKeys(ctx)
	if err != nil {
		return nil, nil, err
	}

	var schema sql.Schema
	var rows []sql.Row
	for _, key := range keys {
		s, r, err := c.decode(ctx, key)
		if err != nil {
			return nil, nil, err
		}
		if schema == nil {
			schema = s
		}
		rows = append(rows, r...)
	}
	if schema == nil {
		schema = sql.Schema{}
	}
	return newSliceIter(schema, rows), nil, nil
}

func (c *S3) Capabilities() sql.Capabilities { return sql.Capabilities{} }

func (c *S3) Mode() sql.Mode { return sql.ReadOnly }
