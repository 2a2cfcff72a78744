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
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"

	qxsql "github.com/qxengine/qx/sql"
)

type fakeS3 struct {
	objects map[string]string
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var contents []types.Object
	for key := range f.objects {
		contents = append(contents, types.Object{Key: aws.String(key)})
	}
	return &s3.ListObjectsV2Output{Contents: contents}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body := f.objects[aws.ToString(in.Key)]
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewBufferString(body))}, nil
}

func TestS3ReadDatasetDecodesListedObjects(t *testing.T) {
	conn := &S3{
		client: &fakeS3{objects: map[string]string{
			"data/a.csv": "id\n1\n",
			"data/b.csv": "id\n2\n",
			"data/readme.txt": "ignored",
		}},
		bucket: "bucket",
		prefix: "data",
	}

	it, declined, err := conn.ReadDataset(qxsql.NewEmptyContext(), qxsql.PushdownRequest{})
	require.NoError(t, err)
	require.Nil(t, declined)

	var total int
	for {
		batch, err := it.Next(qxsql.NewEmptyContext())
		if err != nil {
			break
		}
		total += batch.Rows
	}
	require.Equal(t, 2, total)
}

func TestS3CapabilitiesDeclineAllPushdown(t *testing.T) {
	conn := &S3{client: &fakeS3{}}
	require.Equal(t, qxsql.Capabilities{}, conn.Capabilities())
}
