package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// mockS3 keeps objects in memory
type mockS3 struct {
	objects map[string][]byte
	puts    []*s3.PutObjectInput
	putErr  error
}

func newMockS3() *mockS3 {
	return &mockS3{objects: map[string][]byte{}}
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.puts = append(m.puts, params)
	m.objects[aws.ToString(params.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := m.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (m *mockS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(m.objects, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3FileStorage_RoundTrip(t *testing.T) {
	client := newMockS3()
	s := NewS3FileStorage(client, S3Config{Bucket: "claims", Prefix: "/documents/"}, zap.NewNop())
	ctx := context.Background()

	key, err := s.Save(ctx, "abc.pdf", []byte("pdf"))
	require.NoError(t, err)
	assert.Equal(t, "documents/abc.pdf", key)

	require.Len(t, client.puts, 1)
	assert.Equal(t, "claims", aws.ToString(client.puts[0].Bucket))
	assert.Equal(t, "application/pdf", aws.ToString(client.puts[0].ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(client.puts[0].ContentLength))

	got, err := s.Read(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf"), got)

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Read(ctx, key)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestS3FileStorage_KeyIsConfined(t *testing.T) {
	s := NewS3FileStorage(newMockS3(), S3Config{Bucket: "claims", Prefix: "docs"}, zap.NewNop())

	key, err := s.Save(context.Background(), "../../other/x.txt", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "docs/other/x.txt", key)

	_, err = s.Save(context.Background(), "", []byte("x"))
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestS3FileStorage_UploadFailure(t *testing.T) {
	client := newMockS3()
	client.putErr = errors.New("access denied")
	s := NewS3FileStorage(client, S3Config{Bucket: "claims"}, zap.NewNop())

	_, err := s.Save(context.Background(), "a.pdf", []byte("x"))
	assert.ErrorIs(t, err, entity.ErrStorage)
}
