package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    Location
		wantErr bool
	}{
		{
			name: "s3 scheme",
			uri:  "s3://imaging-bucket/studies/ct/frame.jph",
			want: Location{Bucket: "imaging-bucket", Key: "studies/ct/frame.jph"},
		},
		{
			name: "virtual hosted https",
			uri:  "https://imaging-bucket.s3.us-east-1.amazonaws.com/studies/ct/frame.jph",
			want: Location{Bucket: "imaging-bucket", Key: "studies/ct/frame.jph"},
		},
		{name: "missing key", uri: "s3://imaging-bucket/", wantErr: true},
		{name: "missing bucket", uri: "s3:///key", wantErr: true},
		{name: "unsupported scheme", uri: "ftp://imaging-bucket/key", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fakeS3 struct {
	in   *s3.GetObjectInput
	body []byte
	err  error
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.body))}, nil
}

func TestStoreGet(t *testing.T) {
	api := &fakeS3{body: []byte("pixel bytes")}
	store := NewStore(api)

	data, err := store.Get(context.Background(), Location{Bucket: "b", Key: "k/v"})
	require.NoError(t, err)
	assert.Equal(t, []byte("pixel bytes"), data)
	assert.Equal(t, "b", aws.ToString(api.in.Bucket))
	assert.Equal(t, "k/v", aws.ToString(api.in.Key))
}

func TestStoreGet_Error(t *testing.T) {
	sdkErr := errors.New("NoSuchKey")
	_, err := NewStore(&fakeS3{err: sdkErr}).Get(context.Background(), Location{Bucket: "b", Key: "k"})
	assert.ErrorIs(t, err, sdkErr)
}

func TestNewStore_NilPanics(t *testing.T) {
	assert.Panics(t, func() { NewStore(nil) })
}
