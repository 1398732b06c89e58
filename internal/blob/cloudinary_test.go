package blob

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUploader struct {
	got    []byte
	params uploader.UploadParams
	result *uploader.UploadResult
	err    error
}

func (f *fakeUploader) Upload(_ context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(file.(io.Reader))
	if err != nil {
		return nil, err
	}
	f.got = b
	f.params = params
	return f.result, nil
}

func TestCloudinaryStore_Upload(t *testing.T) {
	up := &fakeUploader{result: &uploader.UploadResult{
		PublicID:  "payment-screenshots/abc",
		SecureURL: "https://res.cloudinary.com/demo/image/upload/payment-screenshots/abc.png",
	}}
	s := &CloudinaryStore{upload: up, logger: zap.NewNop()}

	url, err := s.Upload(context.Background(), []byte("png-bytes"), "image/png", "payment-screenshots")
	require.NoError(t, err)

	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/payment-screenshots/abc.png", url)
	assert.Equal(t, []byte("png-bytes"), up.got)
	assert.Equal(t, "payment-screenshots", up.params.Folder)
}

func TestCloudinaryStore_UploadErrors(t *testing.T) {
	t.Run("Given a transport error When uploading Then it is wrapped", func(t *testing.T) {
		s := &CloudinaryStore{upload: &fakeUploader{err: errors.New("timeout")}, logger: zap.NewNop()}
		_, err := s.Upload(context.Background(), []byte("x"), "image/png", "f")
		assert.ErrorContains(t, err, "upload image: timeout")
	})

	t.Run("Given an empty url When uploading Then it fails", func(t *testing.T) {
		s := &CloudinaryStore{upload: &fakeUploader{result: &uploader.UploadResult{}}, logger: zap.NewNop()}
		_, err := s.Upload(context.Background(), []byte("x"), "image/png", "f")
		assert.Error(t, err)
	})
}

func TestNewCloudinaryStore_RequiresCredentials(t *testing.T) {
	_, err := NewCloudinaryStore("demo", "", "secret", zap.NewNop())
	assert.Error(t, err)
}
