package uploads

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	key string
	ttl time.Duration
	err error
}

func (f *fakePresigner) PresignPut(_ context.Context, key string, ttl time.Duration) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	f.key, f.ttl = key, ttl
	return "https://s3.test/images/" + key + "?sig=1", "https://s3.test/images/" + key, nil
}

func TestGetSignedUploadURL(t *testing.T) {
	p := &fakePresigner{}
	svc := &Service{Presigner: p, TTL: 5 * time.Minute}

	res, err := svc.GetSignedUploadURL(context.Background(), Request{FileName: "Porch.PNG", FileType: "image/png"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Key, "listings/"))
	assert.True(t, strings.HasSuffix(res.Key, ".png"))
	assert.Equal(t, p.key, res.Key)
	assert.Equal(t, 5*time.Minute, p.ttl)
	assert.Contains(t, res.URL, "sig=1")
	assert.Equal(t, "https://s3.test/images/"+res.Key, res.PublicURL)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), res.ExpiresAt, time.Minute)
}

func TestGetSignedUploadURL_DefaultTTL(t *testing.T) {
	p := &fakePresigner{}
	svc := &Service{Presigner: p}
	_, err := svc.GetSignedUploadURL(context.Background(), Request{FileName: "a.jpg", FileType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, p.ttl)
}

func TestGetSignedUploadURL_Errors(t *testing.T) {
	ctx := context.Background()
	svc := &Service{Presigner: &fakePresigner{}}

	_, err := svc.GetSignedUploadURL(ctx, Request{FileName: "a.jpg"})
	assert.ErrorIs(t, err, ErrFileInfoRequired)

	_, err = svc.GetSignedUploadURL(ctx, Request{FileName: "a.pdf", FileType: "application/pdf"})
	assert.ErrorIs(t, err, ErrNotAnImage)

	local := &Service{}
	_, err = local.GetSignedUploadURL(ctx, Request{FileName: "a.jpg", FileType: "image/jpeg"})
	assert.ErrorIs(t, err, ErrUnsupported)

	failing := &Service{Presigner: &fakePresigner{err: errors.New("denied")}}
	_, err = failing.GetSignedUploadURL(ctx, Request{FileName: "a.jpg", FileType: "image/jpeg"})
	assert.ErrorContains(t, err, "denied")
}
