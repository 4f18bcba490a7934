package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type failingReader struct{ r io.Reader }

func (f failingReader) Read(p []byte) (int, error) {
	n, err := f.r.Read(p)
	if err == io.EOF {
		return n, errors.New("client went away")
	}
	return n, err
}

func TestGCSStoreAbortsFailedUpload(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"name":"partial"}`))
	}))
	defer srv.Close()

	store, err := newGCSStore(context.Background(), "imgs",
		option.WithEndpoint(srv.URL+"/storage/v1/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "lamp.png", failingReader{strings.NewReader("half an image")}, 100, "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client went away")
	assert.Zero(t, atomic.LoadInt32(&requests), "no object should be written")
}
