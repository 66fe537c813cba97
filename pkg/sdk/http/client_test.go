package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes json with query params", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/questions", r.URL.Path)
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"totalPages":3}`)
		}))
		defer srv.Close()

		var out struct {
			TotalPages int `json:"totalPages"`
		}
		c := NewClient(srv.URL + "/")
		_, err := c.DoRequest(ctx, http.MethodGet, "/questions", &RequestOptions{Params: map[string]any{"page": 2}}, &out)
		require.NoError(t, err)
		assert.Equal(t, 3, out.TotalPages)
	})

	t.Run("non-2xx is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, `{"message":"down"}`)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).DoRequest(ctx, http.MethodDelete, "/questions/1", nil, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTransport))
		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	})

	t.Run("no retry on failure", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).DoRequest(ctx, http.MethodPost, "/questions", &RequestOptions{Multipart: true}, nil)
		require.Error(t, err)
		assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	})

	t.Run("multipart fields and files", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
				return
			}
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, []string{"a", "b"}, r.MultipartForm.Value["tag"])
			files := r.MultipartForm.File["answerLogos"]
			if assert.Len(t, files, 2) {
				assert.Equal(t, "one.png", files[0].Filename)
				assert.Equal(t, "two.png", files[1].Filename)
			}
			_, _ = io.WriteString(w, `{}`)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).DoRequest(ctx, http.MethodPut, "/questions", &RequestOptions{
			Form: url.Values{"tag": {"a", "b"}},
			Files: []File{
				{Param: "answerLogos", FileName: "one.png", ContentType: "image/png", Reader: strings.NewReader("1")},
				{Param: "answerLogos", FileName: "two.png", ContentType: "image/png", Reader: strings.NewReader("2")},
			},
		}, nil)
		require.NoError(t, err)
	})

	t.Run("canceled context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := NewClient(srv.URL).DoRequest(cctx, http.MethodGet, "/questions", nil, nil)
		require.Error(t, err)
		assert.True(t, IsCanceled(err))
		assert.True(t, errors.Is(err, ErrTransport))
	})
}
