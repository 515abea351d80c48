package b2files_test

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/b2files"
)

func newResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestCheckResponse(t *testing.T) {
	t.Run("success leaves body unread", func(t *testing.T) {
		resp := newResponse(http.StatusOK, `{"fileId":"a"}`)
		require.NoError(t, b2files.CheckResponse(resp))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"fileId":"a"}`, string(body))
	})

	t.Run("structured service error copied verbatim", func(t *testing.T) {
		resp := newResponse(http.StatusBadRequest, `{"status":400,"code":"bad_request","message":"bucketId not valid"}`)
		err := b2files.CheckResponse(resp)

		var svcErr *b2files.ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 400, svcErr.Status)
		assert.Equal(t, "bad_request", svcErr.Code)
		assert.Equal(t, "bucketId not valid", svcErr.Message)
		assert.ErrorIs(t, err, b2files.ErrBadRequest)
	})

	t.Run("expired token matches sentinel", func(t *testing.T) {
		resp := newResponse(http.StatusUnauthorized, `{"status":401,"code":"expired_auth_token","message":"expired"}`)
		err := b2files.CheckResponse(resp)

		assert.ErrorIs(t, err, b2files.ErrExpiredToken)
		assert.ErrorIs(t, err, b2files.ErrUnauthorized)
		assert.NotErrorIs(t, err, b2files.ErrForbidden)
	})

	t.Run("body status kept even if http status differs", func(t *testing.T) {
		resp := newResponse(http.StatusServiceUnavailable, `{"status":503,"code":"service_unavailable","message":"busy"}`)
		var svcErr *b2files.ServiceError
		require.ErrorAs(t, b2files.CheckResponse(resp), &svcErr)
		assert.Equal(t, 503, svcErr.Status)
	})

	t.Run("unstructured error body", func(t *testing.T) {
		resp := newResponse(http.StatusBadGateway, "<html>bad gateway</html>\n")
		var svcErr *b2files.ServiceError
		require.ErrorAs(t, b2files.CheckResponse(resp), &svcErr)
		assert.Equal(t, http.StatusBadGateway, svcErr.Status)
		assert.Equal(t, "unknown", svcErr.Code)
		assert.Equal(t, "<html>bad gateway</html>", svcErr.Message)
	})

	t.Run("missing code keeps parsed status and message", func(t *testing.T) {
		resp := newResponse(http.StatusBadRequest, `{"status":400,"message":"fileName too long"}`)
		var svcErr *b2files.ServiceError
		require.ErrorAs(t, b2files.CheckResponse(resp), &svcErr)
		assert.Equal(t, http.StatusBadRequest, svcErr.Status)
		assert.Equal(t, b2files.UnknownErrorCode, svcErr.Code)
		assert.Equal(t, "fileName too long", svcErr.Message)
		assert.ErrorIs(t, svcErr, b2files.ErrBadRequest)
	})

	t.Run("empty json object is unstructured", func(t *testing.T) {
		resp := newResponse(http.StatusInternalServerError, `{}`)
		var svcErr *b2files.ServiceError
		require.ErrorAs(t, b2files.CheckResponse(resp), &svcErr)
		assert.Equal(t, http.StatusInternalServerError, svcErr.Status)
		assert.Equal(t, b2files.UnknownErrorCode, svcErr.Code)
		assert.Equal(t, "{}", svcErr.Message)
	})

	t.Run("missing status in body falls back to http status", func(t *testing.T) {
		resp := newResponse(http.StatusNotFound, `{"code":"not_found","message":"nope"}`)
		assert.ErrorIs(t, b2files.CheckResponse(resp), b2files.ErrNotFound)
	})
}

func TestDecodeJSON(t *testing.T) {
	t.Run("decodes body", func(t *testing.T) {
		var rec b2files.FileRecord
		require.NoError(t, b2files.DecodeJSON(newResponse(http.StatusOK, `{"fileId":"a","fileName":"x"}`), &rec))
		assert.Equal(t, "a", rec.FileID)
	})

	t.Run("malformed body is not a service error", func(t *testing.T) {
		var rec b2files.FileRecord
		err := b2files.DecodeJSON(newResponse(http.StatusOK, `not json`), &rec)

		assert.ErrorIs(t, err, b2files.ErrMalformedResponse)
		var svcErr *b2files.ServiceError
		assert.False(t, errors.As(err, &svcErr))

		var malformed *b2files.MalformedResponseError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "not json", malformed.Body)
	})

	t.Run("wrong shape", func(t *testing.T) {
		var page b2files.FileListPage
		err := b2files.DecodeJSON(newResponse(http.StatusOK, `{"files":"nope"}`), &page)
		assert.ErrorIs(t, err, b2files.ErrMalformedResponse)
	})
}
