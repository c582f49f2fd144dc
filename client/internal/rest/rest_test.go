package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gserrors "github.com/dcfaria/GeoServer/client/internal/errors"
	"github.com/dcfaria/GeoServer/client/internal/types"
)

type captured struct {
	method      string
	uri         string
	contentType string
	body        string
	user, pass  string
	authOK      bool
	requestID   string
}

func newTestServer(t *testing.T, status int, respBody string) (*httptest.Server, *[]captured) {
	t.Helper()
	var mu sync.Mutex
	var got []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		u, p, ok := r.BasicAuth()
		mu.Lock()
		got = append(got, captured{
			method:      r.Method,
			uri:         r.URL.RequestURI(),
			contentType: r.Header.Get("Content-Type"),
			body:        string(b),
			user:        u,
			pass:        p,
			authOK:      ok,
			requestID:   r.Header.Get(RequestIDHeader),
		})
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func newClient(srv *httptest.Server) *Client {
	return New(Config{
		Connection: types.Connection{BaseURL: srv.URL + "/", Username: "admin", Password: "geoserver"},
		HTTPClient: srv.Client(),
		Logger:     zerolog.Nop(),
	})
}

func TestPost_SendsBodyAuthAndContentType(t *testing.T) {
	t.Parallel()
	srv, got := newTestServer(t, http.StatusCreated, "")
	c := newClient(srv)

	out, err := c.Post(context.Background(), srv.URL+"/rest/styles?name=My%20Style&raw=true", "* { fill: red; }", types.MIMEGeoCSS)
	require.NoError(t, err)
	assert.Equal(t, "", out)

	require.Len(t, *got, 1)
	req := (*got)[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/rest/styles?name=My%20Style&raw=true", req.uri)
	assert.Equal(t, types.MIMEGeoCSS, req.contentType)
	assert.Equal(t, "* { fill: red; }", req.body)
	assert.True(t, req.authOK)
	assert.Equal(t, "admin", req.user)
	assert.Equal(t, "geoserver", req.pass)
	assert.NotEmpty(t, req.requestID)
}

func TestPut_ReturnsResponseBody(t *testing.T) {
	t.Parallel()
	srv, got := newTestServer(t, http.StatusOK, "roads")
	c := newClient(srv)

	out, err := c.Put(context.Background(), srv.URL+"/rest/styles/roads.css?raw=true", "x", types.MIMEGeoCSS)
	require.NoError(t, err)
	assert.Equal(t, "roads", out)
	assert.Equal(t, http.MethodPut, (*got)[0].method)
}

func TestSend_NonSuccessIsClassified(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t, http.StatusForbidden, "Style in use")
	c := newClient(srv)

	err := c.Delete(context.Background(), srv.URL+"/rest/styles/roads.css?purge=false&recurse=false")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, gserrors.StatusCode(err))
	assert.True(t, gserrors.IsIrrecoverable(err))
	assert.Contains(t, err.Error(), "Style in use")

	_, err = c.Post(context.Background(), srv.URL+"/rest/styles", "x", types.MIMEGeoCSS)
	require.Error(t, err)
}

func TestExists(t *testing.T) {
	t.Parallel()
	cases := []struct {
		status  int
		want    bool
		wantErr bool
	}{
		{http.StatusOK, true, false},
		{http.StatusNotFound, false, false},
		{http.StatusInternalServerError, false, true},
		{http.StatusUnauthorized, false, true},
	}
	for _, tc := range cases {
		srv, got := newTestServer(t, tc.status, "")
		c := newClient(srv)
		ok, err := c.Exists(context.Background(), "", "My Style")
		assert.Equal(t, tc.want, ok, "status %d", tc.status)
		assert.Equal(t, tc.wantErr, err != nil, "status %d", tc.status)
		assert.Equal(t, "/rest/styles/My%20Style.json", (*got)[0].uri)
	}
}

func TestExists_Workspace(t *testing.T) {
	t.Parallel()
	srv, got := newTestServer(t, http.StatusOK, "{}")
	c := newClient(srv)
	ok, err := c.Exists(context.Background(), "topp", "roads")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/rest/workspaces/topp/styles/roads.json", (*got)[0].uri)
}

type errRT struct{}

func (errRT) RoundTrip(*http.Request) (*http.Response, error) { return nil, errors.New("boom") }

func TestNetworkFailure(t *testing.T) {
	t.Parallel()
	var observed []int
	c := New(Config{
		Connection: types.Connection{BaseURL: "http://geoserver.invalid", Username: "u", Password: "p"},
		HTTPClient: &http.Client{Transport: errRT{}},
		Logger:     zerolog.Nop(),
		Observer:   func(_ string, code int, _ time.Duration) { observed = append(observed, code) },
	})
	_, err := c.Get(context.Background(), c.BaseURL()+"/rest/styles.json")
	require.Error(t, err)
	assert.Equal(t, 0, gserrors.StatusCode(err))
	assert.False(t, gserrors.IsIrrecoverable(err))
	assert.Equal(t, []int{0}, observed)
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()
	srv, got := newTestServer(t, http.StatusOK, "")
	c := newClient(srv)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Get(ctx, srv.URL+"/rest/styles.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, *got)
}

func TestBaseURLTrimmed(t *testing.T) {
	t.Parallel()
	c := New(Config{Connection: types.Connection{BaseURL: "http://gs:8080/geoserver/"}, Logger: zerolog.Nop()})
	assert.Equal(t, "http://gs:8080/geoserver", c.BaseURL())
}
