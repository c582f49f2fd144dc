package client

import (
	"bytes"
	"net/http"
	"net/http/httputil"
	"os"

	"github.com/rs/zerolog"
)

// debugTransport logs each request/response pair at debug level.
//
// Enable with WithDebugLogging(true) or by exporting GEOSERVER_DEBUG=true
// (DEBUG=true also works). An explicit WithDebugLogging wins over the
// environment. Bodies are dumped as-is, so CSS payloads and
// GeoServer error pages end up in the logs; the Authorization header is
// redacted.
type debugTransport struct {
	base http.RoundTripper
	log  zerolog.Logger
}

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := dt.base
	if base == nil {
		base = http.DefaultTransport
	}

	if reqDump, err := httputil.DumpRequestOut(req, true); err == nil {
		dt.log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", string(redactAuthorization(reqDump))).Msg("HTTP request")
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		dt.log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, err
	}

	if respDump, err := httputil.DumpResponse(resp, true); err == nil {
		dt.log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Str("response_dump", string(respDump)).Msg("HTTP response")
	}
	return resp, nil
}

var authorizationPrefix = []byte("authorization:")

// redactAuthorization blanks the credentials of any Authorization header line.
func redactAuthorization(dump []byte) []byte {
	lines := bytes.Split(dump, []byte("\r\n"))
	for i, line := range lines {
		if len(line) >= len(authorizationPrefix) && bytes.EqualFold(line[:len(authorizationPrefix)], authorizationPrefix) {
			lines[i] = []byte("Authorization: [REDACTED]")
		}
	}
	return bytes.Join(lines, []byte("\r\n"))
}

// debugLoggingRequested reports whether GEOSERVER_DEBUG or DEBUG is "true".
func debugLoggingRequested() bool {
	return os.Getenv("GEOSERVER_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}
