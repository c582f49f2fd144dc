package types

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
)

// MIMEGeoCSS is the media type GeoServer's CSS extension registers for styles.
const MIMEGeoCSS = "application/vnd.geoserver.geocss+css"

// ------------------------------
// Core Domain Entities
// ------------------------------

// Connection identifies a GeoServer instance and the credentials used against
// its REST API. It is fixed once a client is built.
type Connection struct {
	BaseURL  string
	Username string
	Password string
}

// StyleRef is an entry of a styles listing.
type StyleRef struct {
	Name string `json:"name"`
	Href string `json:"href,omitempty"`
}

// ------------------------------
// Responses
// ------------------------------

// ListStylesResponse mirrors GET /rest/styles.json.
//
// GeoServer renders an empty listing as {"styles":""} rather than an empty
// object, so the inner value is decoded lazily.
type ListStylesResponse struct {
	Styles json.RawMessage `json:"styles"`
}

// Refs returns the style references contained in the listing.
func (r ListStylesResponse) Refs() ([]StyleRef, error) {
	raw := bytes.TrimSpace(r.Styles)
	if len(raw) == 0 || raw[0] != '{' {
		return []StyleRef{}, nil
	}
	var inner struct {
		Style []StyleRef `json:"style"`
	}
	if err := json.Unmarshal(raw, &inner); err != nil {
		return nil, err
	}
	if inner.Style == nil {
		return []StyleRef{}, nil
	}
	return inner.Style, nil
}

// EscapeName percent-encodes a style or workspace name for use in a URL path
// segment or query value. Spaces become %20.
func EscapeName(name string) string {
	return strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
}
