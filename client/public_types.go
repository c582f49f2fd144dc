package client

import "github.com/dcfaria/GeoServer/client/internal/types"

// Public type aliases so SDK consumers can import only the client package.
type (
	Connection = types.Connection
	StyleRef   = types.StyleRef
	StyleError = types.StyleError
	ErrorKind  = types.Kind
)

const (
	// MIMEGeoCSS is the content type used for CSS style bodies.
	MIMEGeoCSS = types.MIMEGeoCSS

	KindValidation = types.KindValidation
	KindConflict   = types.KindConflict
	KindOperation  = types.KindOperation
)
