// Package server holds the HTTP server configuration used by the serve command.
//
// The server exposes the diff and classify operations over HTTP. Config carries
// the listen port, the optional API key and the limits applied to uploads.
package server
