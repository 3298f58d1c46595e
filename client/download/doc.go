// Package download streams HTTP response bodies to disk with optional
// checksum validation and progress reporting.
//
// [Write] copies the body straight into the destination path. It does
// not stage through a temp file, so a failed copy leaves whatever was
// received in place:
//
//	err := download.Write(ctx, resp.Body, resp.ContentLength, destPath, logger,
//		download.WithProgress(),
//	)
//
// Most callers should use [github.com/adamwoolhether/xhttp/client.Client.Download],
// which invokes Write internally and re-exports the download options
// as client.With* functions.
package download
