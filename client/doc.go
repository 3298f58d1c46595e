// Package client is a best-effort, synchronous HTTP client. Every call
// shape (query, post, form post, download, upload, hard-timeout query)
// runs through one execution path and returns a [Result]; calls never
// panic and never return a separate error.
//
// # Building a Client
//
// Use [Build] with a [Config] and functional options:
//
//	c, err := client.Build(client.DefaultConfig(),
//		client.WithUserAgent("myapp/1.0"),
//		client.WithLogger(logger),
//	)
//
// # Making Calls
//
//	res := c.Query(ctx, client.MethodPost, "https://api.example.com/login", false,
//		client.WithParams(map[string]string{"user": "alice"}),
//		client.WithBasicAuth("alice", "secret"),
//	)
//	if res.Err != nil {
//		// res.StatusCode is Config.DefaultStatusCode here.
//	}
//
// # Timeouts
//
// Connect, socket and connection request timeouts come from [Config]
// and apply to every call. [Client.QueryWithTimeout] adds a hard
// wall-clock deadline that aborts the call, body read included.
//
// # Downloading Files
//
// Stream a response body straight to disk with optional checksum
// verification and progress reporting:
//
//	res := c.Download(ctx, url, "/tmp/file.bin",
//		client.WithChecksum(sha256.New(), expectedHex),
//		client.WithProgress(),
//	)
//
// For lower-level control see the
// [github.com/adamwoolhether/xhttp/client/download] package.
package client
