// Package server exposes the voice detection pipeline over HTTP.
//
// It is thin glue around a voicedetect.Detector: a gin engine with CORS,
// x-api-key authentication, a health endpoint, and the detection endpoint.
// All classification semantics live in the core packages; this layer only
// binds requests, maps error sentinels to status codes, and shapes the
// response envelopes.
package server
