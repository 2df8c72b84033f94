// Package httpclient provides the outbound HTTP client used for all
// upstream provider calls (speech-to-text, chat completion).
//
// It supports Bearer/token/query-parameter authentication, multipart
// uploads, per-client timeouts, and classification of failures into typed
// errors (timeout, connection, status). Requests are attempted exactly
// once; radscribe deliberately has no retry layer.
package httpclient
