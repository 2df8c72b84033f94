// Package report turns a raw dictation transcript into a structured
// radiology report via a chat-completion API.
//
// The formatter is deliberately literal: a fixed system prompt, low
// temperature, one upstream call, and the model's output returned
// verbatim. There is no retry and no post-validation of the generated
// structure.
package report
