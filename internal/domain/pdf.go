package domain

import (
	"context"
	"strings"
)

const (
	// ContentTypePDF is the media type of every pipeline result.
	ContentTypePDF = "application/pdf"

	// Well-known parameter names accepted by the PDF operations.
	ParamPassword      = "password"
	ParamOwnerPassword = "owner_password"
	ParamAngle         = "angle"
	ParamPages         = "pages"
)

// Upload is the raw file submitted by a caller. It is not persisted beyond
// the request that received it.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Empty reports whether the upload carries no content.
func (u *Upload) Empty() bool {
	return u == nil || len(u.Data) == 0
}

// Params holds operation-specific scalar values (password, angle, ...).
type Params map[string]string

// Get returns the trimmed value for key.
func (p Params) Get(key string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p[key])
}

// Raw returns the value for key exactly as the caller supplied it. Secrets
// such as passwords must be read with Raw; surrounding spaces are significant.
func (p Params) Raw(key string) string {
	if p == nil {
		return ""
	}
	return p[key]
}

// Has reports whether key has a non-blank value.
func (p Params) Has(key string) bool {
	return p.Get(key) != ""
}

// Transformer is an opaque capability that reads inputPath and writes its
// result to outputPath. Implementations must not create other files next to
// the two paths.
type Transformer interface {
	Transform(ctx context.Context, inputPath, outputPath string, params Params) error
}

// TransformerFunc adapts a plain function to the Transformer interface.
type TransformerFunc func(ctx context.Context, inputPath, outputPath string, params Params) error

// Transform calls f.
func (f TransformerFunc) Transform(ctx context.Context, inputPath, outputPath string, params Params) error {
	return f(ctx, inputPath, outputPath, params)
}

// Operation describes a named server-side PDF operation.
type Operation struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	RequiredParams []string `json:"required_params"`
	OptionalParams []string `json:"optional_params,omitempty"`

	// OutputPrefix is prepended to the original filename of the result.
	OutputPrefix string `json:"-"`

	// Validate runs after presence checks and before any filesystem access.
	Validate func(params Params) *ValidationError `json:"-"`

	Transformer Transformer `json:"-"`
}

// Result is the successful outcome of one pipeline invocation.
type Result struct {
	Data        []byte
	Filename    string
	ContentType string

	// CleanupErr is set when the scratch workspace could not be removed.
	// It is diagnostic only.
	CleanupErr error
}
