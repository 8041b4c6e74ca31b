package domain

import (
	"context"
	"io"
)

// ReferenceKind identifies one of the fixed reference documents attached to
// every conversation for domain grounding.
type ReferenceKind string

const (
	ReferenceRatingSchedule ReferenceKind = "rating-schedule"
	ReferenceBenefitsChart  ReferenceKind = "benefits-chart"
)

// MIMETypePDF is the only content type the pipeline accepts.
const MIMETypePDF = "application/pdf"

// RemoteHandle is the opaque identifier the inference service returns for an
// uploaded document. It is reusable across messages without re-sending bytes.
type RemoteHandle struct {
	ID       string `json:"id"`
	URI      string `json:"uri"`
	MIMEType string `json:"mime_type"`
}

// IsZero reports whether the handle references nothing.
func (h RemoteHandle) IsZero() bool {
	return h.URI == "" && h.ID == ""
}

// Document is a PDF known to the pipeline, local or already uploaded.
type Document struct {
	LocalID     string       `json:"local_id"`
	DisplayName string       `json:"display_name"`
	MIMEType    string       `json:"mime_type"`
	Remote      RemoteHandle `json:"remote,omitempty"`
}

// UploadOptions carries per-upload metadata for the remote store.
type UploadOptions struct {
	DisplayName string
	MIMEType    string
}

// DocumentStore uploads binary documents to the remote inference service.
// A single call is one attempt; retry policy belongs to the caller.
type DocumentStore interface {
	Upload(ctx context.Context, r io.Reader, opts UploadOptions) (RemoteHandle, error)
}
