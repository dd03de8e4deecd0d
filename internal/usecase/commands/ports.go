package commands

import "context"

// MediaAsset is an evidence image as received from the transport
// layer.
type MediaAsset struct {
	Name        string
	ContentType string
	Content     []byte
}

// MediaStore uploads evidence images; the returned URL is opaque to
// the core.
type MediaStore interface {
	Upload(ctx context.Context, asset MediaAsset) (string, error)
}

// CodeGenerator mints the one-time handoff verification code at
// transaction creation.
type CodeGenerator interface {
	Generate() (string, error)
}
