// Package uploads abstracts where bootcamp photos end up. The disk store
// serves the default local setup; the GCS store backs cloud deployments.
package uploads

import (
	"context"
	"io"
)

// Store persists an uploaded file under the given name and returns the path
// or URL clients should use to fetch it.
type Store interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}
