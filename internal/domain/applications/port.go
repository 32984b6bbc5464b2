package applications

import (
	"context"
	"io"
)

// Repository port (interface untuk persistence)
type Repository interface {
	SaveApplication(ctx context.Context, a *Application) error
	GetApplication(ctx context.Context, id ApplicationID) (*Application, error)

	SaveDocument(ctx context.Context, d *Document) error
	ListDocuments(ctx context.Context, id ApplicationID) ([]*Document, error)

	AppendDecision(ctx context.Context, d *Decision) error
	// ListDecisions returns the full decision history in creation order.
	ListDecisions(ctx context.Context, id ApplicationID) ([]*Decision, error)
	// LatestDecision returns (nil, nil) when no decision has been run yet.
	LatestDecision(ctx context.Context, id ApplicationID) (*Decision, error)
}

// DocumentStore port (interface untuk penyimpanan raw upload)
type DocumentStore interface {
	Upload(ctx context.Context, key, contentType string, size int64, r io.Reader) (string, error)
}
