package service

import (
	"context"

	"github.com/godilite/review-server/internal/repository/models"
)

// ReviewStore is the remote document store behind the aggregator. Create
// appends one record and returns the key the store assigned; List returns
// every record under the collection keyed by id.
type ReviewStore interface {
	Create(ctx context.Context, doc models.ReviewDocument) (string, error)
	List(ctx context.Context) (map[string]models.ReviewDocument, error)
}

// Renderer is the display boundary. It receives a consistent snapshot after
// every mutating operation.
type Renderer interface {
	Render(view View)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(view View)

func (f RendererFunc) Render(view View) { f(view) }
