// Package locator finds the roster table inside a PDF. Several extraction
// strategies are tried in phases and the widest candidate table wins.
package locator

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/tsawler/tabula/model"

	"github.com/FACorreiaa/shift-roster/pkg/storage"
)

// Document is the geometry of a loaded PDF, as consumed by the strategies.
type Document struct {
	Pages []Page
}

// Page holds one page's positioned text and vector graphics in PDF user
// space (origin bottom-left, Y grows upward).
type Page struct {
	// Number is 1-indexed.
	Number    int
	Width     float64
	Height    float64
	Fragments []model.TextFragment
	Lines     []model.Line
	// Grids are ruling-line grids: Rows are Y boundaries top to bottom,
	// Cols are X boundaries left to right.
	Grids []*model.TableGrid
}

// Loader parses raw PDF bytes into a Document.
type Loader interface {
	Load(ctx context.Context, pdf []byte) (*Document, error)
}

// Stager places bytes somewhere a path-based reader can open them.
type Stager interface {
	Upload(ctx context.Context, filename string, contentType string, r io.Reader) (*storage.FileInfo, error)
	Delete(ctx context.Context, fileID uuid.UUID) error
}
