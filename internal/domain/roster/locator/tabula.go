package locator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/graphicsstate"
	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/pages"
	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/tables"
	"github.com/tsawler/tabula/text"
)

// ErrEmptyDocument is returned when there are no bytes to parse.
var ErrEmptyDocument = errors.New("empty document")

// TabulaLoader reads PDFs with the tabula engine. The engine opens files by
// path, so the upload is staged first and removed afterwards.
type TabulaLoader struct {
	stager Stager
	logger *slog.Logger
}

// NewTabulaLoader creates a loader that stages uploads through stager.
func NewTabulaLoader(stager Stager, logger *slog.Logger) *TabulaLoader {
	return &TabulaLoader{stager: stager, logger: logger}
}

// Load parses every page. A page whose content cannot be decoded is logged and
// skipped; engine panics are returned as errors.
func (l *TabulaLoader) Load(ctx context.Context, pdf []byte) (doc *Document, err error) {
	if len(pdf) == 0 {
		return nil, ErrEmptyDocument
	}

	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("pdf engine panic: %v", r)
		}
	}()

	info, err := l.stager.Upload(ctx, "roster.pdf", "application/pdf", bytes.NewReader(pdf))
	if err != nil {
		return nil, fmt.Errorf("failed to stage document: %w", err)
	}
	defer func() {
		if delErr := l.stager.Delete(context.WithoutCancel(ctx), info.ID); delErr != nil {
			l.logger.Warn("failed to remove staged document",
				slog.String("file_id", info.ID.String()),
				slog.Any("error", delErr),
			)
		}
	}()

	r, err := reader.Open(info.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer r.Close()

	count, err := r.PageCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}

	doc = &Document{Pages: make([]Page, 0, count)}
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := l.loadPage(r, i)
		if err != nil {
			l.logger.Warn("skipping unreadable page",
				slog.Int("page", i+1),
				slog.Any("error", err),
			)
			continue
		}
		doc.Pages = append(doc.Pages, page)
	}

	return doc, nil
}

func (l *TabulaLoader) loadPage(r *reader.Reader, index int) (Page, error) {
	p, err := r.GetPage(index)
	if err != nil {
		return Page{}, fmt.Errorf("failed to get page: %w", err)
	}

	width, err := p.Width()
	if err != nil {
		return Page{}, fmt.Errorf("failed to read page size: %w", err)
	}
	height, err := p.Height()
	if err != nil {
		return Page{}, fmt.Errorf("failed to read page size: %w", err)
	}

	fragments, err := r.ExtractTextFragments(p)
	if err != nil {
		return Page{}, fmt.Errorf("failed to extract text: %w", err)
	}

	page := Page{
		Number:    index + 1,
		Width:     width,
		Height:    height,
		Fragments: toModelFragments(fragments),
	}

	data, err := contentBytes(p)
	if err != nil {
		return Page{}, err
	}
	if len(data) == 0 {
		return page, nil
	}

	ge := graphicsstate.NewGraphicsExtractor()
	if err := ge.ExtractFromBytes(data); err != nil {
		// Text is still usable without ruling lines.
		l.logger.Debug("failed to extract page graphics",
			slog.Int("page", page.Number),
			slog.Any("error", err),
		)
		return page, nil
	}

	page.Lines = append(ge.ToModelLines(), ge.ToModelRectangles()...)
	for _, h := range tables.DetectGrids(ge).Hypotheses {
		page.Grids = append(page.Grids, h.ToTableGrid())
	}

	return page, nil
}

func contentBytes(p *pages.Page) ([]byte, error) {
	contents, err := p.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read contents: %w", err)
	}

	var data []byte
	for _, obj := range contents {
		stream, ok := obj.(*core.Stream)
		if !ok {
			continue
		}
		decoded, err := stream.Decode()
		if err != nil {
			return nil, fmt.Errorf("failed to decode content stream: %w", err)
		}
		data = append(data, decoded...)
		data = append(data, '\n')
	}
	return data, nil
}

func toModelFragments(fragments []text.TextFragment) []model.TextFragment {
	out := make([]model.TextFragment, len(fragments))
	for i, f := range fragments {
		out[i] = model.TextFragment{
			Text:     f.Text,
			BBox:     model.BBox{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height},
			FontSize: f.FontSize,
			FontName: f.FontName,
		}
	}
	return out
}
