package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"trackdechets/internal/pdf"
	"trackdechets/internal/storage"
)

// hashMetaKey holds the hash of the document a cached PDF was printed from.
const hashMetaKey = "Content-Hash"

// PDFStream is an open printed document.
type PDFStream struct {
	Filename string
	Size     int64
	Body     io.ReadCloser
}

func pdfKey(id string) string { return "pdf/" + id + ".pdf" }

func (s *bsdService[T, PT]) PDF(ctx context.Context, id string) (*PDFResult, error) {
	doc, _, err := s.loadAuthorized(ctx, id)
	if err != nil {
		return nil, err
	}
	key, cached, err := s.ensurePDF(ctx, doc)
	if err != nil {
		return nil, err
	}
	link, err := s.d.Store.PresignGet(ctx, key, s.d.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign pdf: %w", err)
	}
	return &PDFResult{DownloadLink: link, Cached: cached}, nil
}

func (s *bsdService[T, PT]) OpenPDF(ctx context.Context, id string) (*PDFStream, error) {
	doc, _, err := s.loadAuthorized(ctx, id)
	if err != nil {
		return nil, err
	}
	key, _, err := s.ensurePDF(ctx, doc)
	if err != nil {
		return nil, err
	}
	body, info, err := s.d.Store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return &PDFStream{Filename: id + ".pdf", Size: info.Size, Body: body}, nil
}

// ensurePDF makes sure the cache holds a PDF printed from the current state of doc.
func (s *bsdService[T, PT]) ensurePDF(ctx context.Context, doc PT) (key string, cached bool, err error) {
	if s.d.Store == nil || s.d.Renderer == nil {
		return "", false, ErrPDFUnavailable
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", false, err
	}
	sum := blake3.Sum256(raw)
	hash := hex.EncodeToString(sum[:])
	id := doc.Header().ID
	key = pdfKey(id)

	info, err := s.d.Store.Stat(ctx, key)
	switch {
	case err == nil && info.MetaValue(hashMetaKey) == hash:
		s.d.Metrics.PDFRendered(s.kind, true)
		return key, true, nil
	case err != nil && !errors.Is(err, storage.ErrObjectNotFound):
		return "", false, fmt.Errorf("stat pdf: %w", err)
	}

	b, err := s.render(ctx, doc)
	if err != nil {
		return "", false, err
	}
	if _, err := s.d.Store.Put(ctx, key, bytes.NewReader(b), storage.PutObjectOptions{
		Size:        int64(len(b)),
		ContentType: "application/pdf",
		Metadata:    map[string]string{hashMetaKey: hash},
	}); err != nil {
		return "", false, fmt.Errorf("store pdf: %w", err)
	}
	s.d.Metrics.PDFRendered(s.kind, false)
	s.log.Info("pdf_rendered", zap.String("bsd_id", id), zap.Int("size", len(b)))
	return key, false, nil
}

func (s *bsdService[T, PT]) render(ctx context.Context, doc PT) ([]byte, error) {
	data, err := pdf.BuildData(doc, s.validator, s.d.now())
	if err != nil {
		return nil, err
	}
	b, err := s.d.Renderer.Render(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return b, nil
}
