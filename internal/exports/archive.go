package exports

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
)

// archiveEntry is one per-section file inside an archive export.
type archiveEntry struct {
	Key      enums.SectionKey
	Data     []byte
	Fallback bool
}

// renderArchiveEntries renders one document per section. A section whose
// render fails degrades to the deterministic placeholder in the same slot,
// so the entry list always has all nine sections. The returned error
// aggregates the per-section failures; it is for logging only and never
// reduces the entry count.
func renderArchiveEntries(ctx context.Context, renderer Renderer, kit *models.Kit) ([]archiveEntry, error) {
	keys := enums.AllSectionKeys()
	entries := make([]archiveEntry, 0, len(keys))
	var failures error

	for _, key := range keys {
		data, err := renderer.RenderPDF(ctx, BuildSectionDocument(kit, key))
		if err != nil {
			failures = multierr.Append(failures, fmt.Errorf("%s: %w", key, err))
			entries = append(entries, archiveEntry{
				Key:      key,
				Data:     placeholderPDF(key.Title(), "This document could not be rendered. Request the export again later."),
				Fallback: true,
			})
			continue
		}
		entries = append(entries, archiveEntry{Key: key, Data: data})
	}
	return entries, failures
}

// buildArchive zips the entries in the order given.
func buildArchive(entries []archiveEntry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, entry := range entries {
		w, err := zw.Create(archiveFileName(i, entry.Key))
		if err != nil {
			return nil, fmt.Errorf("create archive entry %s: %w", entry.Key, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil, fmt.Errorf("write archive entry %s: %w", entry.Key, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

func archiveFileName(index int, key enums.SectionKey) string {
	return fmt.Sprintf("%02d_%s.pdf", index+1, key)
}
