// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package searchdb

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/papers-archive/internal/layout"
	"github.com/pdiddy/papers-archive/pkg/types"
)

const exportLimit = 100000

// ExportYAML writes the matching documents to export.yaml next to the
// database and returns the file path.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) (string, error) {
	docs, err := s.exportDocuments(ctx, opts)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(docs)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(filepath.Dir(s.path), "export.yaml")
	return path, layout.WriteFile(path, data)
}

// ExportJSON writes the matching documents to export.json next to the
// database and returns the file path.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) (string, error) {
	docs, err := s.exportDocuments(ctx, opts)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	path := filepath.Join(filepath.Dir(s.path), "export.json")
	return path, layout.WriteFile(path, append(data, '\n'))
}

func (s *Store) exportDocuments(ctx context.Context, opts QueryOptions) ([]types.SearchDocument, error) {
	opts.MaxResults = exportLimit
	docs, err := s.Query(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if docs == nil {
		docs = []types.SearchDocument{}
	}
	return docs, nil
}
