// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmtypes"
)

// ArtifactStore persists submitted result bytes under a content-addressed
// directory keyed content_cid[0:2]/content_cid, per spec.md §6.
type ArtifactStore struct {
	baseDir string
}

// NewArtifactStore roots the content-addressed directory at baseDir,
// creating it if necessary.
func NewArtifactStore(baseDir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("store: mkdir %s: %w", baseDir, err)
	}
	return &ArtifactStore{baseDir: baseDir}, nil
}

func (a *ArtifactStore) pathFor(contentCID string) (string, error) {
	if len(contentCID) < 2 {
		return "", fmt.Errorf("store: content_cid %q too short to shard", contentCID)
	}
	return filepath.Join(a.baseDir, contentCID[:2], contentCID), nil
}

// Put writes content under its content_cid after verifying the binding
// against the supplied hash, rejecting a mismatch rather than persisting
// a misnamed artifact.
func (a *ArtifactStore) Put(contentCID string, content []byte) error {
	if swarmtypes.ContentCID(content) != contentCID {
		return fmt.Errorf("store: content does not hash to content_cid %q", contentCID)
	}
	path, err := a.pathFor(contentCID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("store: mkdir for %s: %w", contentCID, err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("store: write %s: %w", contentCID, err)
	}
	return nil
}

// Get reads back the content stored under contentCID.
func (a *ArtifactStore) Get(contentCID string) ([]byte, error) {
	path, err := a.pathFor(contentCID)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", contentCID, err)
	}
	return b, nil
}

// Has reports whether contentCID is already persisted.
func (a *ArtifactStore) Has(contentCID string) bool {
	path, err := a.pathFor(contentCID)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
