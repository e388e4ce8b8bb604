package object

import "fmt"

// VerifySummary reports the outcome of Store.Verify.
type VerifySummary struct {
	Blobs int
	Trees int
}

// Objects returns the total number of verified objects.
func (v *VerifySummary) Objects() int {
	return v.Blobs + v.Trees
}

// Verify re-hashes every stored object and parses every tree. The first
// failure is returned.
func (s *Store) Verify() (*VerifySummary, error) {
	if err := s.EnsureReady(); err != nil {
		return nil, err
	}

	hashes, err := s.backend.Hashes()
	if err != nil {
		return nil, err
	}

	report := &VerifySummary{}
	for _, h := range hashes {
		objType, payload, err := s.backend.Get(h)
		if err != nil {
			return nil, fmt.Errorf("verify %s: %w", h, err)
		}
		if actual := HashObject(objType, payload); actual != h {
			return nil, fmt.Errorf("verify %s: %w: hash mismatch (computed %s)", h, ErrCorrupt, actual)
		}
		switch objType {
		case TypeBlob:
			report.Blobs++
		case TypeTree:
			if _, err := UnmarshalTree(payload); err != nil {
				return nil, fmt.Errorf("verify %s: %w", h, err)
			}
			report.Trees++
		}
	}

	s.log.WithField("objects", report.Objects()).Debug("verified object store")
	return report, nil
}
