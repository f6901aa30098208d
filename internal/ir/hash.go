package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix enables future
// algorithm migration without ambiguity.
const (
	DomainSource   = "moonsmith/source/v1"
	DomainDocument = "moonsmith/document/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents domain/data
// boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SourceHash computes the content hash of a source text. It keys the
// artifact cache and is recorded in document metadata.
func SourceHash(src string) string {
	return hashWithDomain(DomainSource, []byte(src))
}

// DocumentHash computes the identity hash of a document over its canonical
// JSON with volatile metadata stripped. Two runs over identical input
// produce identical hashes.
func DocumentHash(d *Document) (string, error) {
	stripped := *d
	meta := stripped.Module.Metadata
	meta.Volatile = nil
	stripped.Module.Metadata = meta

	canonical, err := MarshalCanonical(&stripped)
	if err != nil {
		return "", fmt.Errorf("DocumentHash: %w", err)
	}
	return hashWithDomain(DomainDocument, canonical), nil
}
