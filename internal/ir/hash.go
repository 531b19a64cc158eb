package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSnapshot   = "plusminus/snapshot/v1"
	DomainDefinition = "plusminus/definition/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SnapshotHash computes a content hash of a block's shape.
// Two blocks with the same type, ID, count and rows hash identically.
func SnapshotHash(s BlockSnapshot) (string, error) {
	canonical, err := MarshalCanonical(SnapshotMap(s))
	if err != nil {
		return "", fmt.Errorf("SnapshotHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

// DefinitionHash computes a content hash of a compiled block definition.
func DefinitionHash(def BlockDef) (string, error) {
	data, err := json.Marshal(def)
	if err != nil {
		return "", fmt.Errorf("DefinitionHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDefinition, data), nil
}
