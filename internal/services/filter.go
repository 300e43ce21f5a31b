package services

import "strings"

const (
	// PDFMimeType is the canonical content type for PDF uploads. It is also the
	// dispatcher's fallback when an upload arrives with no declared content type.
	PDFMimeType = "application/pdf"

	// imageMimeFamily matches any image/* upload (scans, photos of receipts).
	imageMimeFamily = "image"

	// resultSuffix is Document AI's sharding convention: only .json artifacts in
	// the output prefix are structured results, everything else is noise.
	resultSuffix = ".json"
)

// IsProcessableContentType reports whether a content type belongs to a document
// the extraction processor can handle. Pure predicate, no I/O.
func IsProcessableContentType(contentType string) bool {
	return contentType == PDFMimeType || strings.Contains(contentType, imageMimeFamily)
}

// NormalizeContentType applies the lenient upload default: objects with no
// declared content type are treated as PDFs, because most untagged uploads
// come from legacy scanners that skip the header. Eligible by default.
func NormalizeContentType(contentType string) string {
	if contentType == "" {
		return PDFMimeType
	}
	return contentType
}

// IsResultArtifact reports whether an output-bucket object name is a consumable
// structured result. Operation manifests and temp files do not match and must
// be skipped without error.
func IsResultArtifact(objectName string) bool {
	return strings.HasSuffix(objectName, resultSuffix)
}
