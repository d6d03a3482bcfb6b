package extract

import (
	"net/http"
	"path/filepath"
	"strings"
)

// extensionTypes maps well-known file extensions to MIME types. Extension
// wins over content sniffing because sniffing cannot distinguish the
// zip-based office formats or markdown from plain text.
var extensionTypes = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".log":  "text/plain",
	".html": "text/html",
	".htm":  "text/html",
	".xml":  "application/xml",
	".json": "application/json",
	".rtf":  "application/rtf",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".odt":  "application/vnd.oasis.opendocument.text",
}

// DetectContentType determines the MIME type of uploaded bytes, preferring
// the filename extension and falling back to content sniffing.
func DetectContentType(data []byte, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if mime, ok := extensionTypes[ext]; ok {
		return mime
	}

	sniffed := http.DetectContentType(data)
	// Strip the charset parameter http.DetectContentType appends
	if idx := strings.Index(sniffed, ";"); idx >= 0 {
		sniffed = sniffed[:idx]
	}
	return strings.TrimSpace(sniffed)
}

// IsSupportedType reports whether the pipeline accepts documents of the given
// MIME type. Only text, PDF, RTF, XML and office-document families are
// processed.
func IsSupportedType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}

	if strings.HasPrefix(ct, "text/") {
		return true
	}
	switch ct {
	case "application/pdf", "application/rtf", "application/xml", "application/json",
		"application/msword", "application/vnd.ms-excel", "application/vnd.ms-powerpoint":
		return true
	}
	return strings.HasPrefix(ct, "application/vnd.openxmlformats-officedocument.") ||
		strings.HasPrefix(ct, "application/vnd.oasis.opendocument.")
}
