package gateways

// DocumentParser parses structured descriptor documents
type DocumentParser interface {
	Parse(data []byte) (Document, error)
}

// Document is a parsed structured document
type Document interface {
	// RootName returns the local name of the root element
	RootName() string

	// Text returns the trimmed text of the first text node found at a
	// slash-separated path relative to the root element
	Text(path string) (string, bool)
}
