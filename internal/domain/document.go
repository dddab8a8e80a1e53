package domain

// Document is a rendered report body plus the metadata identifying it
// inside the conversation store.
type Document struct {
	Markdown string
	Metadata map[string]string
}
