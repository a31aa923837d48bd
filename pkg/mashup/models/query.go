package models

// Query is one `shared` member of a Power Query section document.
type Query struct {
	// Name is the member identifier with any #"..." quoting removed.
	Name string `json:"name"`
	// FileName is the filesystem-safe name, including the .m suffix.
	FileName string `json:"file_name"`
	// Body is the member expression with surrounding whitespace trimmed.
	Body string `json:"body"`
}
