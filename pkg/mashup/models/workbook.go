package models

// WorkbookInfo summarizes a workbook and the Data Mashup it carries.
type WorkbookInfo struct {
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// Sheets lists worksheet names in workbook order.
	Sheets []string `json:"sheets"`
	// Mashup is nil when the workbook has no Data Mashup.
	Mashup *MashupInfo `json:"mashup,omitempty"`
}

// MashupInfo describes a located Data Mashup blob.
type MashupInfo struct {
	// Part is the OOXML entry holding the DataMashup element.
	Part string `json:"part"`
	// HeaderSize is the length of the opaque header in bytes.
	HeaderSize int `json:"header_size"`
	// InnerSize is the length of the inner package archive in bytes.
	InnerSize int `json:"inner_size"`
	// Entries lists the inner archive entry names in stream order.
	Entries []string `json:"entries"`
	// Queries contains the shared members of Formulas/Section1.m.
	Queries []Query `json:"queries,omitempty"`
}
