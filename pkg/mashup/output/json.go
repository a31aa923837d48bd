// Package output serializes extraction results.
package output

import (
	"encoding/json"

	"github.com/bradland/pqmashup-go/pkg/mashup/models"
)

// ToJSON serializes a workbook summary to JSON.
func ToJSON(info *models.WorkbookInfo, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(info, "", "  ")
	}
	return json.Marshal(info)
}

// QueriesToJSON serializes a list of queries to JSON.
func QueriesToJSON(queries []models.Query, pretty bool) ([]byte, error) {
	if queries == nil {
		queries = []models.Query{}
	}
	if pretty {
		return json.MarshalIndent(queries, "", "  ")
	}
	return json.Marshal(queries)
}
