package output

import (
	"strings"
	"testing"

	"github.com/bradland/pqmashup-go/pkg/mashup/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToJSON(t *testing.T) {
	info := &models.WorkbookInfo{
		BookName: "book.xlsx",
		Sheets:   []string{"Sheet1"},
		Mashup: &models.MashupInfo{
			Part:       "customXml/item1.xml",
			HeaderSize: 8,
			InnerSize:  512,
			Entries:    []string{"Formulas/Section1.m"},
			Queries:    []models.Query{{Name: "A", FileName: "A.m", Body: "1"}},
		},
	}

	data, err := ToJSON(info, false)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"book_name": "book.xlsx",
		"sheets": ["Sheet1"],
		"mashup": {
			"part": "customXml/item1.xml",
			"header_size": 8,
			"inner_size": 512,
			"entries": ["Formulas/Section1.m"],
			"queries": [{"name": "A", "file_name": "A.m", "body": "1"}]
		}
	}`, string(data))

	pretty, err := ToJSON(info, true)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(pretty), "\n  \"sheets\""))
}

func TestToJSONWithoutMashup(t *testing.T) {
	data, err := ToJSON(&models.WorkbookInfo{BookName: "plain.xlsx", Sheets: []string{"Sheet1"}}, false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"book_name": "plain.xlsx", "sheets": ["Sheet1"]}`, string(data))
}

func TestQueriesToJSONEmpty(t *testing.T) {
	data, err := QueriesToJSON(nil, false)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
