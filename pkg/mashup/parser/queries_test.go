package parser

import (
	"testing"

	"github.com/bradland/pqmashup-go/pkg/mashup/models"
	"github.com/stretchr/testify/assert"
)

func TestSplitQueries(t *testing.T) {
	tests := []struct {
		name     string
		section  string
		expected []models.Query
	}{
		{
			name:    "bare and quoted names",
			section: `shared A = 1+1; shared #"B C" = foo();`,
			expected: []models.Query{
				{Name: "A", FileName: "A.m", Body: "1+1"},
				{Name: "B C", FileName: "B_C.m", Body: "foo()"},
			},
		},
		{
			name: "section document",
			section: "section Section1;\r\n\r\nshared Sales = let\r\n    Source = Excel.CurrentWorkbook(){[Name=\"Sales\"]}[Content],\r\n" +
				"    Typed = Table.TransformColumnTypes(Source, {{\"Amount\", type number}})\r\nin\r\n    Typed;\r\n\r\n" +
				"shared #\"Top/Customers\" = let x = 1; y = 2 in x;\r\n",
			expected: []models.Query{
				{
					Name:     "Sales",
					FileName: "Sales.m",
					Body: "let\r\n    Source = Excel.CurrentWorkbook(){[Name=\"Sales\"]}[Content],\r\n" +
						"    Typed = Table.TransformColumnTypes(Source, {{\"Amount\", type number}})\r\nin\r\n    Typed",
				},
				{Name: "Top/Customers", FileName: "Top_Customers.m", Body: "let x = 1; y = 2 in x"},
			},
		},
		{
			name:    "byte order mark",
			section: "\uFEFFshared Q = 42;",
			expected: []models.Query{
				{Name: "Q", FileName: "Q.m", Body: "42"},
			},
		},
		{
			name:    "semicolon before shared text inside a body",
			section: `shared A = "x;shared"; shared B = 2;`,
			expected: []models.Query{
				{Name: "A", FileName: "A.m", Body: `"x`},
				{Name: "B", FileName: "B.m", Body: "2"},
			},
		},
		{
			name:     "no shared members",
			section:  "section Section1;\n",
			expected: nil,
		},
		{
			name:     "empty",
			section:  "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitQueries(tt.section))
		})
	}
}

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Query1", "Query1.m"},
		{"B C", "B_C.m"},
		{"fx.Clean-Up_2", "fx.Clean-Up_2.m"},
		{`a\b:c*d?`, "a_b_c_d_.m"},
		{"Café", "Caf_.m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SafeFileName(tt.name), tt.name)
	}
}
