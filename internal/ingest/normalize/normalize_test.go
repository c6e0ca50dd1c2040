package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "https://www.govinfo.gov/bulkdata/BILLSTATUS/119/s/BILLSTATUS-119s115.xml"

func TestDecodeXML(t *testing.T) {
	t.Run("nested elements become records", func(t *testing.T) {
		rec, err := DecodeXML(strings.NewReader(
			`<billStatus><bill><title>A bill</title><congress>119</congress></bill></billStatus>`))
		require.NoError(t, err)

		status, ok := rec["billStatus"].(Record)
		require.True(t, ok)
		bill, ok := status["bill"].(Record)
		require.True(t, ok)
		assert.Equal(t, "A bill", bill["title"])
		assert.Equal(t, "119", bill["congress"])
	})

	t.Run("repeated siblings collect into a list", func(t *testing.T) {
		rec, err := DecodeXML(strings.NewReader(
			`<items><item>one</item><item>two</item><item>three</item></items>`))
		require.NoError(t, err)

		items, ok := rec["items"].(Record)
		require.True(t, ok)
		assert.Equal(t, []any{"one", "two", "three"}, items["item"])
	})

	t.Run("empty element decodes to nil", func(t *testing.T) {
		rec, err := DecodeXML(strings.NewReader(`<bill><cosponsors/></bill>`))
		require.NoError(t, err)

		bill, ok := rec["bill"].(Record)
		require.True(t, ok)
		value, present := bill["cosponsors"]
		assert.True(t, present)
		assert.Nil(t, value)
	})

	t.Run("attributes are discarded", func(t *testing.T) {
		rec, err := DecodeXML(strings.NewReader(`<bill type="S"><number>115</number></bill>`))
		require.NoError(t, err)

		bill, ok := rec["bill"].(Record)
		require.True(t, ok)
		assert.Equal(t, "115", bill["number"])
		assert.Len(t, bill, 1)
	})

	t.Run("no root element fails", func(t *testing.T) {
		_, err := DecodeXML(strings.NewReader("  "))
		assert.Error(t, err)
	})
}

func TestNormalize(t *testing.T) {
	contract := Contract{
		Entity:   "legislator",
		Required: []string{"firstName", "lastName"},
		Optional: []string{"district"},
	}

	t.Run("missing required fields fail with schema error", func(t *testing.T) {
		_, err := Normalize(Record{"firstName": "John"}, contract, testURL)
		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "legislator", schemaErr.Entity)
		assert.Equal(t, []string{"lastName"}, schemaErr.Missing)
	})

	t.Run("absent optional fields fill with nil", func(t *testing.T) {
		cleaned, err := Normalize(Record{"firstName": "John", "lastName": "Cornyn"}, contract, testURL)
		require.NoError(t, err)

		rec, ok := cleaned.(Record)
		require.True(t, ok)
		value, present := rec["district"]
		assert.True(t, present)
		assert.Nil(t, value)
	})

	t.Run("unknown fields are stripped", func(t *testing.T) {
		cleaned, err := Normalize(Record{
			"firstName": "John", "lastName": "Cornyn", "favoriteColor": "blue",
		}, contract, testURL)
		require.NoError(t, err)

		rec, ok := cleaned.(Record)
		require.True(t, ok)
		assert.NotContains(t, rec, "favoriteColor")
	})

	t.Run("string leaf passes through", func(t *testing.T) {
		cleaned, err := Normalize("Health", Contract{Entity: "subject", Required: []string{"name"}}, testURL)
		require.NoError(t, err)
		assert.Equal(t, "Health", cleaned)
	})
}

func TestNormalizeList(t *testing.T) {
	contract := Contract{Entity: "related bill", Required: []string{"type", "congress", "number"}}

	t.Run("one bad element aborts the list", func(t *testing.T) {
		_, err := NormalizeList([]any{
			Record{"type": "S", "congress": "119", "number": "115"},
			Record{"type": "HR"},
		}, contract, testURL)
		var schemaErr *SchemaError
		assert.ErrorAs(t, err, &schemaErr)
	})

	t.Run("clean list passes", func(t *testing.T) {
		cleaned, err := NormalizeList([]any{
			Record{"type": "S", "congress": "119", "number": "115"},
		}, contract, testURL)
		require.NoError(t, err)
		assert.Len(t, cleaned, 1)
	})
}

func TestDocValue(t *testing.T) {
	t.Run("missing optional subsection degrades to nil", func(t *testing.T) {
		doc := NewDoc(Record{"bill": Record{"title": "A bill"}}, testURL, nil)
		value, err := doc.Value("policyArea", "name")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("nil intermediate degrades to nil", func(t *testing.T) {
		doc := NewDoc(Record{"policyArea": nil}, testURL, nil)
		value, err := doc.Value("policyArea", "name")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("missing leaf is a schema error", func(t *testing.T) {
		doc := NewDoc(Record{"policyArea": Record{"code": "H"}}, testURL, nil)
		_, err := doc.Value("policyArea", "name")
		var schemaErr *SchemaError
		assert.ErrorAs(t, err, &schemaErr)
	})
}

func TestDocList(t *testing.T) {
	t.Run("item wrapper unwraps", func(t *testing.T) {
		doc := NewDoc(Record{"cosponsors": Record{"item": []any{"a", "b"}}}, testURL, nil)
		list, err := doc.List("cosponsors")
		require.NoError(t, err)
		assert.Equal(t, []any{"a", "b"}, list)
	})

	t.Run("collapsed single element coerces to one-element list", func(t *testing.T) {
		doc := NewDoc(Record{"sponsors": Record{"item": Record{"firstName": "JOHN"}}}, testURL, nil)
		list, err := doc.List("sponsors")
		require.NoError(t, err)
		require.Len(t, list, 1)
	})

	t.Run("empty subsection degrades to empty list", func(t *testing.T) {
		doc := NewDoc(Record{"cosponsors": nil}, testURL, nil)
		list, err := doc.List("cosponsors")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("absent subsection degrades to empty list", func(t *testing.T) {
		doc := NewDoc(Record{}, testURL, nil)
		list, err := doc.List("relatedBills", "item")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("empty item element degrades to empty list", func(t *testing.T) {
		doc := NewDoc(Record{"cosponsors": Record{"item": nil}}, testURL, nil)
		list, err := doc.List("cosponsors")
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestParseDate(t *testing.T) {
	t.Run("date layout", func(t *testing.T) {
		parsed, err := ParseDate("2017-01-12", DateLayout, "introducedDate", testURL)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2017, 1, 12, 0, 0, 0, 0, time.UTC), parsed)
	})

	t.Run("last modified layout", func(t *testing.T) {
		parsed, err := ParseDate("03-Feb-2025 14:30", LastModifiedLayout, "lastModifiedDate", testURL)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 2, 3, 14, 30, 0, 0, time.UTC), parsed)
	})

	t.Run("malformed date fails", func(t *testing.T) {
		_, err := ParseDate("01/12/2017", DateLayout, "introducedDate", testURL)
		assert.Error(t, err)
	})
}
