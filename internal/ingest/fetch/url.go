package fetch

import (
	"fmt"
	"strings"
)

// DefaultArchiveHost is the bulk-data archive served by govinfo.
const DefaultArchiveHost = "www.govinfo.gov"

// BillURL derives the canonical fetch URL for a bill. Related-bill references
// carry only (congress, type, number); this mapping is what lets a reference
// and a directly ingested document converge on the same Bill row.
func BillURL(host string, congress int, billType string, number int) string {
	t := strings.ToLower(billType)
	return fmt.Sprintf("https://%s/bulkdata/BILLSTATUS/%d/%s/BILLSTATUS-%d%s%d.xml", host, congress, t, congress, t, number)
}
