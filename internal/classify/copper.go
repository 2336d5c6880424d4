package classify

// CopperNotFound is the copper assay's label for an unmatched strip.
const CopperNotFound = "ไม่พบปริมาณไอออนทองแดงในน้ำ"

const (
	// CopperHazard is shown when a strip matches any copper concentration.
	CopperHazard = "อันตรายมาก!!"

	// CopperHazardReason follows CopperHazard on its own line.
	CopperHazardReason = "เนื่องจากเกณฑ์กำหนดของการพบทองแดงในน้ำ"
)

// copperEntries are filter-paper readings for copper ions in water, one minute
// after a sample drop on paper saturated with dragon fruit extract and pH 7 buffer.
var copperEntries = []TableEntry{
	{Hex: "C7D7C9", Label: "ปริมาณไอออนทองแดงในน้ำ มีความเข้มข้น 0.1M"},
	{Hex: "CED8CA", Label: "ปริมาณไอออนทองแดงในน้ำ มีความเข้มข้น 0.01M"},
	{Hex: "C9D3C4", Label: "ปริมาณไอออนทองแดงในน้ำ มีความเข้มข้น 0.05M"},
	{Hex: "B2BBA0", Label: "ปริมาณไอออนทองแดงในน้ำ มีความเข้มข้น 0.005M"},
	{Hex: "B0B496", Label: "ปริมาณไอออนทองแดงในน้ำ มีความเข้มข้น 0.001M"},
	{Hex: "CCCAB9", Label: "ปริมาณไอออนทองแดงในน้ำ มีความเข้มข้น 0.00001M"},
}

// DefaultCopperTable returns the built-in copper ion reference table.
func DefaultCopperTable() *ReferenceTable {
	t, err := NewReferenceTable("copper", CopperNotFound, copperEntries)
	if err != nil {
		panic("classify: built-in copper table is invalid: " + err.Error())
	}
	return t.WithHazardNotice(CopperHazard, CopperHazardReason)
}
