// Package table reads spreadsheet exports into ordered raw records.
//
// A table is a delimited text file whose first row is a header. Every later
// row becomes a [Record] keyed by header name, numbered from 1 in file order.
// Header names are spreadsheet-specific ("Device IP", "Default Gateway"), so
// the package also provides [Canonical], which maps them onto the fixed set
// of field keys the topology resolver understands.
//
// # Reading
//
//	records, err := table.ReadFile("data/input/table.csv", ',')
//	if err != nil {
//	    return err // INPUT error: missing file or header
//	}
//	for _, rec := range table.CanonicalizeAll(records) {
//	    fmt.Println(rec.Index, rec.Get(table.FieldDeviceName))
//	}
//
// For streaming use, [Open] returns a [Reader] whose Next method yields one
// record at a time and returns io.EOF at the end. Re-opening the file
// restarts the sequence.
package table
