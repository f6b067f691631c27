package table

// Canonical field keys produced by [Canonical].
const (
	FieldDeviceName     = "device_name"
	FieldRole           = "role"
	FieldInterfaceName  = "interface_name"
	FieldNetworkName    = "network_name"
	FieldVLAN           = "vlan"
	FieldNetworkIP      = "network_ip"
	FieldMask           = "mask"
	FieldDeviceIP       = "device_ip"
	FieldDefaultGateway = "default_gateway"
)

// columnMap maps spreadsheet headers (case-sensitive) to canonical keys.
var columnMap = map[string]string{
	"Name":            FieldDeviceName,
	"Role":            FieldRole,
	"Interface":       FieldInterfaceName,
	"Network":         FieldNetworkName,
	"VLAN":            FieldVLAN,
	"Network IP":      FieldNetworkIP,
	"Mask":            FieldMask,
	"Device IP":       FieldDeviceIP,
	"Default Gateway": FieldDefaultGateway,
}

// Columns returns the spreadsheet headers netdiag understands, in the order
// they usually appear in a lab table.
func Columns() []string {
	return []string{
		"Name", "Role", "Interface", "Network", "VLAN",
		"Network IP", "Mask", "Device IP", "Default Gateway",
	}
}

// Canonical maps a spreadsheet column header to its canonical field key.
// Unknown headers are returned unchanged.
func Canonical(column string) string {
	if key, ok := columnMap[column]; ok {
		return key
	}
	return column
}

// Canonicalize returns a copy of rec whose field keys are canonical.
// A known header takes precedence over an unknown column that already
// carries the canonical key name.
func Canonicalize(rec Record) Record {
	fields := make(map[string]string, len(rec.Fields))
	for k, v := range rec.Fields {
		if _, known := columnMap[k]; !known {
			fields[k] = v
		}
	}
	for k, v := range rec.Fields {
		if key, known := columnMap[k]; known {
			fields[key] = v
		}
	}
	return Record{Index: rec.Index, Fields: fields}
}

// CanonicalizeAll applies [Canonicalize] to every record, preserving order.
func CanonicalizeAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, rec := range records {
		out[i] = Canonicalize(rec)
	}
	return out
}
