package table

import "testing"

func TestCanonical(t *testing.T) {
	tests := []struct {
		column string
		want   string
	}{
		{"Name", FieldDeviceName},
		{"Role", FieldRole},
		{"Interface", FieldInterfaceName},
		{"Network", FieldNetworkName},
		{"VLAN", FieldVLAN},
		{"Network IP", FieldNetworkIP},
		{"Mask", FieldMask},
		{"Device IP", FieldDeviceIP},
		{"Default Gateway", FieldDefaultGateway},

		{"name", "name"},
		{"Comment", "Comment"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			if got := Canonical(tt.column); got != tt.want {
				t.Errorf("Canonical(%q) = %q, want %q", tt.column, got, tt.want)
			}
		})
	}
}

func TestColumnsAreCanonical(t *testing.T) {
	for _, c := range Columns() {
		if Canonical(c) == c {
			t.Errorf("Columns() lists %q which has no canonical mapping", c)
		}
	}
}

func TestCanonicalize(t *testing.T) {
	rec := Record{Index: 3, Fields: map[string]string{
		"Name":    "R1",
		"Role":    "Router",
		"Comment": "core",
	}}

	got := Canonicalize(rec)
	if got.Index != 3 {
		t.Errorf("Index = %d, want 3", got.Index)
	}
	if got.Get(FieldDeviceName) != "R1" || got.Get(FieldRole) != "Router" {
		t.Errorf("Fields = %v", got.Fields)
	}
	if got.Get("Comment") != "core" {
		t.Error("unknown columns should pass through")
	}
	if _, ok := rec.Fields[FieldDeviceName]; ok {
		t.Error("Canonicalize must not modify its input")
	}
}

func TestCanonicalize_KnownHeaderWins(t *testing.T) {
	rec := Record{Index: 1, Fields: map[string]string{
		"Name":        "R1",
		"device_name": "ignored",
	}}
	if got := Canonicalize(rec).Get(FieldDeviceName); got != "R1" {
		t.Errorf("device_name = %q, want R1", got)
	}
}

func TestCanonicalizeAll_PreservesOrder(t *testing.T) {
	records := []Record{
		{Index: 1, Fields: map[string]string{"Name": "a"}},
		{Index: 2, Fields: map[string]string{"Name": "b"}},
	}
	out := CanonicalizeAll(records)
	if out[0].Get(FieldDeviceName) != "a" || out[1].Get(FieldDeviceName) != "b" {
		t.Errorf("CanonicalizeAll() = %v", out)
	}
}
