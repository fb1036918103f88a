package timeslot

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"9:00-10:00 AM", "09:00-10:00"},
		{"17:00-18:00", "17:00-18:00"},
		{"9-10", "09:00-10:00"},
		{"09:00-10:00", "09:00-10:00"},
		{"12:00 AM-1:00 AM", "00:00-01:00"},
		{"12:00 PM-1:00 PM", "12:00-13:00"},
		{"11:00 AM-12:00 PM", "11:00-12:00"},
		{"1 PM-2 PM", "13:00-14:00"},
		{" 9:30 - 10:30 ", "09:30-10:30"},
	}

	for _, tc := range cases {
		got, err := Normalize(tc.input)
		if err != nil {
			t.Fatalf("Normalize(%q): unexpected error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"9:00-10:00 AM", "17:00-18:00", "9-10", "12:00 AM-1:00 AM"}

	for _, input := range inputs {
		once, err := Normalize(input)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", input, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", once, err)
		}
		if once != twice {
			t.Errorf("normalize not idempotent: %q -> %q -> %q", input, once, twice)
		}
	}
}

func TestNormalizeRejectsInvalid(t *testing.T) {
	inputs := []string{
		"",
		"09:00",
		"10:00-09:00",
		"09:00-09:00",
		"25:00-26:00",
		"09:61-10:00",
		"13:00 PM-14:00",
		"abc-def",
	}

	for _, input := range inputs {
		if _, err := Normalize(input); err == nil {
			t.Errorf("Normalize(%q): expected error, got none", input)
		}
	}
}

func TestEquivalent(t *testing.T) {
	if !Equivalent("9:00-10:00 AM", "09:00-10:00") {
		t.Error("drifted formats of the same range should be equivalent")
	}
	if !Equivalent("5:00 PM-6:00 PM", "17:00-18:00") {
		t.Error("12-hour and 24-hour forms of the same range should be equivalent")
	}
	if Equivalent("09:00-10:00", "09:00-11:00") {
		t.Error("different ranges must not be equivalent")
	}
	if Equivalent("garbage", "09:00-10:00") {
		t.Error("unparseable input must not be equivalent to anything")
	}
}

func TestCatalog(t *testing.T) {
	catalog := Catalog()
	if len(catalog) != 23 {
		t.Fatalf("expected 23 catalog slots, got %d", len(catalog))
	}

	for i, slot := range catalog {
		if !slot.Start.Before(slot.End) {
			t.Errorf("catalog slot %d: start %s not before end %s", i, slot.Start, slot.End)
		}
		if i > 0 && !catalog[i-1].Start.Before(slot.Start) {
			t.Errorf("catalog not sorted at index %d", i)
		}
		if i > 0 && catalog[i-1].End != slot.Start {
			t.Errorf("catalog not contiguous at index %d", i)
		}
	}

	if catalog[0].Key() != "00:00-01:00" {
		t.Errorf("first catalog slot = %s", catalog[0].Key())
	}
	if catalog[22].Key() != "22:00-23:00" {
		t.Errorf("last catalog slot = %s", catalog[22].Key())
	}
}

func TestInCatalog(t *testing.T) {
	if !InCatalog("09:00-10:00") {
		t.Error("09:00-10:00 should be a catalog slot")
	}
	if !InCatalog("9:00-10:00 AM") {
		t.Error("drifted form of a catalog slot should match")
	}
	if InCatalog("09:30-10:30") {
		t.Error("off-grid range should not match the catalog")
	}
	if InCatalog("not-a-slot") {
		t.Error("unparseable input should not match the catalog")
	}
}
