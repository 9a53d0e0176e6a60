package core

import (
	"errors"
	"testing"
	"time"
)

func TestPrepareFillsDefaults(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.FixedZone("BST", 3600))
	e, err := Prepare(Entry{Reference: "J-1", Filename: "Report - J-1.pdf", MainPages: 2}, func() time.Time { return fixed })
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if e.ID == "" || e.IssuedAt.Location() != time.UTC || !e.IssuedAt.Equal(fixed) {
		t.Fatalf("unexpected entry %+v", e)
	}
	kept, _ := Prepare(Entry{ID: "given", Reference: "J", Filename: "f", MainPages: 1}, time.Now)
	if kept.ID != "given" {
		t.Fatalf("explicit ID overwritten: %q", kept.ID)
	}
}

func TestValidate(t *testing.T) {
	cases := []Entry{
		{Filename: "f", MainPages: 1},
		{Reference: "r", MainPages: 1},
		{Reference: "r", Filename: "f"},
		{Reference: "r", Filename: "f", MainPages: 1, ExternalPages: -1},
	}
	for i, e := range cases {
		if err := e.Validate(); !errors.Is(err, ErrInvalidEntry) {
			t.Fatalf("case %d: expected invalid entry, got %v", i, err)
		}
	}
	ok := Entry{Reference: "r", Filename: "f", MainPages: 2, AppendixPages: 1, ExternalPages: 3}
	if err := ok.Validate(); err != nil || ok.TotalPages() != 6 {
		t.Fatalf("valid entry rejected: %v %d", err, ok.TotalPages())
	}
}
