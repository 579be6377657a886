package main

import (
	"testing"

	"github.com/alteredgenome/kumareport/internal/models"
)

func testMonitors() []models.Monitor {
	return []models.Monitor{
		{ID: 10, Name: "web"},
		{ID: 11, Name: "api"},
		{ID: 12, Name: "db"},
	}
}

func TestParseSelection_All(t *testing.T) {
	got, err := parseSelection(testMonitors(), "all")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %d monitors, want 3", len(got))
	}
}

func TestParseSelection_List(t *testing.T) {
	got, err := parseSelection(testMonitors(), "1, 3")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(got) != 2 || got[0].Name != "web" || got[1].Name != "db" {
		t.Errorf("got %+v", got)
	}
}

func TestParseSelection_OutOfRange(t *testing.T) {
	if _, err := parseSelection(testMonitors(), "4"); err == nil {
		t.Error("out-of-range selection should fail")
	}
	if _, err := parseSelection(testMonitors(), "0"); err == nil {
		t.Error("zero selection should fail")
	}
}

func TestParseSelection_Garbage(t *testing.T) {
	if _, err := parseSelection(testMonitors(), "1,two"); err == nil {
		t.Error("non-numeric selection should fail")
	}
}
