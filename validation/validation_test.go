package validation

import (
	"strings"
	"testing"
)

type request struct {
	Title string   `json:"top_title" binding:"required"`
	Lines []string `json:"lines" binding:"required"`
}

func TestStructValid(t *testing.T) {
	err := Struct(request{Title: "Haushalt", Lines: []string{"a"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStructMissingFields(t *testing.T) {
	err := Struct(request{})
	if err == nil {
		t.Fatal("expected error")
	}

	verr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error type = %T", err)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("fields = %v", verr.Fields)
	}
	// Fields are reported under their json names.
	if verr.Fields[0].Field != "top_title" || verr.Fields[0].Rule != "required" {
		t.Errorf("first field = %+v", verr.Fields[0])
	}
	if !strings.Contains(err.Error(), "top_title (required)") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestStructNonStruct(t *testing.T) {
	if err := Struct("not a struct"); err == nil {
		t.Error("expected error for non-struct input")
	}
}
