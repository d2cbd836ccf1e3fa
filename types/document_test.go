package types

import (
	"reflect"
	"testing"
)

func TestDocument_SetAndAddField(t *testing.T) {
	t.Parallel()

	doc := NewDocument("")
	doc.SetField("id", "doc-1")
	if doc.ID != "doc-1" {
		t.Fatalf("expected id field to set ID, got %q", doc.ID)
	}

	doc.AddField("tag", "a")
	doc.AddField("tag", "b")
	v, ok := doc.GetField("tag")
	if !ok {
		t.Fatalf("expected tag field")
	}
	if !reflect.DeepEqual(v, []any{"a", "b"}) {
		t.Fatalf("expected multi-valued tag, got %#v", v)
	}
}

func TestDocument_Clone(t *testing.T) {
	t.Parallel()

	doc := NewDocument("doc-1")
	doc.SetField("title", "original")

	clone := doc.Clone()
	clone.SetField("title", "changed")

	if v, _ := doc.GetField("title"); v != "original" {
		t.Fatalf("clone mutation leaked into original: %v", v)
	}
	if clone.ID != doc.ID {
		t.Fatalf("clone should keep the ID")
	}
}
