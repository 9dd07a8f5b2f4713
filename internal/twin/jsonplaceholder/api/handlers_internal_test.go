package api

import (
	"testing"

	"github.com/leicam1995/teste-api-ebac/internal/twin/jsonplaceholder/store"
)

func TestToObject(t *testing.T) {
	m, err := toObject(store.User{ID: 3, Username: "Samantha"})
	if err != nil {
		t.Fatalf("toObject: %v", err)
	}
	if m["username"] != "Samantha" || m["id"] != float64(3) {
		t.Errorf("unexpected object: %v", m)
	}

	m, err = toObject(nil)
	if err != nil {
		t.Fatalf("toObject(nil): %v", err)
	}
	if m == nil {
		t.Fatal("toObject(nil) returned a nil map")
	}
	m["id"] = 1

	if _, err := toObject(make(chan int)); err == nil {
		t.Error("expected an error for a value JSON cannot encode")
	}
	if _, err := toObject([]int{1}); err == nil {
		t.Error("expected an error for a non-object value")
	}
}
