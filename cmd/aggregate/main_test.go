package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadURLs_SkipsBlanksAndComments(t *testing.T) {
	p := filepath.Join(t.TempDir(), "urls.txt")
	body := "# hotels\nhttps://www.booking.com/hotel/in/a.html\n\n  https://www.tripadvisor.com/x  \n"
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := readURLs(p)
	if err != nil {
		t.Fatalf("readURLs: %v", err)
	}
	want := []string{"https://www.booking.com/hotel/in/a.html", "https://www.tripadvisor.com/x"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestReadURLs_MissingFile(t *testing.T) {
	if _, err := readURLs(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error")
	}
}
