package api

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/harrylevesque/ecoadmin/internal/models"
)

func TestDecodeValueRejectsTrailingData(t *testing.T) {
	if _, err := decodeValue([]byte(`{"a":1} {"b":2}`)); err == nil {
		t.Fatal("expected trailing data to be rejected")
	}
	v, err := decodeValue([]byte(` [1] `))
	if err != nil {
		t.Fatalf("decodeValue: %v", err)
	}
	arr, ok := v.([]any)
	if !ok || arr[0] != json.Number("1") {
		t.Errorf("expected json.Number element, got %#v", v)
	}
}

func TestDecodeRecordEmpty(t *testing.T) {
	rec, err := decodeRecord(Endpoint{}, []byte("[]"))
	if err != nil {
		t.Fatalf("decodeRecord: %v", err)
	}
	if rec == nil || len(rec) != 0 {
		t.Errorf("expected empty non-nil record, got %#v", rec)
	}
}

func TestDecodeEcho(t *testing.T) {
	tests := []struct {
		name string
		body string
		want models.Record
	}{
		{"empty", "  ", models.Record{}},
		{"plain text", "Created", models.Record{"message": "Created"}},
		{"object", `{"Id":"n1"}`, models.Record{"id": "n1"}},
		{"array", `[{"id":"a"},{"id":"b"}]`, models.Record{"id": "a"}},
		{"scalar", `true`, models.Record{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeEcho(Endpoint{}, []byte(tt.body))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("decodeEcho(%q) = %#v, want %#v", tt.body, got, tt.want)
			}
		})
	}
}

func TestServerMessageGeneric(t *testing.T) {
	if got := serverMessage(599, nil); got != GenericErrorMessage {
		t.Errorf("expected generic message, got %q", got)
	}
	if got := serverMessage(500, []byte(`{"message":"  "}`)); got != "Internal Server Error" {
		t.Errorf("blank message should fall back to status text, got %q", got)
	}
}
