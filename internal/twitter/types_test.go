package twitter

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRecordTime(t *testing.T) {
	rec := Record{CreatedAt: "Mon Apr 06 15:24:15 +0000 2015"}
	ts, err := rec.Time()
	if err != nil {
		t.Fatalf("parse created_at: %v", err)
	}
	want := time.Date(2015, 4, 6, 15, 24, 15, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("time = %v, want %v", ts, want)
	}
}

func TestRecordTime_Invalid(t *testing.T) {
	rec := Record{CreatedAt: "2015-04-06"}
	if _, err := rec.Time(); err == nil {
		t.Fatal("expected error for wrong layout")
	}
}

func TestRecordJSON_RawPassthrough(t *testing.T) {
	raw := `{"id":1,"text":"hi","created_at":"Mon Apr 06 15:24:15 +0000 2015","user":{"screen_name":"someone"}}`
	rec, err := decodeRecord([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	doc, err := rec.JSON()
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	// Nested fields the Record struct does not model must survive.
	if string(doc) != raw {
		t.Errorf("json = %s, want raw payload", doc)
	}
}

func TestRecordJSON_Synthesized(t *testing.T) {
	rec := Record{ID: 42, Text: "hi", CreatedAt: "Mon Apr 06 15:24:15 +0000 2015"}
	doc, err := rec.JSON()
	if err != nil {
		t.Fatalf("json: %v", err)
	}

	var decoded struct {
		ID        int64  `json:"id"`
		Text      string `json:"text"`
		CreatedAt string `json:"created_at"`
	}
	if err := json.Unmarshal(doc, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.ID != 42 || decoded.Text != "hi" || decoded.CreatedAt != rec.CreatedAt {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestDecodeRecord_Malformed(t *testing.T) {
	if _, err := decodeRecord([]byte("{{{not json")); err == nil {
		t.Fatal("expected error for malformed json")
	}
}
