package twitter

import (
	"encoding/json"
	"fmt"
	"time"
)

// CreatedAtLayout is the timestamp format used by the platform in the
// created_at field of every record.
const CreatedAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

// Record is a single post returned by the platform. Raw holds the full
// upstream JSON document; ID, Text and CreatedAt are the fields the
// engines and handlers need to make decisions.
type Record struct {
	ID        int64
	Text      string
	CreatedAt string
	Raw       json.RawMessage
}

// Time parses the record's created_at timestamp.
func (r Record) Time() (time.Time, error) {
	t, err := time.Parse(CreatedAtLayout, r.CreatedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at %q: %w", r.CreatedAt, err)
	}
	return t, nil
}

// JSON returns the record as a single JSON document: the raw upstream
// bytes when available, otherwise a minimal synthesized object.
func (r Record) JSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	return json.Marshal(struct {
		ID        int64  `json:"id"`
		Text      string `json:"text"`
		CreatedAt string `json:"created_at"`
	}{r.ID, r.Text, r.CreatedAt})
}

func decodeRecord(data []byte) (Record, error) {
	var fields struct {
		ID        int64  `json:"id"`
		Text      string `json:"text"`
		CreatedAt string `json:"created_at"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}

	raw := make(json.RawMessage, len(data))
	copy(raw, data)

	return Record{
		ID:        fields.ID,
		Text:      fields.Text,
		CreatedAt: fields.CreatedAt,
		Raw:       raw,
	}, nil
}

func decodeRecords(items []json.RawMessage) ([]Record, error) {
	records := make([]Record, 0, len(items))
	for _, item := range items {
		rec, err := decodeRecord(item)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
