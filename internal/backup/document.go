// Package backup exports and restores every stored record as one JSON
// document.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var ErrInvalidBackup = errors.New("invalid_backup")

// Document is a full snapshot of the store. A nil collection is absent
// from the document and left untouched on import.
type Document struct {
	ID             string     `json:"id,omitempty"`
	Issuers        Collection `json:"issuers"`
	Clients        Collection `json:"clients"`
	Invoices       Collection `json:"invoices"`
	LastInvoiceNum string     `json:"lastInvoiceNum,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
}

// Collection holds the raw records of one collection. Older backups encode
// each collection as a JSON string containing the array; both forms decode.
type Collection []json.RawMessage

func (c *Collection) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}

	if data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return err
		}
		encoded = strings.TrimSpace(encoded)
		if encoded == "" || encoded == "null" {
			*c = nil
			return nil
		}
		data = []byte(encoded)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	*c = items
	return nil
}

// Present reports whether the collection was included in the document.
func (c Collection) Present() bool {
	return c != nil
}

func collectionOf[T any](records []T) (Collection, error) {
	out := make(Collection, 0, len(records))
	for _, record := range records {
		raw, err := json.Marshal(record)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

// Decode parses a backup file.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, errors.Join(ErrInvalidBackup, err)
	}
	return doc, nil
}

// Filename is the download name of a backup taken at t.
func Filename(t time.Time) string {
	return "invoice-data-backup-" + t.UTC().Format("2006-01-02") + ".json"
}
