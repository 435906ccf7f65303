package anomaly

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Dataset is the record store for one session: built once, never mutated.
// Replacing the data means building a new Dataset; its Digest identifies the reference.
type Dataset struct {
	records  []Record
	byID     map[int]int
	source   string
	digest   string
	loadedAt time.Time
}

// NewDataset copies records so later changes to the caller's slice are not observed.
// When ids repeat, Find returns the first occurrence.
func NewDataset(records []Record, source string) *Dataset {
	cp := make([]Record, len(records))
	copy(cp, records)
	byID := make(map[int]int, len(cp))
	for i, r := range cp {
		if _, ok := byID[r.ID]; !ok {
			byID[r.ID] = i
		}
	}
	return &Dataset{
		records:  cp,
		byID:     byID,
		source:   source,
		digest:   digestOf(cp),
		loadedAt: time.Now(),
	}
}

// Records returns the records in file order. Callers must treat the slice as read-only.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	return d.records
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Find looks a record up by id.
func (d *Dataset) Find(id int) (Record, bool) {
	if d == nil {
		return Record{}, false
	}
	i, ok := d.byID[id]
	if !ok {
		return Record{}, false
	}
	return d.records[i], true
}

func (d *Dataset) Source() string      { return d.source }
func (d *Dataset) Digest() string      { return d.digest }
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

func digestOf(records []Record) string {
	h := sha256.New()
	// Encode only fails on NaN/Inf; the digest then covers what was written.
	_ = json.NewEncoder(h).Encode(records)
	return hex.EncodeToString(h.Sum(nil))[:16]
}
