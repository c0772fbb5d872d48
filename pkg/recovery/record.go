package recovery

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

// Record is the persisted state of one pending recovery attempt.
type Record struct {
	HashedKey string
	CreatedAt time.Time
}

// storedRecord uses pointers so missing fields can be told apart from zero
// values.
type storedRecord struct {
	HashedKey *string `json:"hashed_key,omitempty"`
	CreatedAt *int64  `json:"created_at,omitempty"`
}

// recordSet maps tokens to raw records. Records stay raw until needed so a
// single corrupt entry does not make the whole set unreadable.
type recordSet map[string]json.RawMessage

func decodeRecordSet(b []byte) (recordSet, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return recordSet{}, nil
	}

	var rs recordSet
	if err := json.Unmarshal(b, &rs); err != nil {
		return nil, errors.Join(ErrMalformedRecordSet, err)
	}
	if rs == nil {
		rs = recordSet{}
	}
	return rs, nil
}

func (rs recordSet) encode() ([]byte, error) {
	return json.Marshal(map[string]json.RawMessage(rs))
}

func (rs recordSet) put(token, hashedKey string, createdAt int64) error {
	raw, err := json.Marshal(storedRecord{HashedKey: &hashedKey, CreatedAt: &createdAt})
	if err != nil {
		return err
	}
	rs[token] = raw
	return nil
}

// parseRecord reports false when raw is not an object carrying both fields.
func parseRecord(raw json.RawMessage) (Record, bool) {
	var sr storedRecord
	if err := json.Unmarshal(raw, &sr); err != nil {
		return Record{}, false
	}
	if sr.HashedKey == nil || sr.CreatedAt == nil {
		return Record{}, false
	}
	return Record{HashedKey: *sr.HashedKey, CreatedAt: time.Unix(*sr.CreatedAt, 0)}, true
}

// createdAt extracts only the creation time, which is all the sweep needs.
func createdAt(raw json.RawMessage) (int64, bool) {
	var sr storedRecord
	if err := json.Unmarshal(raw, &sr); err != nil || sr.CreatedAt == nil {
		return 0, false
	}
	return *sr.CreatedAt, true
}

// expired compares at one-second resolution, matching the stored timestamps.
func expired(createdAt int64, ttl time.Duration, now time.Time) bool {
	return now.Unix() > createdAt+int64(ttl/time.Second)
}
