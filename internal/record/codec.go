package record

import "encoding/json"

func encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// decodeCatalog reports false for undecodable values, which callers treat
// as an absent catalog.
func decodeCatalog(raw []byte) (*Catalog, bool) {
	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, false
	}
	if c.Data == nil {
		c.Data = []string{}
	}
	return &c, true
}

// decodeSet reports false for undecodable values, which callers treat as a
// missing set.
func decodeSet(raw []byte) (*RecordSet, bool) {
	var s RecordSet
	if err := json.Unmarshal(raw, &s); err != nil || s.ID == "" {
		return nil, false
	}
	if s.Data == nil {
		s.Data = []Record{}
	}
	for i := range s.Data {
		if s.Data[i].Data == nil {
			s.Data[i].Data = []string{}
		}
	}
	return &s, true
}
