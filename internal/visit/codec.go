package visit

import (
	"encoding/json"
	"fmt"
)

// encode serializes the whole collection as a bare JSON array.
func encode(visits []ClientVisit) ([]byte, error) {
	if visits == nil {
		visits = []ClientVisit{}
	}
	return json.Marshal(visits)
}

// decode parses a persisted collection and checks record identity.
// A literal null decodes to an empty collection, and a record without
// products gets an empty product list.
func decode(data []byte) ([]ClientVisit, error) {
	var visits []ClientVisit
	if err := json.Unmarshal(data, &visits); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(visits))
	for i, v := range visits {
		if v.ID == "" {
			return nil, fmt.Errorf("record %d has no id", i)
		}
		if seen[v.ID] {
			return nil, fmt.Errorf("duplicate id %q", v.ID)
		}
		seen[v.ID] = true
		if v.Products == nil {
			visits[i].Products = []Product{}
		}
	}
	return visits, nil
}
