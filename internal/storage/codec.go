package storage

import "encoding/json"

func encode(value any) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeInto(raw string, dst any) bool {
	return json.Unmarshal([]byte(raw), dst) == nil
}
