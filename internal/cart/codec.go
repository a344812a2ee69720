package cart

import (
	"bytes"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"storefront/client/internal/domain"
)

// SnapshotVersion is written into every payload so the format can evolve
const SnapshotVersion = 1

type snapshot struct {
	Version int               `json:"version"`
	Items   []domain.CartLine `json:"items"`
}

// Encode serializes the full line sequence
func Encode(lines []domain.CartLine) (string, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}

	data, err := json.Marshal(snapshot{Version: SnapshotVersion, Items: lines})
	if err != nil {
		return "", fmt.Errorf("failed to encode cart snapshot: %w", err)
	}
	return string(data), nil
}

// Decode accepts versioned snapshots and the bare array written by earlier releases.
// Lines that would break cart invariants are repaired: non-positive quantities are
// dropped and repeated product ids are merged into the first occurrence.
func Decode(payload string) ([]domain.CartLine, error) {
	trimmed := bytes.TrimSpace([]byte(payload))
	if len(trimmed) == 0 {
		return []domain.CartLine{}, nil
	}

	var lines []domain.CartLine
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &lines); err != nil {
			return nil, fmt.Errorf("failed to decode legacy cart snapshot: %w", err)
		}
	} else {
		var snap snapshot
		if err := json.Unmarshal(trimmed, &snap); err != nil {
			return nil, fmt.Errorf("failed to decode cart snapshot: %w", err)
		}
		if snap.Version != SnapshotVersion {
			return nil, fmt.Errorf("unsupported cart snapshot version %d", snap.Version)
		}
		lines = snap.Items
	}

	return normalize(lines), nil
}

func normalize(lines []domain.CartLine) []domain.CartLine {
	result := make([]domain.CartLine, 0, len(lines))
	index := make(map[int64]int, len(lines))

	for _, line := range lines {
		if line.Quantity < 1 {
			log.Warnf("Dropping restored cart line %d with quantity %d", line.ID, line.Quantity)
			continue
		}
		if i, ok := index[line.ID]; ok {
			result[i].Quantity += line.Quantity
			continue
		}
		index[line.ID] = len(result)
		result = append(result, line)
	}

	return result
}
