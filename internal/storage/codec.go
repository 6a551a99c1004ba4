package storage

import (
	"encoding/json"
	"errors"
	"sort"

	"langchange/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(run model.RunRecord) ([]byte, error) {
	return json.Marshal(run)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeFrequencyTable(table model.FrequencyTable) ([]byte, error) {
	return json.Marshal(table)
}

func DecodeFrequencyTable(data []byte) (model.FrequencyTable, error) {
	var table model.FrequencyTable
	if err := json.Unmarshal(data, &table); err != nil {
		return model.FrequencyTable{}, err
	}
	return table, nil
}

func EncodeHierarchy(h model.Hierarchy) ([]byte, error) {
	return json.Marshal(h)
}

func DecodeHierarchy(data []byte) (model.Hierarchy, error) {
	var h model.Hierarchy
	if err := json.Unmarshal(data, &h); err != nil {
		return model.Hierarchy{}, err
	}
	return h, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

// sortRuns orders runs newest first, then by id.
func sortRuns(runs []model.RunRecord) {
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].CreatedAtUTC == runs[j].CreatedAtUTC {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].CreatedAtUTC > runs[j].CreatedAtUTC
	})
}

func cloneTable(table model.FrequencyTable) model.FrequencyTable {
	rows := make([]model.FrequencyRow, 0, len(table.Rows))
	for _, r := range table.Rows {
		values := make(map[int]float64, len(r.Values))
		for k, v := range r.Values {
			values[k] = v
		}
		rows = append(rows, model.FrequencyRow{Step: r.Step, Values: values})
	}
	return model.FrequencyTable{Columns: append([]int(nil), table.Columns...), Rows: rows}
}

func cloneHierarchy(h model.Hierarchy) model.Hierarchy {
	return model.Hierarchy{Root: h.Root, Events: append([]model.PartitionEvent(nil), h.Events...)}
}
