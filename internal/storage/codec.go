package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"genos/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Stamp fills in the current schema and codec versions.
func Stamp() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
}

func EncodeRun(r model.RunRecord) ([]byte, error) {
	return json.Marshal(r)
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

func EncodeBest(b model.BestRecord) ([]byte, error) {
	return json.Marshal(b)
}

func DecodeBest(data []byte) (model.BestRecord, error) {
	var best model.BestRecord
	if err := json.Unmarshal(data, &best); err != nil {
		return model.BestRecord{}, err
	}
	if err := checkVersion(best.VersionedRecord); err != nil {
		return model.BestRecord{}, err
	}
	return best, nil
}

func EncodeGeneration(g model.GenerationRecord) ([]byte, error) {
	return json.Marshal(g)
}

func DecodeGeneration(data []byte) (model.GenerationRecord, error) {
	var generation model.GenerationRecord
	if err := json.Unmarshal(data, &generation); err != nil {
		return model.GenerationRecord{}, err
	}
	return generation, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, v.SchemaVersion, v.CodecVersion)
	}
	return nil
}
