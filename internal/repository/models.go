// Package repository provides database abstraction for recorded build runs.
package repository

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// BuildRun represents the build_run table: one row per merge tree build,
// recording its parameters and the resulting tree's shape for later
// inspection or comparison across runs.
type BuildRun struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement"`
	RunUUID      string     `gorm:"column:run_uuid;type:varchar(64);uniqueIndex"`
	TreeType     string     `gorm:"column:tree_type;type:varchar(16)"`
	MeshSource   string     `gorm:"column:mesh_source;type:varchar(512)"`
	VertexCount  int64      `gorm:"column:vertex_count"`
	NodeCount    int64      `gorm:"column:node_count"`
	ArcCount     int64      `gorm:"column:arc_count"`
	LeafCount    int64      `gorm:"column:leaf_count"`
	RootCount    int64      `gorm:"column:root_count"`
	ChunkSize    int64      `gorm:"column:chunk_size"`
	Segmented    bool       `gorm:"column:segmented"`
	Status       string     `gorm:"column:status;type:varchar(32)"`
	ErrorMessage string     `gorm:"column:error_message;type:text"`
	PhaseTimings JSONField  `gorm:"column:phase_timings;type:json"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	CompletedAt  *time.Time `gorm:"column:completed_at"`
}

// TableName returns the table name for BuildRun.
func (BuildRun) TableName() string {
	return "build_run"
}

// PhaseTimingsMap decodes PhaseTimings into a plain map of phase name to
// duration, in milliseconds.
func (r *BuildRun) PhaseTimingsMap() (map[string]float64, error) {
	out := make(map[string]float64)
	if r.PhaseTimings == nil {
		return out, nil
	}
	if err := json.Unmarshal(r.PhaseTimings, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetPhaseTimings encodes a map of phase name to duration (milliseconds)
// into PhaseTimings.
func (r *BuildRun) SetPhaseTimings(timings map[string]float64) error {
	raw, err := json.Marshal(timings)
	if err != nil {
		return err
	}
	r.PhaseTimings = raw
	return nil
}

// JSONField is a custom type for handling JSON fields in GORM.
type JSONField []byte

// Value implements driver.Valuer interface.
func (j JSONField) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner interface.
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
		return nil
	case string:
		*j = []byte(v)
		return nil
	default:
		return errors.New("unsupported type for JSONField")
	}
}

// MarshalJSON implements json.Marshaler interface.
func (j JSONField) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (j *JSONField) UnmarshalJSON(data []byte) error {
	if data == nil || string(data) == "null" {
		*j = nil
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}
