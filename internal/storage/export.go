package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/satsim/internal/episode"
)

type ExportData struct {
	RunMetadata
	Trajectory []episode.Step `json:"trajectory"`
}

func ExportJSON(w io.Writer, meta RunMetadata, steps []episode.Step) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: meta, Trajectory: steps})
}
