package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/docvoice/internal/stats"
)

type providerStats struct {
	Name  string         `json:"name"`
	Model string         `json:"model"`
	Stats stats.Snapshot `json:"stats"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	out := make([]providerStats, 0, len(s.providers))
	for _, p := range s.providers {
		out = append(out, providerStats{
			Name:  p.Name(),
			Model: p.Model(),
			Stats: p.Stats().Snapshot(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"providers": out})
}
