// internal/workers/ai-conversation/chat-session/models.go
package chatsession

import "costli-agents/internal/models"

type Input struct {
	SessionID string `json:"sessionId,omitempty"`
	Domain    string `json:"domain"`
	Scenario  string `json:"scenario,omitempty"`
	Message   string `json:"message"`
	Reanalyze bool   `json:"reanalyze,omitempty"`
}

type Output struct {
	SessionID      string            `json:"sessionId"`
	Reply          string            `json:"reply"`
	Transcript     []models.ChatTurn `json:"transcript"`
	Tiles          []models.Tile     `json:"tiles,omitempty"`
	AnalysisStatus string            `json:"analysisStatus,omitempty"`
}
