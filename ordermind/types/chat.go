package types

import "ordermind/ordermind/sources/psql/models"

type ChatRequest struct {
	Prompt     string `json:"prompt"`
	Format     string `json:"format,omitempty"`
	ResourceID string `json:"resourceID,omitempty"`
}

type HomeData struct {
	ResourceIDs []string          `json:"resourceIDs"`
	ResourceID  string            `json:"resourceID"`
	ChatHistory []models.ChatTurn `json:"chatHistory"`
}

type HomeResponse struct {
	User *models.User `json:"user"`
	Data HomeData     `json:"data"`
}
