package types

type AgentRequest struct {
	Query string `json:"query"`
}

type AgentResponse struct {
	FinalResponse string `json:"finalResponse"`
}

type VectorizeRequest struct {
	FilePath string `json:"filePath"`
	Index    string `json:"index"`
}

type VectorizeResponse struct {
	Message string `json:"message"`
	Chunks  int    `json:"chunks"`
}

type RAGRequest struct {
	Query string `json:"query"`
	Index string `json:"index"`
}

type RAGResponse struct {
	Response string `json:"response"`
}

type UploadResponse struct {
	Message  string `json:"message"`
	FilePath string `json:"filePath"`
}
