package configs

import (
	_ "embed"
	"fmt"
	"os"

	"ordermind/ordermind/utils/logging"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// AgentConfig holds the system prompts used by the tool agent and RAG flows.
type AgentConfig struct {
	AgentName       string  `yaml:"agent_name"`
	ToolSelection   string  `yaml:"tool_selection"`
	ToolAnswer      string  `yaml:"tool_answer"`
	RAGAnswer       string  `yaml:"rag_answer"`
	RAGTopK         int     `yaml:"rag_top_k"`
	ToolTemperature float64 `yaml:"tool_temperature"`
}

// LoadConfig reads prompts from path, falling back to the embedded defaults
// for any field the file leaves empty. An empty path uses the defaults only.
func LoadConfig(path string) (*AgentConfig, error) {
	cfg := &AgentConfig{}
	if err := yaml.Unmarshal(defaultPrompts, cfg); err != nil {
		return nil, fmt.Errorf("parse embedded prompts: %w", err)
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	// unmarshalling over the defaults only replaces keys present in the file
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse prompts file %s: %w", path, err)
	}
	if cfg.RAGTopK <= 0 {
		cfg.RAGTopK = 3
	}
	logging.AppLogger.Info("prompts loaded", zap.String("path", path))
	return cfg, nil
}
