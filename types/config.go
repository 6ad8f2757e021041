package types

import (
	"fmt"
	"gopkg.in/yaml.v3"
	"io/ioutil"
	"strings"
)

const (
	DefaultOllamaBaseURL  = "http://localhost:11434"
	DefaultOllamaModel    = "deepseek-r1:1.5b"
	DefaultOllamaTimeout  = 30
	DefaultSentenceWindow = 1
)

type CTakesConfig struct {
	InstallationPath string `yaml:"installation_path" json:"installation_path"`
	UMLSAPIKeyFile   string `yaml:"umls_api_key_file" json:"umls_api_key_file"`
	UMLSAPIKey       string `yaml:"-" json:"-"`
}

type PipelineConfig struct {
	Name string `yaml:"name" json:"name"`
}

type PathsConfig struct {
	InputDir     string `yaml:"input_dir" json:"input_dir"`
	XMIOutputDir string `yaml:"xmi_output_dir" json:"xmi_output_dir"`
	CSVOutputDir string `yaml:"csv_output_dir" json:"csv_output_dir"`
}

type OutputConfig struct {
	IncludeCUIsFile bool `yaml:"include_cuis_file" json:"include_cuis_file"`
}

type OllamaConfig struct {
	BaseURL     string  `yaml:"base_url" json:"base_url"`
	Model       string  `yaml:"model" json:"model"`
	Temperature float64 `yaml:"temperature" json:"temperature"`
	Timeout     int     `yaml:"timeout" json:"timeout"`
}

type LLMConfig struct {
	EnableDisambiguation bool         `yaml:"enable_disambiguation" json:"enable_disambiguation"`
	SentenceWindow       int          `yaml:"sentence_window" json:"sentence_window"`
	EnableThinking       bool         `yaml:"enable_thinking" json:"enable_thinking"`
	Ollama               OllamaConfig `yaml:"ollama" json:"ollama"`
}

// Config is the run configuration loaded from a yaml file.
type Config struct {
	CTakes   CTakesConfig   `yaml:"ctakes" json:"ctakes"`
	Pipeline PipelineConfig `yaml:"pipeline" json:"pipeline"`
	Paths    PathsConfig    `yaml:"paths" json:"paths"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	LLM      LLMConfig      `yaml:"llm" json:"llm"`
}

// LoadConfig reads and parses the yaml run configuration and fills in the
// defaults for optional values.
func LoadConfig(filePath string) (*Config, error) {
	buf, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", filePath, err)
	}

	cfg := Config{
		LLM: LLMConfig{
			SentenceWindow: DefaultSentenceWindow,
			Ollama: OllamaConfig{
				BaseURL: DefaultOllamaBaseURL,
				Model:   DefaultOllamaModel,
				Timeout: DefaultOllamaTimeout,
			},
		},
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", filePath, err)
	}

	if cfg.LLM.Ollama.BaseURL == "" {
		cfg.LLM.Ollama.BaseURL = DefaultOllamaBaseURL
	}
	if cfg.LLM.Ollama.Model == "" {
		cfg.LLM.Ollama.Model = DefaultOllamaModel
	}
	if cfg.LLM.Ollama.Timeout <= 0 {
		cfg.LLM.Ollama.Timeout = DefaultOllamaTimeout
	}
	if cfg.LLM.SentenceWindow < 0 {
		cfg.LLM.SentenceWindow = DefaultSentenceWindow
	}
	return &cfg, nil
}

// LoadUMLSKey reads the UMLS API key from the configured key file. The key
// is required to run the annotation pipeline, a missing file is fatal for
// batch runs.
func (cfg *Config) LoadUMLSKey() error {
	if cfg.CTakes.UMLSAPIKeyFile == "" {
		return fmt.Errorf("umls_api_key_file is not set in the ctakes config section")
	}
	buf, err := ioutil.ReadFile(cfg.CTakes.UMLSAPIKeyFile)
	if err != nil {
		return fmt.Errorf("read UMLS key file %s: %w", cfg.CTakes.UMLSAPIKeyFile, err)
	}
	cfg.CTakes.UMLSAPIKey = strings.TrimSpace(string(buf))
	if cfg.CTakes.UMLSAPIKey == "" {
		return fmt.Errorf("UMLS key file %s is empty", cfg.CTakes.UMLSAPIKeyFile)
	}
	return nil
}
