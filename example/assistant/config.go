package main

import (
	"os"

	"github.com/bytedance/sonic"
)

type RemoteConfig struct {
	BaseURL string `json:"base_url"`
	AppID   string `json:"app_id"`
}

type Config struct {
	APIKey     string        `json:"api_key"`
	BaseURL    string        `json:"base_url"`
	Model      string        `json:"model"`
	DataDir    string        `json:"data_dir"`
	ProcessID  string        `json:"process_id"`
	WebhookURL string        `json:"webhook_url"`
	Remote     *RemoteConfig `json:"remote"`
}

func loadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var conf Config
	err = sonic.Unmarshal(file, &conf)
	if err != nil {
		return nil, err
	}
	if conf.DataDir == "" {
		conf.DataDir = "."
	}
	return &conf, nil
}
