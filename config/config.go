package config

import (
	"encoding/json"
	"os"
	"sync"
)

type Config struct {
	ErpBaseURL         string `json:"erpBaseURL"`
	ErpUsername        string `json:"erpUsername"`
	ErpPassword        string `json:"erpPassword"`
	ErpCompany         string `json:"erpCompany"`
	SyncPageSize       int    `json:"syncPageSize"`
	SyncPageDelayMs    int    `json:"syncPageDelayMs"`
	SyncMilestonePages int    `json:"syncMilestonePages"`
	SMTPHost           string `json:"smtpHost"`
	SMTPPort           int    `json:"smtpPort"`
	SMTPFrom           string `json:"smtpFrom"`
	LockboxURL         string `json:"lockboxURL"`
	LockboxUserID      string `json:"lockboxUserID"`
	LockboxPassword    string `json:"lockboxPassword"`
	LockboxFolderPath  string `json:"lockboxFolderPath"`
	AgingAsOf          string `json:"agingAsOf"` // YYYY-MM-DD, empty means today
}

var (
	cfg Config
	mu  sync.RWMutex
)

const configFilePath = "./collect_config.json"

func applyDefaults(c *Config) {
	if c.SyncPageSize == 0 {
		c.SyncPageSize = 200
	}
	if c.SyncPageDelayMs == 0 {
		c.SyncPageDelayMs = 500
	}
	if c.SyncMilestonePages == 0 {
		c.SyncMilestonePages = 25
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = 25
	}
}

func LoadConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	file, err := os.ReadFile(configFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			var defaults Config
			applyDefaults(&defaults)
			cfg = defaults
			return cfg, nil
		}
		return Config{}, err
	}

	var tempCfg Config
	if err := json.Unmarshal(file, &tempCfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&tempCfg)
	cfg = tempCfg

	return cfg, nil
}

func SaveConfig(newCfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	applyDefaults(&newCfg)

	file, err := json.MarshalIndent(newCfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(configFilePath, file, 0644); err != nil {
		return err
	}
	cfg = newCfg
	return nil
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}
