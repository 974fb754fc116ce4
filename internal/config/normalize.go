package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSFTP(); err != nil {
		return err
	}
	c.normalizeTransfers()
	c.normalizeTMDB()
	c.normalizeLLM()
	c.normalizeDaemon()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.IncomingDir, err = expandPath(c.Paths.IncomingDir); err != nil {
		return fmt.Errorf("paths.incoming_dir: %w", err)
	}
	if c.Paths.TVDir, err = expandPath(c.Paths.TVDir); err != nil {
		return fmt.Errorf("paths.tv_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSFTP() error {
	c.SFTP.Host = strings.TrimSpace(c.SFTP.Host)
	c.SFTP.Username = strings.TrimSpace(c.SFTP.Username)
	if c.SFTP.Port <= 0 {
		c.SFTP.Port = defaultSFTPPort
	}
	var err error
	if c.SFTP.SSHKeyPath, err = expandPath(c.SFTP.SSHKeyPath); err != nil {
		return fmt.Errorf("sftp.ssh_key_path: %w", err)
	}
	paths := make([]string, 0, len(c.SFTP.RemotePaths))
	for _, p := range c.SFTP.RemotePaths {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paths = append(paths, trimmed)
		}
	}
	c.SFTP.RemotePaths = paths
	return nil
}

func (c *Config) normalizeTransfers() {
	if c.Transfers.MaxWorkers <= 0 {
		c.Transfers.MaxWorkers = defaultMaxWorkers
	}
	if c.Transfers.MaxPathLength <= 0 {
		c.Transfers.MaxPathLength = defaultMaxPathLength
	}
	if c.Transfers.GraceSeconds < 0 {
		c.Transfers.GraceSeconds = defaultGraceSeconds
	}
	if c.Transfers.RetryCount < 0 {
		c.Transfers.RetryCount = defaultRetryCount
	}
	if c.Transfers.RetryDelaySeconds <= 0 {
		c.Transfers.RetryDelaySeconds = defaultRetryDelaySeconds
	}
	c.Transfers.HashAlgorithm = strings.ToLower(strings.TrimSpace(c.Transfers.HashAlgorithm))
}

func (c *Config) normalizeTMDB() {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = value
		}
	}
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultLLMProvider
	}
	c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.BaseURL), "/")
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.ConfidenceThreshold <= 0 {
		c.LLM.ConfidenceThreshold = defaultLLMThreshold
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeout
	}
}

func (c *Config) normalizeDaemon() {
	if c.Daemon.PollIntervalSeconds <= 0 {
		c.Daemon.PollIntervalSeconds = defaultPollInterval
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
