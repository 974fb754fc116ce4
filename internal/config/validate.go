package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTransfers(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.IncomingDir == "" {
		return errors.New("paths.incoming_dir must be set")
	}
	if c.Paths.TVDir == "" {
		return errors.New("paths.tv_dir must be set")
	}
	return nil
}

func (c *Config) validateTransfers() error {
	switch c.Transfers.HashAlgorithm {
	case "", "crc32", "md5", "sha1":
	default:
		return fmt.Errorf("transfers.hash_algorithm: unsupported value %q (use crc32, md5, or sha1)", c.Transfers.HashAlgorithm)
	}
	return nil
}

func (c *Config) validateLLM() error {
	if !c.LLM.Enabled {
		return nil
	}
	switch c.LLM.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("llm.provider: unsupported value %q (use ollama or openai)", c.LLM.Provider)
	}
	if c.LLM.Provider == "openai" && c.LLM.APIKey == "" {
		return errors.New("llm.api_key must be set when llm.provider is openai")
	}
	if c.LLM.ConfidenceThreshold < 0 || c.LLM.ConfidenceThreshold > 1 {
		return errors.New("llm.confidence_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

// ValidateRemote checks the preconditions for talking to the remote store.
// It is separate from Validate so local-only commands (route, parse) do not
// require SFTP settings.
func (c *Config) ValidateRemote() error {
	if c.SFTP.Host == "" {
		return errors.New("sftp.host must be set")
	}
	if c.SFTP.Username == "" {
		return errors.New("sftp.username must be set")
	}
	if c.SFTP.SSHKeyPath == "" {
		return errors.New("sftp.ssh_key_path must be set")
	}
	if len(c.SFTP.RemotePaths) == 0 {
		return errors.New("sftp.remote_paths must list at least one remote directory")
	}
	return nil
}
