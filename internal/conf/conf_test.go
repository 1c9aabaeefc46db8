// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package conf

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfigYaml = `
logging:
  level: debug
  format: json
monitoring:
  labels:
    github_org: cobaltcore-dev
    github_repo: stackops
  port: 2112
mqtt:
  url: tcp://localhost:1883
  username: stackops
  password: secret
keystone:
  url: https://keystone.example.com/v3
  availability: public
  username: stackops
  password: secret
  projectName: cloud
  userDomainName: Default
  projectDomainName: Default
heat:
  availability: public
watcher:
  pollIntervalSeconds: 15
  stackTimeoutSeconds: 14400
  inProgressTimeoutSeconds: 600
  deleteTimeoutSeconds: 14400
publisher:
  retryIntervalSeconds: 1
  maxRetries: 5
api:
  port: 8080
db:
  host: localhost
  port: "5432"
  database: stackops
  user: postgres
  password: secret
`

func TestNewConfigFromBytes(t *testing.T) {
	c := newConfigFromBytes([]byte(testConfigYaml))
	if c.GetLoggingConfig().LevelStr != "debug" {
		t.Errorf("expected logging level debug, got %s", c.GetLoggingConfig().LevelStr)
	}
	if c.GetMonitoringConfig().Port != 2112 {
		t.Errorf("expected monitoring port 2112, got %d", c.GetMonitoringConfig().Port)
	}
	if c.GetMQTTConfig().URL != "tcp://localhost:1883" {
		t.Errorf("unexpected mqtt url %s", c.GetMQTTConfig().URL)
	}
	if c.GetKeystoneConfig().OSProjectName != "cloud" {
		t.Errorf("unexpected project name %s", c.GetKeystoneConfig().OSProjectName)
	}
	if c.GetHeatConfig().Availability != "public" {
		t.Errorf("unexpected heat availability %s", c.GetHeatConfig().Availability)
	}
	if c.GetWatcherConfig().PollIntervalSeconds != 15 {
		t.Errorf("unexpected poll interval %d", c.GetWatcherConfig().PollIntervalSeconds)
	}
	if c.GetWatcherConfig().InProgressTimeoutSeconds != 600 {
		t.Errorf("unexpected in progress timeout %d", c.GetWatcherConfig().InProgressTimeoutSeconds)
	}
	if c.GetPublisherConfig().MaxRetries != 5 {
		t.Errorf("unexpected max retries %d", c.GetPublisherConfig().MaxRetries)
	}
	if c.GetAPIConfig().Port != 8080 {
		t.Errorf("unexpected api port %d", c.GetAPIConfig().Port)
	}
	if c.GetDBConfig().Database != "stackops" {
		t.Errorf("unexpected database %s", c.GetDBConfig().Database)
	}
}

func TestNewConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.yaml")
	if err := os.WriteFile(path, []byte(testConfigYaml), 0o644); err != nil {
		t.Fatal(err)
	}
	c := newConfigFromFile(path)
	if c.GetKeystoneConfig().URL != "https://keystone.example.com/v3" {
		t.Errorf("unexpected keystone url %s", c.GetKeystoneConfig().URL)
	}
}

func TestNewConfigFromFileMissing(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for missing config file")
		}
	}()
	newConfigFromFile("/nonexistent/conf.yaml")
}
