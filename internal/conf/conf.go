// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package conf

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Configuration for structured logging.
type LoggingConfig struct {
	// The log level to use (debug, info, warn, error).
	LevelStr string `yaml:"level"`
	// The log format to use (json, text).
	Format string `yaml:"format"`
}

// Configuration for the monitoring module.
type MonitoringConfig struct {
	// The labels to add to all metrics.
	Labels map[string]string `yaml:"labels"`

	// The port to expose the metrics on.
	Port int `yaml:"port"`
}

// Configuration for the mqtt client.
type MQTTConfig struct {
	// The URL of the MQTT broker to use for mqtt.
	URL string `yaml:"url"`
	// Credentials for the MQTT broker.
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Configuration for the keystone authentication.
type KeystoneConfig struct {
	// The URL of the keystone service.
	URL string `yaml:"url"`
	// Availability of the keystone service, such as "public", "internal", or "admin".
	Availability string `yaml:"availability"`
	// The OpenStack username (OS_USERNAME in openstack cli).
	OSUsername string `yaml:"username"`
	// The OpenStack password (OS_PASSWORD in openstack cli).
	OSPassword string `yaml:"password"`
	// The OpenStack project name (OS_PROJECT_NAME in openstack cli).
	OSProjectName string `yaml:"projectName"`
	// The OpenStack user domain name (OS_USER_DOMAIN_NAME in openstack cli).
	OSUserDomainName string `yaml:"userDomainName"`
	// The OpenStack project domain name (OS_PROJECT_DOMAIN_NAME in openstack cli).
	OSProjectDomainName string `yaml:"projectDomainName"`
}

// Configuration for the heat service.
type HeatConfig struct {
	// Availability of the service, such as "public", "internal", or "admin".
	Availability string `yaml:"availability"`
}

// Configuration for the stack watcher.
type WatcherConfig struct {
	// The fixed delay between two status polls. The attempt budget of a
	// watch is derived from its timeout divided by this interval.
	PollIntervalSeconds int `yaml:"pollIntervalSeconds"`
	// Timeout for waiting until a stack reaches a terminal state.
	StackTimeoutSeconds int `yaml:"stackTimeoutSeconds"`
	// Timeout for waiting until a stack starts transitioning.
	InProgressTimeoutSeconds int `yaml:"inProgressTimeoutSeconds"`
	// Timeout for waiting until a deleted stack is gone from the listing.
	DeleteTimeoutSeconds int `yaml:"deleteTimeoutSeconds"`
}

// Configuration for the status publisher.
type PublisherConfig struct {
	// The delay between delivery attempts on transient errors.
	RetryIntervalSeconds int `yaml:"retryIntervalSeconds"`
	// The maximum number of delivery attempts before giving up.
	MaxRetries int `yaml:"maxRetries"`
}

// Configuration for the api port.
type APIConfig struct {
	// The port to expose the API on.
	Port int `yaml:"port"`
}

// Database configuration.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Configuration for the stackops service.
type Config interface {
	GetLoggingConfig() LoggingConfig
	GetMonitoringConfig() MonitoringConfig
	GetMQTTConfig() MQTTConfig
	GetKeystoneConfig() KeystoneConfig
	GetHeatConfig() HeatConfig
	GetWatcherConfig() WatcherConfig
	GetPublisherConfig() PublisherConfig
	GetAPIConfig() APIConfig
	GetDBConfig() DBConfig
}

type config struct {
	LoggingConfig    `yaml:"logging"`
	MonitoringConfig `yaml:"monitoring"`
	MQTTConfig       `yaml:"mqtt"`
	KeystoneConfig   `yaml:"keystone"`
	HeatConfig       `yaml:"heat"`
	WatcherConfig    `yaml:"watcher"`
	PublisherConfig  `yaml:"publisher"`
	APIConfig        `yaml:"api"`
	DBConfig         `yaml:"db"`
}

// Create a new configuration from the default config yaml file.
func NewConfig() Config {
	return newConfigFromFile("/etc/config/conf.yaml")
}

// Create a new configuration from the given file.
func newConfigFromFile(filepath string) Config {
	file, err := os.Open(filepath)
	if err != nil {
		panic(err)
	}
	defer file.Close()
	bytes, err := io.ReadAll(file)
	if err != nil {
		panic(err)
	}
	return newConfigFromBytes(bytes)
}

// Create a new configuration from the given bytes.
func newConfigFromBytes(bytes []byte) Config {
	var c config
	if err := yaml.Unmarshal(bytes, &c); err != nil {
		panic(err)
	}
	return &c
}

func (c *config) GetLoggingConfig() LoggingConfig       { return c.LoggingConfig }
func (c *config) GetMonitoringConfig() MonitoringConfig { return c.MonitoringConfig }
func (c *config) GetMQTTConfig() MQTTConfig             { return c.MQTTConfig }
func (c *config) GetKeystoneConfig() KeystoneConfig     { return c.KeystoneConfig }
func (c *config) GetHeatConfig() HeatConfig             { return c.HeatConfig }
func (c *config) GetWatcherConfig() WatcherConfig       { return c.WatcherConfig }
func (c *config) GetPublisherConfig() PublisherConfig   { return c.PublisherConfig }
func (c *config) GetAPIConfig() APIConfig               { return c.APIConfig }
func (c *config) GetDBConfig() DBConfig                 { return c.DBConfig }
