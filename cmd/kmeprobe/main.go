// Command kmeprobe exercises a KME endpoint through a KeySource and
// reports its statistics. It is an operational smoke test: point it at a
// KME, let it heartbeat and request keys for a while, and read the JSON
// snapshot.
//
// Usage:
//
//	kmeprobe -config probe.yaml
//	kmeprobe -endpoint https://kme.example.com -duration 30s
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	qukey "github.com/qukey/engine-go"
)

type config struct {
	Endpoint               string `yaml:"endpoint"`
	SAEID                  string `yaml:"saeId"`
	HeartbeatSeconds       int    `yaml:"heartbeatSeconds"`
	Strict                 bool   `yaml:"strict"`
	DurationSeconds        int    `yaml:"durationSeconds"`
	KeyBits                int    `yaml:"keyBits"`
	RequestIntervalSeconds int    `yaml:"requestIntervalSeconds"`
}

func defaultConfig() config {
	return config{
		HeartbeatSeconds:       5,
		DurationSeconds:        30,
		KeyBits:                256,
		RequestIntervalSeconds: 5,
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	endpoint := flag.String("endpoint", "", "KME endpoint (overrides config)")
	duration := flag.Duration("duration", 0, "probe duration (overrides config)")
	flag.Parse()

	cfg := defaultConfig()
	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "kmeprobe:", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *endpoint != "" {
		cfg.Endpoint = *endpoint
	}
	if *duration > 0 {
		cfg.DurationSeconds = int(duration.Seconds())
	}
	if cfg.Endpoint == "" {
		fmt.Fprintln(os.Stderr, "kmeprobe: an endpoint is required (-endpoint or config)")
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "kmeprobe:", err)
		os.Exit(1)
	}
}

func run(cfg config) error {
	opts := []qukey.KeySourceOption{
		qukey.WithHeartbeatInterval(time.Duration(cfg.HeartbeatSeconds) * time.Second),
		qukey.WithDegradedNotice(func(n *qukey.DegradedModeNotice) {
			fmt.Fprintln(os.Stderr, "kmeprobe:", n.String())
		}),
	}
	if cfg.Strict {
		opts = append(opts, qukey.WithStrictKeys())
	}
	if cfg.SAEID != "" {
		opts = append(opts, qukey.WithSAEID(cfg.SAEID))
	}

	source, err := qukey.NewKeySource(cfg.Endpoint, opts...)
	if err != nil {
		return err
	}
	defer source.Close()

	requestInterval := time.Duration(cfg.RequestIntervalSeconds) * time.Second
	deadline := time.After(time.Duration(cfg.DurationSeconds) * time.Second)
	ticker := time.NewTicker(requestInterval)
	defer ticker.Stop()

	for done := false; !done; {
		select {
		case <-deadline:
			done = true
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), requestInterval)
			km, err := source.RequestKeyMaterial(ctx, cfg.KeyBits, "kmeprobe")
			cancel()
			if err != nil {
				fmt.Fprintln(os.Stderr, "kmeprobe: key request:", err)
				continue
			}
			fmt.Fprintf(os.Stderr, "kmeprobe: %d-bit key (%s)\n", km.BitLength, km.Provenance)
			km.Zero()
		}
	}

	out, err := json.MarshalIndent(source.Statistics(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
