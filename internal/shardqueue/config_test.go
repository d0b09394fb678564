package shardqueue

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Shards != 4 || cfg.QueueSize != 128 || cfg.MaxAttempts != 3 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.EnqueueTimeout != 100*time.Millisecond || cfg.MaxInterval != 5*time.Second {
		t.Fatalf("unexpected timing defaults: %+v", cfg)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SQ_SHARDS", "8")
	t.Setenv("SQ_QUEUE_SIZE", "256")
	t.Setenv("SQ_ENQUEUE_TIMEOUT", "250ms")
	t.Setenv("SQ_MAX_ATTEMPTS", "5")
	t.Setenv("SQ_BASE_BACKOFF", "200ms")
	t.Setenv("SQ_MAX_INTERVAL", "2s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Shards != 8 || cfg.QueueSize != 256 || cfg.MaxAttempts != 5 {
		t.Fatalf("unexpected sizes: %+v", cfg)
	}
	if cfg.EnqueueTimeout != 250*time.Millisecond || cfg.BaseBackoff != 200*time.Millisecond || cfg.MaxInterval != 2*time.Second {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
}
