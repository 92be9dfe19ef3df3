package embedded

import "time"

type Option func(*Engine)

// WithDataFile sets the snapshot file used by Save/Load and the background saver
func WithDataFile(path string) Option {
	return func(engine *Engine) {
		engine.dataFile = path
	}
}

// WithBackgroundSave enables periodic snapshots of a dirty engine
func WithBackgroundSave(interval time.Duration) Option {
	return func(engine *Engine) {
		engine.backgroundSave = interval > 0
		engine.saveInterval = interval
	}
}

// WithDefaultSettings sets the settings of auto-created indices
func WithDefaultSettings(shards, replicas int) Option {
	return func(engine *Engine) {
		engine.defaults.Shards = shards
		engine.defaults.Replicas = replicas
	}
}
