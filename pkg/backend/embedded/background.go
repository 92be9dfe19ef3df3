package embedded

import (
	"time"

	"github.com/rs/zerolog/log"
)

// StartBackgroundWorkers starts the periodic snapshot worker
func (e *Engine) StartBackgroundWorkers() {
	if !e.backgroundSave || e.dataFile == "" {
		return
	}

	e.backgroundWg.Add(1)
	go func() {
		defer e.backgroundWg.Done()
		ticker := time.NewTicker(e.saveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				e.saveIfDirty()
			case <-e.stopChan:
				return
			}
		}
	}()
}

// StopBackgroundWorkers stops background workers
func (e *Engine) StopBackgroundWorkers() {
	select {
	case <-e.stopChan:
		// Channel already closed, do nothing
	default:
		close(e.stopChan)
	}
	e.backgroundWg.Wait()
}

func (e *Engine) saveIfDirty() {
	e.mu.RLock()
	dirty := e.dirty
	e.mu.RUnlock()
	if !dirty {
		return
	}
	if err := e.SaveToFile(e.dataFile); err != nil {
		log.Error().Err(err).Str("file", e.dataFile).Msg("background save failed")
		return
	}
	log.Debug().Str("file", e.dataFile).Msg("background save complete")
}
