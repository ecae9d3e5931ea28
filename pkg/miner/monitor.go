package miner

import "time"

// periodicLogger rewrites the status line every LogInterval until stop is
// closed or a match is found.
func (m *Miner) periodicLogger(stop <-chan struct{}, workers int) {
	ticker := time.NewTicker(m.config.LogInterval)
	defer ticker.Stop()
	defer m.logger.EndStatus()

	last := m.state.Checked()
	lastTick := time.Now()
	for {
		select {
		case now := <-ticker.C:
			if m.state.Found() {
				return
			}
			checked := m.state.Checked()
			elapsed := now.Sub(lastTick)

			// Calculate rate safely
			rate := 0.0
			if elapsed.Seconds() > 0 {
				rate = float64(checked-last) / elapsed.Seconds()
			}
			m.logger.Status("Checked: %d | Speed: %.0f keys/sec | Threads: %d", checked, rate, workers)

			last, lastTick = checked, now
		case <-stop:
			return
		}
	}
}
