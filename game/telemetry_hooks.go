package game

import (
	"log/slog"

	"github.com/pthm-cable/murmur/telemetry"
)

// flushTelemetry publishes a closed stats window: callback, logs, CSV and
// bookmarks.
func (g *Game) flushTelemetry(stats telemetry.FlockStats) {
	g.lastStats = stats
	perfStats := g.driver.Perf().Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}
