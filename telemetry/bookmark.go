package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkScatter        BookmarkType = "scatter"
	BookmarkTighten        BookmarkType = "tighten"
	BookmarkPredatorStrike BookmarkType = "predator_strike"
	BookmarkCoherent       BookmarkType = "coherent"
)

// Bookmark marks a stats window worth looking at.
type Bookmark struct {
	Type        BookmarkType
	Frame       uint64
	Description string
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"description", b.Description,
	)
}

// coherentWindows is how many aligned windows in a row raise BookmarkCoherent.
const coherentWindows = 5

// BookmarkDetector flags sudden changes in flock shape.
type BookmarkDetector struct {
	history     []FlockStats
	historySize int
	historyIdx  int
	historyFull bool

	lastNearPredator int
	coherentCount    int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]FlockStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest window and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats FlockStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkScatter(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkTighten(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkPredatorStrike(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkCoherent(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	bd.lastNearPredator = stats.NearPredator
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats FlockStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []FlockStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// historyMean averages one field over the history; ok is false until three
// windows have been seen.
func (bd *BookmarkDetector) historyMean(get func(FlockStats) float64) (mean float64, ok bool) {
	history := bd.getHistory()
	if len(history) < 3 {
		return 0, false
	}
	values := make([]float64, len(history))
	for i, h := range history {
		values[i] = get(h)
	}
	return stat.Mean(values, nil), true
}

// checkScatter fires when polarization halves against a well-aligned average.
func (bd *BookmarkDetector) checkScatter(stats FlockStats) *Bookmark {
	avg, ok := bd.historyMean(func(s FlockStats) float64 { return s.Polarization })
	if !ok || avg < 0.5 {
		return nil
	}
	if stats.Polarization < avg*0.5 {
		return &Bookmark{
			Type:        BookmarkScatter,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Polarization fell to %.2f from average %.2f", stats.Polarization, avg),
		}
	}
	return nil
}

// checkTighten fires when the spread halves against its average.
func (bd *BookmarkDetector) checkTighten(stats FlockStats) *Bookmark {
	avg, ok := bd.historyMean(func(s FlockStats) float64 { return s.Spread })
	if !ok || avg == 0 {
		return nil
	}
	if stats.Spread < avg*0.5 {
		return &Bookmark{
			Type:        BookmarkTighten,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Spread shrank to %.1f from average %.1f", stats.Spread, avg),
		}
	}
	return nil
}

// checkPredatorStrike fires on the first window with birds inside the prey radius.
func (bd *BookmarkDetector) checkPredatorStrike(stats FlockStats) *Bookmark {
	if stats.NearPredator > 0 && bd.lastNearPredator == 0 {
		return &Bookmark{
			Type:        BookmarkPredatorStrike,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("%d of %d birds inside the prey radius", stats.NearPredator, stats.Agents),
		}
	}
	return nil
}

// checkCoherent fires once after coherentWindows aligned windows in a row.
func (bd *BookmarkDetector) checkCoherent(stats FlockStats) *Bookmark {
	if stats.Polarization < 0.9 {
		bd.coherentCount = 0
		return nil
	}
	bd.coherentCount++
	if bd.coherentCount == coherentWindows {
		return &Bookmark{
			Type:        BookmarkCoherent,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Polarization above 0.9 for %d windows", coherentWindows),
		}
	}
	return nil
}
