package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-arena/internal/fileutil"
	"github.com/lox/holdem-arena/internal/session"
)

const handsFilename = "hands.jsonl"

// maxFlushFailures disables a game's recording after this many
// consecutive flush errors, dropping its buffer.
const maxFlushFailures = 3

// DirConfig tunes the JSONL directory recorder.
type DirConfig struct {
	BaseDir       string
	FlushInterval time.Duration
	FlushHands    int // buffered hands that trigger an early flush
}

// DirRecorder appends settled hands as JSON lines, one file per game
// under BaseDir/game-<id>/. Writes are buffered and flushed on a timer,
// at a buffer threshold, and on Shutdown.
type DirRecorder struct {
	cfg    DirConfig
	logger *log.Logger

	mu      sync.Mutex
	buffers map[string]*gameBuffer

	flushReq chan struct{}
	stop     chan struct{}
	wg       sync.WaitGroup
}

type gameBuffer struct {
	id       string
	dir      string
	path     string
	records  []session.HandRecord
	written  int // hands flushed to disk so far
	lastHand int
	failures int
	disabled bool
}

// gameMeta is the sidecar summary rewritten after each flush.
type gameMeta struct {
	GameID        string    `json:"game_id"`
	HandsRecorded int       `json:"hands_recorded"`
	LastHand      int       `json:"last_hand_number"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewDirRecorder creates the base directory and starts the flush loop.
func NewDirRecorder(cfg DirConfig, logger *log.Logger) (*DirRecorder, error) {
	if cfg.BaseDir == "" {
		cfg.BaseDir = "hands"
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 10 * time.Second
	}
	if cfg.FlushHands <= 0 {
		cfg.FlushHands = 10
	}
	if err := fileutil.EnsureDir(cfg.BaseDir); err != nil {
		return nil, err
	}

	r := &DirRecorder{
		cfg:      cfg,
		logger:   logger.WithPrefix("history"),
		buffers:  make(map[string]*gameBuffer),
		flushReq: make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
	r.wg.Add(1)
	go r.run()
	return r, nil
}

// RecordHand buffers the hand for its game's file.
func (r *DirRecorder) RecordHand(_ context.Context, rec session.HandRecord) error {
	r.mu.Lock()
	buf, ok := r.buffers[rec.GameID]
	if !ok {
		dir := filepath.Join(r.cfg.BaseDir, "game-"+rec.GameID)
		if err := fileutil.EnsureDir(dir); err != nil {
			r.mu.Unlock()
			return err
		}
		buf = &gameBuffer{id: rec.GameID, dir: dir, path: filepath.Join(dir, handsFilename)}
		r.buffers[rec.GameID] = buf
	}
	if buf.disabled {
		r.mu.Unlock()
		return nil
	}
	buf.records = append(buf.records, rec)
	full := len(buf.records) >= r.cfg.FlushHands
	r.mu.Unlock()

	if full {
		r.requestFlush()
	}
	return nil
}

// Shutdown stops the flush loop and writes out everything buffered.
func (r *DirRecorder) Shutdown() {
	close(r.stop)
	r.wg.Wait()
	r.flushAll()
}

func (r *DirRecorder) run() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.flushAll()
		case <-r.flushReq:
			r.flushAll()
		case <-r.stop:
			return
		}
	}
}

func (r *DirRecorder) requestFlush() {
	select {
	case r.flushReq <- struct{}{}:
	default:
	}
}

func (r *DirRecorder) flushAll() {
	r.mu.Lock()
	snapshot := make(map[string]*gameBuffer, len(r.buffers))
	for id, buf := range r.buffers {
		snapshot[id] = buf
	}
	r.mu.Unlock()

	for id, buf := range snapshot {
		if err := r.flushGame(buf); err != nil {
			r.logger.Error("hand history flush failed", "game", id, "error", err)
			if dropped := r.noteFailure(buf); dropped > 0 {
				r.logger.Error("hand history disabled after repeated failures",
					"game", id, "dropped_hands", dropped)
			}
		}
	}
}

// flushGame appends the buffered records to the game's file. The buffer
// empties only after every line is written.
func (r *DirRecorder) flushGame(buf *gameBuffer) error {
	r.mu.Lock()
	if buf.disabled || len(buf.records) == 0 {
		r.mu.Unlock()
		return nil
	}
	records := append([]session.HandRecord(nil), buf.records...)
	r.mu.Unlock()

	file, err := os.OpenFile(buf.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding hand %d: %w", rec.HandNumber, err)
		}
	}
	if err := file.Sync(); err != nil {
		return err
	}

	r.mu.Lock()
	buf.records = buf.records[len(records):]
	buf.failures = 0
	buf.written += len(records)
	buf.lastHand = records[len(records)-1].HandNumber
	meta := gameMeta{
		GameID:        buf.id,
		HandsRecorded: buf.written,
		LastHand:      buf.lastHand,
		UpdatedAt:     time.Now(),
	}
	metaPath := filepath.Join(buf.dir, "meta.json")
	r.mu.Unlock()

	// The sidecar is a rewrite, not an append; keep it atomic so readers
	// never see a torn summary. Failure here is not worth re-flushing.
	data, err := json.MarshalIndent(meta, "", "  ")
	if err == nil {
		if err := fileutil.WriteFileAtomic(metaPath, data, 0o644); err != nil {
			r.logger.Warn("meta write failed", "game", buf.id, "error", err)
		}
	}
	return nil
}

func (r *DirRecorder) noteFailure(buf *gameBuffer) (dropped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	buf.failures++
	if buf.failures >= maxFlushFailures {
		dropped = len(buf.records)
		buf.records = nil
		buf.disabled = true
	}
	return dropped
}
