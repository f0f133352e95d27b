package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/hamed0406/statuswidget/internal/domain"
	"github.com/hamed0406/statuswidget/internal/repo"
)

// SaveObserver is told about every persistence attempt. Optional.
type SaveObserver interface {
	ObserveSave(err error)
}

// Store loads and persists the bounded check history under a single key.
// Storage problems never escape: a bad read yields an empty history and a
// failed write is logged and dropped, leaving the caller's in-memory copy
// authoritative.
type Store struct {
	Storage  repo.Storage
	Key      string
	Logger   *zap.Logger
	Observer SaveObserver
}

func NewStore(logger *zap.Logger, storage repo.Storage, key string) *Store {
	return &Store{Storage: storage, Key: key, Logger: logger}
}

// Load returns the persisted history with malformed entries dropped.
func (s *Store) Load(ctx context.Context) domain.History {
	raw, err := s.Storage.Get(ctx, s.Key)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			s.Logger.Warn("history_load_failed", zap.String("key", s.Key), zap.Error(err))
		}
		return domain.History{}
	}
	h, dropped, err := Decode(raw)
	if err != nil {
		s.Logger.Warn("history_corrupt", zap.String("key", s.Key), zap.Error(err))
		return domain.History{}
	}
	if dropped > 0 {
		s.Logger.Info("history_entries_dropped", zap.String("key", s.Key), zap.Int("dropped", dropped))
	}
	return truncate(h)
}

// Save persists the last HistoryCap entries. Errors are swallowed.
func (s *Store) Save(ctx context.Context, h domain.History) {
	b, err := json.Marshal(truncate(h))
	if err == nil {
		err = s.Storage.Set(ctx, s.Key, b)
	}
	if s.Observer != nil {
		s.Observer.ObserveSave(err)
	}
	if err != nil {
		s.Logger.Warn("history_save_failed", zap.String("key", s.Key), zap.Error(err))
	}
}

// Append returns a new history with r at the end, keeping only the most
// recent HistoryCap entries. The input slice is never modified or aliased.
func Append(h domain.History, r domain.CheckResult) domain.History {
	start := 0
	if n := len(h) + 1; n > domain.HistoryCap {
		start = n - domain.HistoryCap
	}
	out := make(domain.History, 0, len(h)+1-start)
	out = append(out, h[start:]...)
	return append(out, r)
}

func truncate(h domain.History) domain.History {
	if len(h) <= domain.HistoryCap {
		return h
	}
	return h[len(h)-domain.HistoryCap:]
}

// Decode parses a persisted document. Entries that are not objects with a
// numeric "t" and a boolean "ok" are skipped and counted in dropped. An
// error means the document as a whole is not a JSON array.
func Decode(raw []byte) (h domain.History, dropped int, err error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, 0, err
	}
	h = make(domain.History, 0, len(items))
	for _, item := range items {
		cr, ok := decodeEntry(item)
		if !ok {
			dropped++
			continue
		}
		h = append(h, cr)
	}
	return h, dropped, nil
}

func decodeEntry(item json.RawMessage) (domain.CheckResult, bool) {
	dec := json.NewDecoder(bytes.NewReader(item))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return domain.CheckResult{}, false
	}
	num, ok := fields["t"].(json.Number)
	if !ok {
		return domain.CheckResult{}, false
	}
	success, ok := fields["ok"].(bool)
	if !ok {
		return domain.CheckResult{}, false
	}
	ts, err := num.Int64()
	if err != nil {
		// fractional timestamps are still numbers; keep the whole millis
		f, ferr := num.Float64()
		if ferr != nil || f < math.MinInt64 || f >= math.MaxInt64 {
			return domain.CheckResult{}, false
		}
		ts = int64(f)
	}
	return domain.CheckResult{Timestamp: ts, Success: success}, true
}
