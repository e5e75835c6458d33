package repository

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"CandleVault/internal/domain/models"
	drepo "CandleVault/internal/domain/repository"
	applogger "CandleVault/pkg/logger"
	"CandleVault/pkg/objstore"
	"CandleVault/pkg/util"
)

var csvHeader = []string{"timestamp", "open", "high", "low", "close", "volume"}

// ObjectPartitionStore implements PartitionStore on top of an object store.
// Candles live under <prefix>/symbol=<S>/year=<Y>/month=<M>/day=<D>/ as
// gzip-compressed CSV objects. Writers never overwrite: each write lands in
// a new timestamped object and reads resolve duplicates newest-object-wins.
type ObjectPartitionStore struct {
	store   objstore.Store
	prefix  string
	metrics drepo.Metrics
	logger  *applogger.Logger
	now     func() time.Time
}

// PartitionOption configures ObjectPartitionStore.
type PartitionOption func(*ObjectPartitionStore)

// WithMetrics wires a metrics recorder.
func WithMetrics(m drepo.Metrics) PartitionOption {
	return func(s *ObjectPartitionStore) {
		s.metrics = m
	}
}

// WithClock overrides the wall clock used for object names.
func WithClock(now func() time.Time) PartitionOption {
	return func(s *ObjectPartitionStore) {
		s.now = now
	}
}

// NewObjectPartitionStore creates a partitioned candle store.
func NewObjectPartitionStore(store objstore.Store, prefix string, log *applogger.Logger, opts ...PartitionOption) *ObjectPartitionStore {
	if log == nil {
		log = applogger.Nop()
	}
	s := &ObjectPartitionStore{
		store:  store,
		prefix: strings.Trim(prefix, "/"),
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ObjectPartitionStore) dayPrefix(symbol string, date time.Time) string {
	d := date.UTC()
	return fmt.Sprintf("%s/symbol=%s/year=%d/month=%02d/day=%02d/",
		s.prefix, symbol, d.Year(), int(d.Month()), d.Day())
}

// Write persists one symbol-day partition as a new gzip CSV object.
func (s *ObjectPartitionStore) Write(ctx context.Context, symbol string, date time.Time, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	body, err := encodeCandlesCSV(candles)
	if err != nil {
		return &models.StorageError{Op: "write", Key: symbol, Err: err}
	}

	key := s.dayPrefix(symbol, date) + "data_" + s.now().UTC().Format("20060102T150405Z") + ".csv.gz"

	start := time.Now()
	err = s.store.Put(ctx, key, body, "application/gzip")
	s.observe("write", start)
	if err != nil {
		return &models.StorageError{Op: "write", Key: key, Err: err}
	}

	s.logger.Debug("partition written",
		applogger.String("key", key),
		applogger.Int("candles", len(candles)),
	)
	return nil
}

// Read merges all partitions of symbol across [from, to] calendar days.
// Duplicate timestamps resolve to the newest object's row. Missing days
// contribute nothing.
func (s *ObjectPartitionStore) Read(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	merged := make(map[int64]models.Candle)

	for _, day := range util.DaysInRange(from, to) {
		start := time.Now()
		infos, err := s.store.List(ctx, s.dayPrefix(symbol, day))
		s.observe("list", start)
		if err != nil {
			return nil, &models.StorageError{Op: "list", Key: symbol, Err: err}
		}

		// List is key-sorted and object names embed the write time, so
		// later objects overwrite earlier rows.
		for _, info := range infos {
			if !strings.HasSuffix(info.Key, ".csv.gz") {
				continue
			}
			candles, err := s.readObject(ctx, info.Key)
			if err != nil {
				return nil, err
			}
			for _, c := range candles {
				merged[c.Timestamp] = c
			}
		}
	}

	out := make([]models.Candle, 0, len(merged))
	for _, c := range merged {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// ListSymbols reports the symbols that have at least one partition for the
// given day.
func (s *ObjectPartitionStore) ListSymbols(ctx context.Context, date time.Time) ([]string, error) {
	start := time.Now()
	prefixes, err := s.store.ListPrefixes(ctx, s.prefix+"/")
	s.observe("list", start)
	if err != nil {
		return nil, &models.StorageError{Op: "list", Key: s.prefix, Err: err}
	}

	symbols := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		seg := strings.Trim(strings.TrimPrefix(p, s.prefix+"/"), "/")
		if !strings.HasPrefix(seg, "symbol=") {
			continue
		}
		symbol := strings.TrimPrefix(seg, "symbol=")

		infos, err := s.store.List(ctx, s.dayPrefix(symbol, date))
		if err != nil {
			return nil, &models.StorageError{Op: "list", Key: symbol, Err: err}
		}
		if len(infos) > 0 {
			symbols = append(symbols, symbol)
		}
	}

	sort.Strings(symbols)
	return symbols, nil
}

func (s *ObjectPartitionStore) readObject(ctx context.Context, key string) ([]models.Candle, error) {
	start := time.Now()
	data, err := s.store.Get(ctx, key)
	s.observe("read", start)
	if err != nil {
		if errors.Is(err, objstore.ErrNotExist) {
			return nil, nil
		}
		return nil, &models.StorageError{Op: "read", Key: key, Err: err}
	}

	candles, err := decodeCandlesCSV(bytes.NewReader(data))
	if err != nil {
		return nil, &models.StorageError{Op: "read", Key: key, Err: err}
	}
	return candles, nil
}

func (s *ObjectPartitionStore) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordStorageLatency(op, time.Since(start).Seconds())
	}
}

func encodeCandlesCSV(candles []models.Candle) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	w := csv.NewWriter(gz)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, c := range candles {
		row := []string{
			strconv.FormatInt(c.Timestamp, 10),
			strconv.FormatFloat(c.Open, 'f', -1, 64),
			strconv.FormatFloat(c.High, 'f', -1, 64),
			strconv.FormatFloat(c.Low, 'f', -1, 64),
			strconv.FormatFloat(c.Close, 'f', -1, 64),
			strconv.FormatInt(c.Volume, 10),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeCandlesCSV(r io.Reader) ([]models.Candle, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer gz.Close()

	cr := csv.NewReader(gz)
	cr.FieldsPerRecord = len(csvHeader)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	candles := make([]models.Candle, 0, len(rows)-1)
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		c, err := parseCandleRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func parseCandleRow(row []string) (models.Candle, error) {
	ts, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return models.Candle{}, fmt.Errorf("timestamp: %w", err)
	}
	vals := make([]float64, 4)
	for i, name := range []string{"open", "high", "low", "close"} {
		v, err := strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("%s: %w", name, err)
		}
		vals[i] = v
	}
	volume, err := strconv.ParseInt(row[5], 10, 64)
	if err != nil {
		return models.Candle{}, fmt.Errorf("volume: %w", err)
	}
	return models.Candle{
		Timestamp: ts,
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    volume,
	}, nil
}
