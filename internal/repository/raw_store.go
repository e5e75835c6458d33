package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"CandleVault/internal/domain/models"
	applogger "CandleVault/pkg/logger"
	"CandleVault/pkg/objstore"
)

// RawObjectStore implements RawStore. Each ingestion run is archived
// verbatim as one JSON object under <prefix>/yyyy=/mm=/dd=/.
type RawObjectStore struct {
	store  objstore.Store
	prefix string
	logger *applogger.Logger
	now    func() time.Time
}

// NewRawObjectStore creates a raw-zone archive store.
func NewRawObjectStore(store objstore.Store, prefix string, log *applogger.Logger) *RawObjectStore {
	if log == nil {
		log = applogger.Nop()
	}
	return &RawObjectStore{
		store:  store,
		prefix: strings.Trim(prefix, "/"),
		logger: log,
		now:    time.Now,
	}
}

// WriteRun archives one run payload and returns the object key.
func (s *RawObjectStore) WriteRun(ctx context.Context, run *models.IngestRun) (string, error) {
	body, err := json.Marshal(run)
	if err != nil {
		return "", &models.StorageError{Op: "write", Key: s.prefix, Err: err}
	}

	at := s.now().UTC()
	key := fmt.Sprintf("%s/yyyy=%d/mm=%02d/dd=%02d/ohlcv_%s.json",
		s.prefix, at.Year(), int(at.Month()), at.Day(), at.Format("20060102T150405Z"))

	if err := s.store.Put(ctx, key, body, "application/json"); err != nil {
		return "", &models.StorageError{Op: "write", Key: key, Err: err}
	}

	s.logger.Info("raw run archived",
		applogger.String("key", key),
		applogger.Int("bytes", len(body)),
	)
	return key, nil
}
