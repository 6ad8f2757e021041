package tasks

import (
	"github.com/barcastaff/cTAKES-mCODE/redis"
	"github.com/barcastaff/cTAKES-mCODE/types"
	"github.com/barcastaff/cTAKES-mCODE/utils"
	"encoding/json"
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"time"
)

const ResultsDB redis.DB = 2

type cacheConfig struct {
	TTLHours int `envconfig:"MCODE_COMN_RESULTS_CACHE_TTL_HOURS" default:"24"`
}

// ResultCache stores extraction results keyed by annotation content and
// engine fingerprint, so reprocessing an unchanged note skips extraction.
type ResultCache struct {
	client redis.Client
	ttl    time.Duration
}

func newResultCache(client redis.Client) (ResultCache, error) {
	var cfg cacheConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return ResultCache{}, fmt.Errorf("failed to read results cache settings: %w", err)
	}
	return ResultCache{
		client: client,
		ttl:    time.Duration(cfg.TTLHours) * time.Hour,
	}, nil
}

func resultsCacheKey(annotation []byte, fingerprint string) string {
	return fmt.Sprintf("mcode-results-%x", utils.HashBytes(annotation, []byte(fingerprint)))
}

func (cache ResultCache) Get(annotation []byte, fingerprint string) (types.FieldTable, bool, error) {
	raw, err := cache.client.GetRaw(resultsCacheKey(annotation, fingerprint))
	if redis.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var table types.FieldTable
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, false, err
	}
	return table, true, nil
}

func (cache ResultCache) Put(annotation []byte, fingerprint string, table types.FieldTable) error {
	raw, err := json.Marshal(table)
	if err != nil {
		return err
	}
	return cache.client.SetRaw(resultsCacheKey(annotation, fingerprint), raw, cache.ttl)
}
