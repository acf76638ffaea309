package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"mining-dispatch/internal/backtest"
)

// ResultStore keeps recent backtest results so their ledgers can be fetched
// by id after the fact. Entries expire after ttl.
type ResultStore struct {
	cache *cache.Cache
}

func NewResultStore(ttl time.Duration) *ResultStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResultStore{cache: cache.New(ttl, 2*ttl)}
}

// Put stores res and returns its id.
func (s *ResultStore) Put(res *backtest.Result) string {
	id := uuid.NewString()
	s.cache.SetDefault(id, res)
	return id
}

func (s *ResultStore) Get(id string) (*backtest.Result, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	res, ok := v.(*backtest.Result)
	return res, ok
}
