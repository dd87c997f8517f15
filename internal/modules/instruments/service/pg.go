package service

import (
	"context"

	"pivot_bot/internal/models"
	"pivot_bot/pkg/db"

	"github.com/pkg/errors"
)

const (
	createTableSQL = `
CREATE TABLE IF NOT EXISTS instruments (
	instrument_key TEXT PRIMARY KEY,
	trading_symbol TEXT NOT NULL,
	name           TEXT NOT NULL DEFAULT '',
	segment        TEXT NOT NULL,
	exchange       TEXT NOT NULL DEFAULT ''
)`

	selectSQL = `
SELECT instrument_key, trading_symbol, name, segment, exchange
FROM instruments
WHERE ($1 = '' OR segment = $1)
ORDER BY trading_symbol`

	upsertSQL = `
INSERT INTO instruments (instrument_key, trading_symbol, name, segment, exchange)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (instrument_key) DO UPDATE
SET trading_symbol = EXCLUDED.trading_symbol,
    name = EXCLUDED.name,
    segment = EXCLUDED.segment,
    exchange = EXCLUDED.exchange`
)

// Store - таблица instruments в Postgres.
type Store struct {
	tx db.TxManager
}

func NewStore(tx db.TxManager) *Store {
	return &Store{tx: tx}
}

func (s *Store) Load(ctx context.Context, segment string) ([]models.Instrument, error) {
	rows, err := s.tx.Conn().Query(ctx, selectSQL, segment)
	if err != nil {
		return nil, errors.Wrap(err, "select instruments")
	}
	defer rows.Close()

	var list []models.Instrument
	for rows.Next() {
		var in models.Instrument
		if err = rows.Scan(&in.InstrumentKey, &in.TradingSymbol, &in.Name, &in.Segment, &in.Exchange); err != nil {
			return nil, errors.Wrap(err, "scan instrument")
		}
		list = append(list, in)
	}
	return list, errors.Wrap(rows.Err(), "iterate instruments")
}

// Upsert создаёт таблицу при необходимости и записывает справочник одной транзакцией.
func (s *Store) Upsert(ctx context.Context, list []models.Instrument) (int, error) {
	n := 0
	err := s.tx.RunMaster(ctx, func(ctx context.Context, tx db.Transaction) error {
		if _, err := tx.Exec(ctx, createTableSQL); err != nil {
			return errors.Wrap(err, "create table")
		}
		for _, in := range list {
			if _, err := tx.Exec(ctx, upsertSQL, in.InstrumentKey, in.TradingSymbol, in.Name, in.Segment, in.Exchange); err != nil {
				return errors.Wrapf(err, "upsert %s", in.InstrumentKey)
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func LoadStore(ctx context.Context, s *Store, segment string) (*Index, error) {
	list, err := s.Load(ctx, segment)
	if err != nil {
		return nil, err
	}
	return NewIndex(list), nil
}
