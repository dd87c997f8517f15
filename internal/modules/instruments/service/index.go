package service

import (
	"sort"
	"strings"

	"pivot_bot/internal/models"
)

// Lookup - справочник symbol <-> instrument key, точное совпадение.
type Lookup interface {
	Symbol(instrumentKey string) string
	Key(symbol string) (string, bool)
	All() []models.Instrument
}

// Index - неизменяемый in-memory справочник, общий для файла и Postgres.
type Index struct {
	byKey    map[string]models.Instrument
	bySymbol map[string]string
	all      []models.Instrument
}

func NewIndex(list []models.Instrument) *Index {
	idx := &Index{
		byKey:    make(map[string]models.Instrument, len(list)),
		bySymbol: make(map[string]string, len(list)),
	}
	for _, in := range list {
		if in.InstrumentKey == "" {
			continue
		}
		if _, dup := idx.byKey[in.InstrumentKey]; dup {
			continue
		}
		idx.byKey[in.InstrumentKey] = in
		if in.TradingSymbol != "" {
			idx.bySymbol[strings.ToUpper(in.TradingSymbol)] = in.InstrumentKey
		}
		idx.all = append(idx.all, in)
	}
	sort.SliceStable(idx.all, func(i, j int) bool { return idx.all[i].TradingSymbol < idx.all[j].TradingSymbol })
	return idx
}

// Symbol - trading symbol по ключу или models.UnknownSymbol.
func (x *Index) Symbol(instrumentKey string) string {
	if in, ok := x.byKey[instrumentKey]; ok && in.TradingSymbol != "" {
		return in.TradingSymbol
	}
	return models.UnknownSymbol
}

func (x *Index) Key(symbol string) (string, bool) {
	k, ok := x.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	return k, ok
}

func (x *Index) All() []models.Instrument {
	out := make([]models.Instrument, len(x.all))
	copy(out, x.all)
	return out
}

func (x *Index) Len() int { return len(x.all) }

// Keys - ключи всех инструментов в порядке All().
func Keys(list []models.Instrument) []string {
	keys := make([]string, 0, len(list))
	for _, in := range list {
		keys = append(keys, in.InstrumentKey)
	}
	return keys
}
