package models

// UnknownSymbol - метка для ключа, которого нет в справочнике.
const UnknownSymbol = "UNKNOWN"

// Instrument - строка справочника инструментов провайдера.
type Instrument struct {
	InstrumentKey string `json:"instrument_key"`
	TradingSymbol string `json:"trading_symbol"`
	Name          string `json:"name"`
	Segment       string `json:"segment"`
	Exchange      string `json:"exchange"`
}
