package service

import (
	"os"

	"pivot_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// ReadFile читает JSON-дамп справочника провайдера (массив объектов).
func ReadFile(path string) ([]models.Instrument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read instruments file")
	}
	var list []models.Instrument
	if err = sonic.Unmarshal(raw, &list); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return list, nil
}

// WriteFile - pretty JSON, как его удобно держать в репозитории.
func WriteFile(path string, list []models.Instrument) error {
	raw, err := sonic.ConfigStd.MarshalIndent(list, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode instruments")
	}
	return errors.Wrap(os.WriteFile(path, append(raw, '\n'), 0o644), "write instruments file")
}

// FilterSegment оставляет только инструменты сегмента (NSE_EQ). Пустой сегмент - без фильтра.
func FilterSegment(list []models.Instrument, segment string) []models.Instrument {
	if segment == "" {
		return list
	}
	out := make([]models.Instrument, 0, len(list))
	for _, in := range list {
		if in.Segment == segment {
			out = append(out, in)
		}
	}
	return out
}

func LoadFile(path, segment string) (*Index, error) {
	list, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewIndex(FilterSegment(list, segment)), nil
}
