package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Universe supplies the symbols to screen in one pass.
type Universe interface {
	Symbols(ctx context.Context) ([]string, error)
}

// CSVUniverse reads symbols from the first column of a header-less CSV file.
// Blank lines and lines starting with '#' are skipped.
type CSVUniverse struct {
	Path string
}

func (u CSVUniverse) Symbols(_ context.Context) ([]string, error) {
	f, err := os.Open(u.Path)
	if err != nil {
		return nil, fmt.Errorf("open universe: %w", err)
	}
	defer f.Close()
	return ReadSymbols(f)
}

// ReadSymbols parses CSV records and returns the upper-cased first column of each.
func ReadSymbols(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	var symbols []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read universe: %w", err)
		}
		if len(rec) == 0 {
			continue
		}
		s := strings.ToUpper(strings.TrimSpace(rec[0]))
		if s == "" {
			continue
		}
		symbols = append(symbols, s)
	}
	return symbols, nil
}

// ExchangeUniverse lists every trading spot symbol quoted in QuoteAsset.
type ExchangeUniverse struct {
	Fetcher    *BinanceFetcher
	QuoteAsset string
}

func (u ExchangeUniverse) Symbols(ctx context.Context) ([]string, error) {
	return u.Fetcher.ListSymbols(ctx, u.QuoteAsset)
}

// StaticUniverse is a fixed symbol list.
type StaticUniverse []string

func (u StaticUniverse) Symbols(_ context.Context) ([]string, error) {
	return append([]string(nil), u...), nil
}
