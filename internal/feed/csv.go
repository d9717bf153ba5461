package feed

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"backtestcore/internal/model"
)

// Rows that are too short, have a blank or unrecognised side, or hold an
// unparsable timestamp, price or amount are skipped, not fatal; the reader
// logs a warning and continues. An error from the underlying CSV reader
// itself fails the whole load.

// BookCSVReader replays a book-update CSV file (spec §6): header row then
// `exch_timestamp_us, local_timestamp_us, is_snapshot, side, price, amount`.
// amount == 0 deletes the level; a blank local_timestamp column is
// synthesised as exch_timestamp + marketFeedLatencyUs; a blank side skips
// the row with a warning.
type BookCSVReader struct {
	assetId model.AssetId
	rows    []model.BookUpdate
	idx     int
}

// NewBookCSVReader parses the whole file eagerly; replay files are
// expected to fit comfortably in memory, matching the original reader's
// own in-memory vector-backed design.
func NewBookCSVReader(assetId model.AssetId, path string, marketFeedLatencyUs model.Timestamp, logger zerolog.Logger) (*BookCSVReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := parseBookCSV(assetId, f, marketFeedLatencyUs, logger)
	if err != nil {
		return nil, err
	}
	return &BookCSVReader{assetId: assetId, rows: rows}, nil
}

func parseBookCSV(assetId model.AssetId, r io.Reader, marketFeedLatencyUs model.Timestamp, logger zerolog.Logger) ([]model.BookUpdate, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil { // header
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	var out []model.BookUpdate
	for lineNo := 2; ; lineNo++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 5 {
			logger.Warn().Int("line", lineNo).Msg("book update row too short, skipping")
			continue
		}

		sideStr := strings.ToLower(strings.TrimSpace(record[3]))
		if sideStr == "" {
			logger.Warn().Int("line", lineNo).Msg("book update row missing side, skipping")
			continue
		}
		var side model.Side
		switch sideStr {
		case "bid":
			side = model.Bid
		case "ask":
			side = model.Ask
		default:
			logger.Warn().Int("line", lineNo).Str("side", sideStr).Msg("unrecognised side, skipping")
			continue
		}

		exchTs, err := strconv.ParseUint(strings.TrimSpace(record[0]), 10, 64)
		if err != nil {
			logger.Warn().Int("line", lineNo).Err(err).Msg("bad exch_timestamp, skipping")
			continue
		}

		localTs := exchTs + marketFeedLatencyUs
		if strings.TrimSpace(record[1]) != "" {
			if parsed, err := strconv.ParseUint(strings.TrimSpace(record[1]), 10, 64); err == nil {
				localTs = parsed
			}
		}

		isSnapshot := strings.EqualFold(strings.TrimSpace(record[2]), "true")
		kind := model.Incremental
		if isSnapshot {
			kind = model.Snapshot
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
		if err != nil {
			logger.Warn().Int("line", lineNo).Err(err).Msg("bad price, skipping")
			continue
		}
		var qty float64
		if len(record) > 5 {
			qty, err = strconv.ParseFloat(strings.TrimSpace(record[5]), 64)
			if err != nil {
				logger.Warn().Int("line", lineNo).Err(err).Msg("bad amount, skipping")
				continue
			}
		}

		out = append(out, model.BookUpdate{
			AssetId:        assetId,
			ExchTimestamp:  exchTs,
			LocalTimestamp: localTs,
			Kind:           kind,
			Side:           side,
			Price:          price,
			Quantity:       qty,
		})
	}
	return out, nil
}

func (r *BookCSVReader) Peek() (model.Event, bool) {
	if r.idx >= len(r.rows) {
		return model.Event{}, false
	}
	return model.Event{Kind: model.BookUpdateEvent, BookUpdate: r.rows[r.idx]}, true
}

func (r *BookCSVReader) Next() (model.Event, bool) {
	ev, ok := r.Peek()
	if ok {
		r.idx++
	}
	return ev, ok
}

// TradeCSVReader replays a trade CSV file (spec §6): header row then
// `exch_timestamp_us, local_timestamp_us, id, side, price, amount`. Side
// is the taker side.
type TradeCSVReader struct {
	assetId model.AssetId
	rows    []model.Trade
	idx     int
}

func NewTradeCSVReader(assetId model.AssetId, path string, marketFeedLatencyUs model.Timestamp, logger zerolog.Logger) (*TradeCSVReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := parseTradeCSV(assetId, f, marketFeedLatencyUs, logger)
	if err != nil {
		return nil, err
	}
	return &TradeCSVReader{assetId: assetId, rows: rows}, nil
}

func parseTradeCSV(assetId model.AssetId, r io.Reader, marketFeedLatencyUs model.Timestamp, logger zerolog.Logger) ([]model.Trade, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	var out []model.Trade
	for lineNo := 2; ; lineNo++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 6 {
			logger.Warn().Int("line", lineNo).Msg("trade row too short, skipping")
			continue
		}

		sideStr := strings.ToLower(strings.TrimSpace(record[3]))
		if sideStr == "" {
			logger.Warn().Int("line", lineNo).Msg("trade row missing side, skipping")
			continue
		}
		var side model.TradeSide
		switch sideStr {
		case "buy":
			side = model.Buy
		case "sell":
			side = model.Sell
		default:
			logger.Warn().Int("line", lineNo).Str("side", sideStr).Msg("unrecognised side, skipping")
			continue
		}

		exchTs, err := strconv.ParseUint(strings.TrimSpace(record[0]), 10, 64)
		if err != nil {
			logger.Warn().Int("line", lineNo).Err(err).Msg("bad exch_timestamp, skipping")
			continue
		}
		localTs := exchTs + marketFeedLatencyUs
		if strings.TrimSpace(record[1]) != "" {
			if parsed, err := strconv.ParseUint(strings.TrimSpace(record[1]), 10, 64); err == nil {
				localTs = parsed
			}
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
		if err != nil {
			logger.Warn().Int("line", lineNo).Err(err).Msg("bad price, skipping")
			continue
		}
		qty, err := strconv.ParseFloat(strings.TrimSpace(record[5]), 64)
		if err != nil {
			logger.Warn().Int("line", lineNo).Err(err).Msg("bad amount, skipping")
			continue
		}

		out = append(out, model.Trade{
			AssetId:        assetId,
			ExchTimestamp:  exchTs,
			LocalTimestamp: localTs,
			TakerSide:      side,
			Price:          price,
			Quantity:       qty,
			Id:             strings.TrimSpace(record[2]),
		})
	}
	return out, nil
}

func (r *TradeCSVReader) Peek() (model.Event, bool) {
	if r.idx >= len(r.rows) {
		return model.Event{}, false
	}
	return model.Event{Kind: model.TradeEvent, Trade: r.rows[r.idx]}, true
}

func (r *TradeCSVReader) Next() (model.Event, bool) {
	ev, ok := r.Peek()
	if ok {
		r.idx++
	}
	return ev, ok
}

// defaultLogger is used by callers that don't care about parse warnings.
var defaultLogger = log.Logger
