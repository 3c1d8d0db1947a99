package broker

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	trderrors "dhan-signal-trader/internal/errors"
	"dhan-signal-trader/internal/models"
)

// scrip is one row of the Dhan instrument master relevant to index
// options.
type scrip struct {
	SecurityID string
	Exchange   models.Exchange
	Underlying string
	Strike     float64
	OptionType string
	Expiry     time.Time
	LotSize    int
	TickSize   float64
}

// ScripMaster resolves canonical symbols against the Dhan scrip-master
// CSV. The CSV is cached on disk and refreshed once per trading day.
type ScripMaster struct {
	url       string
	cachePath string
	client    *http.Client
	logger    zerolog.Logger

	scrips []scrip
	now    func() time.Time
}

// NewScripMaster creates a resolver over the Dhan instrument master.
func NewScripMaster(url, cachePath string, logger zerolog.Logger) *ScripMaster {
	return &ScripMaster{
		url:       url,
		cachePath: cachePath,
		client:    &http.Client{Timeout: 60 * time.Second},
		logger:    logger,
		now:       time.Now,
	}
}

// Load refreshes the cached CSV if stale and parses it into memory.
func (m *ScripMaster) Load(ctx context.Context) error {
	if err := m.refresh(ctx); err != nil {
		// A stale cache still beats no data during market hours.
		if _, statErr := os.Stat(m.cachePath); statErr != nil {
			return fmt.Errorf("scrip master unavailable: %w", err)
		}
		m.logger.Warn().Err(err).Msg("Scrip master download failed, using cached copy")
	}

	f, err := os.Open(m.cachePath)
	if err != nil {
		return fmt.Errorf("failed to open scrip master: %w", err)
	}
	defer f.Close()

	scrips, err := parseScripCSV(f)
	if err != nil {
		return fmt.Errorf("failed to parse scrip master: %w", err)
	}

	m.scrips = scrips
	m.logger.Info().Int("contracts", len(scrips)).Msg("Scrip master loaded")
	return nil
}

// refresh downloads the master CSV unless today's copy is already cached.
func (m *ScripMaster) refresh(ctx context.Context) error {
	if info, err := os.Stat(m.cachePath); err == nil {
		y1, m1, d1 := info.ModTime().Date()
		y2, m2, d2 := m.now().Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			return nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.url, nil)
	if err != nil {
		return err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("scrip master download returned %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(m.cachePath), 0755); err != nil {
		return err
	}

	tmp := m.cachePath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, m.cachePath)
}

// Column names in the Dhan master CSV.
const (
	colSecurityID = "SEM_SMST_SECURITY_ID"
	colExchange   = "SEM_EXM_EXCH_ID"
	colSymbol     = "SEM_TRADING_SYMBOL"
	colExpiry     = "SEM_EXPIRY_DATE"
	colInstrument = "SEM_INSTRUMENT_NAME"
	colLotUnits   = "SEM_LOT_UNITS"
	colStrike     = "SEM_STRIKE_PRICE"
	colOptionType = "SEM_OPTION_TYPE"
	colTickSize   = "SEM_TICK_SIZE"
)

func parseScripCSV(r io.Reader) ([]scrip, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colSecurityID, colExchange, colSymbol, colExpiry, colInstrument, colLotUnits, colStrike, colOptionType} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("scrip master missing column %s", required)
		}
	}

	field := func(row []string, name string) string {
		i := idx[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var scrips []scrip
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed rows in the vendor CSV are routine; skip them.
			continue
		}

		if inst := field(row, colInstrument); inst != "OPTIDX" {
			continue
		}

		strike, err := strconv.ParseFloat(field(row, colStrike), 64)
		if err != nil || strike <= 0 {
			continue
		}
		lot, err := strconv.Atoi(field(row, colLotUnits))
		if err != nil || lot <= 0 {
			continue
		}
		expiry, err := parseExpiry(field(row, colExpiry))
		if err != nil {
			continue
		}

		exchange := models.NSEFNO
		if strings.HasPrefix(field(row, colExchange), "BSE") {
			exchange = models.BSEFNO
		}

		tick, _ := strconv.ParseFloat(field(row, colTickSize), 64)
		if tick <= 0 {
			tick = 0.05
		}

		symbol := field(row, colSymbol)
		scrips = append(scrips, scrip{
			SecurityID: field(row, colSecurityID),
			Exchange:   exchange,
			Underlying: underlyingFromSymbol(symbol),
			Strike:     strike,
			OptionType: field(row, colOptionType),
			Expiry:     expiry,
			LotSize:    lot,
			TickSize:   tick,
		})
	}
	return scrips, nil
}

func parseExpiry(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized expiry %q", s)
}

func underlyingFromSymbol(symbol string) string {
	symbol = strings.ToUpper(symbol)
	for _, u := range []string{"BANKNIFTY", "FINNIFTY", "MIDCPNIFTY", "NIFTY", "SENSEX"} {
		if strings.HasPrefix(symbol, u) {
			return u
		}
	}
	if i := strings.IndexAny(symbol, " -0123456789"); i > 0 {
		return symbol[:i]
	}
	return symbol
}

// Resolve maps a canonical symbol like "NIFTY 03 DEC 24000 CE" to its
// contract. Expiry is matched exactly when the master has the contract,
// otherwise the nearest later expiry of the same strike is used.
func (m *ScripMaster) Resolve(ctx context.Context, symbol string) (models.Instrument, error) {
	underlying, expiry, strike, optType, err := splitSymbol(symbol, m.now())
	if err != nil {
		return models.Instrument{}, err
	}

	var exact, nearest *scrip
	for i := range m.scrips {
		s := &m.scrips[i]
		if s.Underlying != underlying || s.OptionType != optType || int(s.Strike) != strike {
			continue
		}
		if sameDate(s.Expiry, expiry) {
			exact = s
			break
		}
		if s.Expiry.After(expiry) && (nearest == nil || s.Expiry.Before(nearest.Expiry)) {
			nearest = s
		}
	}

	chosen := exact
	if chosen == nil {
		chosen = nearest
	}
	if chosen == nil {
		return models.Instrument{}, trderrors.Wrapf(trderrors.ErrSymbolNotFound, "no contract for %s", symbol)
	}
	if exact == nil {
		m.logger.Warn().
			Str("symbol", symbol).
			Time("expiry", chosen.Expiry).
			Msg("Exact expiry not listed, using nearest later contract")
	}

	return models.Instrument{
		SecurityID: chosen.SecurityID,
		Exchange:   chosen.Exchange,
		LotSize:    chosen.LotSize,
		TickSize:   chosen.TickSize,
	}, nil
}

// splitSymbol parses the canonical "<UNDERLYING> <DD> <MON> <STRIKE>
// <CE|PE>" form this pipeline emits.
func splitSymbol(symbol string, ref time.Time) (string, time.Time, int, string, error) {
	parts := strings.Fields(strings.ToUpper(symbol))
	if len(parts) != 5 {
		return "", time.Time{}, 0, "", fmt.Errorf("malformed trading symbol %q", symbol)
	}

	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", time.Time{}, 0, "", fmt.Errorf("bad expiry day in %q", symbol)
	}
	month, ok := monthAbbrev[parts[2]]
	if !ok {
		return "", time.Time{}, 0, "", fmt.Errorf("bad expiry month in %q", symbol)
	}
	strike, err := strconv.Atoi(parts[3])
	if err != nil {
		return "", time.Time{}, 0, "", fmt.Errorf("bad strike in %q", symbol)
	}
	optType := parts[4]
	if optType != "CE" && optType != "PE" {
		return "", time.Time{}, 0, "", fmt.Errorf("bad option type in %q", symbol)
	}

	year := ref.Year()
	expiry := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if expiry.Before(time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)) {
		expiry = expiry.AddDate(1, 0, 0)
	}
	return parts[0], expiry, strike, optType, nil
}

var monthAbbrev = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

func sameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
