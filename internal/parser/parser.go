// Package parser extracts structured trade intents from chat-style
// signal messages.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	trderrors "dhan-signal-trader/internal/errors"
	"dhan-signal-trader/internal/models"
)

// Keywords that mark a message as non-actionable (exit management,
// futures calls, watchlists). Matched as substrings of the upper-cased
// buffer, same as the channel operators write them.
var ignoreKeywords = []string{
	"RISK TRAIL",
	"SAFE BOOK",
	"IGNORE",
	"BOOK PROFIT",
	"EXIT",
	"AVOID",
	"CLOSE",
	"WATCHLIST",
	"WATCH",
}

// Futures mentions are a separate bucket so the drop reason reads
// "unsupported instrument" rather than generic noise.
var futuresKeywords = []string{"FUTURES", "FUTURE", "FUT"}

// Hype words stripped before underlying detection so "Risky Nifty"
// still resolves to NIFTY.
var noiseWords = []string{
	"RISKY", "SAFE", "HERO", "ZERO", "JACKPOT", "MOMENTUM",
	"TRADE", "EXPIRY", "SPECIAL", "TODAY", "MORNING", "ROCKET",
	"BTST", "POSITIONAL",
}

var (
	reAction     = regexp.MustCompile(`\b(BUY|SELL)\b`)
	rePositional = regexp.MustCompile(`\bPOSITION(AL)?\b|\bHOLD\b|\bLONG\s*TERM\b`)
	reStrike     = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(CE|PE|CALL|PUT)\b`)
	reDate       = regexp.MustCompile(`\b(\d{1,2})(?:ST|ND|RD|TH)?\s*(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)\b`)
	reTrigger    = regexp.MustCompile(`\b(?:ABOVE|ABV|AT|CMP|RANGE)\s*[:\-]?\s+([\d.\-\s]+)`)
	reSL         = regexp.MustCompile(`\b(?:SL|STOP\s*LOSS)\s*[:\-]?\s*([\d.\-\s]+)`)
	reTarget     = regexp.MustCompile(`\bTARGETS?\s*[:\-]?\s*([\d.\-\s]+)`)
	reDigitsOnly = regexp.MustCompile(`^[\d.\-\s]+$`)
	reNumber     = regexp.MustCompile(`\d+(?:\.\d+)?`)
	reNiftyWord  = regexp.MustCompile(`\bNIFTY\b`)
)

// Message is one raw chat message with its arrival time.
type Message struct {
	Text      string
	Timestamp time.Time
}

// Rejection records a candidate dropped during extraction, with the
// terminal outcome for the audit log.
type Rejection struct {
	Raw     string
	Outcome models.Outcome
	Err     error
}

// Extractor turns batches of raw messages into validated trade intents.
// It holds no mutable state between batches.
type Extractor struct {
	logger   zerolog.Logger
	staleGap time.Duration
}

// NewExtractor creates an extractor. staleGap bounds the silence between
// consecutive messages stitched into one signal.
func NewExtractor(logger zerolog.Logger, staleGap time.Duration) *Extractor {
	return &Extractor{
		logger:   logger,
		staleGap: staleGap,
	}
}

// stripNoise removes hype words so symbol detection sees clean text.
func stripNoise(clean string) string {
	for _, word := range noiseWords {
		clean = strings.ReplaceAll(clean, word, "")
	}
	return strings.TrimSpace(clean)
}

// isPriceOnly reports whether every non-blank line is bare numerics.
func isPriceOnly(text string) bool {
	any := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !reDigitsOnly.MatchString(line) {
			return false
		}
		any = true
	}
	return any
}

// detectUnderlying finds the first supported underlying token. The
// second return is non-nil when the text names an instrument class the
// pipeline refuses to trade.
func detectUnderlying(clean string) (models.Underlying, error) {
	stripped := stripNoise(clean)

	// Longer index names shadow the bare NIFTY token, so they go first.
	if strings.Contains(stripped, "FINNIFTY") {
		return "", trderrors.ErrUnsupportedInstrument
	}
	if strings.Contains(stripped, "MIDCPNIFTY") || strings.Contains(stripped, "MIDCAP") {
		return "", trderrors.ErrUnsupportedInstrument
	}
	if strings.Contains(stripped, "BANKNIFTY") || strings.Contains(stripped, "BANK NIFTY") {
		return models.BankNifty, nil
	}
	if strings.Contains(stripped, "SENSEX") || strings.Contains(stripped, "SNSEX") {
		return models.Sensex, nil
	}
	if reNiftyWord.MatchString(stripped) {
		return models.Nifty, nil
	}
	return "", nil
}

// parsePrice extracts a price from marker text; ranges like "100-110"
// collapse to their mean.
func parsePrice(text string) float64 {
	matches := reNumber.FindAllString(text, -1)
	if len(matches) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range matches {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0
		}
		sum += v
	}
	return sum / float64(len(matches))
}

// parseTargets takes the highest listed target ("TARGET 550 650" → 650).
func parseTargets(text string) float64 {
	best := 0.0
	for _, m := range reNumber.FindAllString(text, -1) {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		if v > best {
			best = v
		}
	}
	return best
}

// normalize upper-cases and collapses horizontal whitespace while
// preserving line breaks, which the price-only check depends on.
func normalize(text string) string {
	lines := strings.Split(strings.ToUpper(text), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// within reports whether position i falls inside any of the spans.
func within(i int, spans [][]int) bool {
	for _, s := range spans {
		if s != nil && i >= s[0] && i < s[1] {
			return true
		}
	}
	return false
}

// extractTrigger finds the entry trigger: the number after an
// ABOVE/AT/CMP marker, falling back to the first free number after the
// action token that isn't part of the strike, date, SL or target.
func extractTrigger(clean string, actionEnd int, claimed [][]int) float64 {
	if m := reTrigger.FindStringSubmatchIndex(clean); m != nil {
		return parsePrice(clean[m[2]:m[3]])
	}

	for _, m := range reNumber.FindAllStringIndex(clean, -1) {
		if m[0] < actionEnd {
			continue
		}
		if within(m[0], claimed) {
			continue
		}
		v, err := strconv.ParseFloat(clean[m[0]:m[1]], 64)
		if err != nil {
			continue
		}
		return v
	}
	return 0
}

// ParseBlock parses one stitched message buffer into a trade intent.
// The timestamp is that of the buffer's last message.
func (e *Extractor) ParseBlock(raw string, ts time.Time) (models.TradeIntent, *trderrors.ParseError) {
	clean := normalize(raw)

	if clean == "" || isPriceOnly(clean) {
		return models.TradeIntent{}, trderrors.NewParseError(trderrors.ErrNoiseMatch, raw)
	}
	for _, kw := range ignoreKeywords {
		if strings.Contains(clean, kw) {
			return models.TradeIntent{}, trderrors.NewParseError(trderrors.ErrNoiseMatch, raw)
		}
	}
	for _, kw := range futuresKeywords {
		if strings.Contains(clean, kw) {
			return models.TradeIntent{}, trderrors.NewParseError(trderrors.ErrUnsupportedInstrument, raw)
		}
	}

	underlying, uerr := detectUnderlying(clean)
	if uerr != nil {
		return models.TradeIntent{}, trderrors.NewParseError(uerr, raw)
	}

	var missing []string

	action := models.Action("")
	actionEnd := 0
	if m := reAction.FindStringIndex(clean); m != nil {
		action = models.Action(clean[m[0]:m[1]])
		actionEnd = m[1]
	} else {
		missing = append(missing, "action")
	}

	if underlying == "" {
		missing = append(missing, "underlying")
	}

	strike := 0
	optionType := models.OptionType("")
	strikeSpan := reStrike.FindStringSubmatchIndex(clean)
	if strikeSpan != nil {
		rawStrike := clean[strikeSpan[2]:strikeSpan[3]]
		if v, err := strconv.ParseFloat(rawStrike, 64); err == nil {
			strike = int(v)
		}
		if strings.HasPrefix(clean[strikeSpan[4]:strikeSpan[5]], "C") {
			optionType = models.Call
		} else {
			optionType = models.Put
		}
	}
	if strike <= 0 {
		missing = append(missing, "strike")
	}
	if optionType == "" {
		missing = append(missing, "option_type")
	}

	dateSpan := reDate.FindStringSubmatchIndex(clean)
	slSpan := reSL.FindStringIndex(clean)
	targetSpan := reTarget.FindStringIndex(clean)

	var claimed [][]int
	if strikeSpan != nil {
		claimed = append(claimed, []int{strikeSpan[0], strikeSpan[1]})
	}
	if dateSpan != nil {
		claimed = append(claimed, []int{dateSpan[0], dateSpan[1]})
	}
	if slSpan != nil {
		claimed = append(claimed, slSpan)
	}
	if targetSpan != nil {
		claimed = append(claimed, targetSpan)
	}

	trigger := extractTrigger(clean, actionEnd, claimed)
	if trigger <= 0 {
		missing = append(missing, "entry_trigger")
	}

	if len(missing) > 0 {
		return models.TradeIntent{}, trderrors.NewParseError(trderrors.ErrIncompleteFields, raw, missing...)
	}

	stopLoss := 0.0
	if m := reSL.FindStringSubmatch(clean); m != nil {
		stopLoss = parsePrice(m[1])
	}

	target := 0.0
	if m := reTarget.FindStringSubmatch(clean); m != nil {
		target = parseTargets(m[1])
	}

	var expiry time.Time
	var err error
	if dateSpan != nil {
		dayNum, _ := strconv.Atoi(clean[dateSpan[2]:dateSpan[3]])
		expiry, err = explicitExpiryDate(dayNum, clean[dateSpan[4]:dateSpan[5]], ts)
	} else {
		expiry, err = ResolveExpiry(underlying, ts)
	}
	if err != nil {
		return models.TradeIntent{}, trderrors.NewParseError(trderrors.ErrExpiryResolution, raw)
	}

	intent := models.TradeIntent{
		Timestamp:    ts,
		Underlying:   underlying,
		Strike:       strike,
		OptionType:   optionType,
		Action:       action,
		EntryTrigger: trigger,
		StopLoss:     stopLoss,
		Target:       target,
		IsPositional: rePositional.MatchString(clean),
		ExpiryDate:   expiry,
		RawText:      raw,
	}

	if err := intent.Validate(); err != nil {
		return models.TradeIntent{}, trderrors.NewParseError(trderrors.ErrIncompleteFields, raw, err.Error())
	}
	return intent, nil
}

// isComplete probes whether a buffer already carries every required
// field. Used while stitching to decide if trailing lines still belong
// to the open signal.
func isComplete(clean string) bool {
	if !reAction.MatchString(clean) {
		return false
	}
	if u, err := detectUnderlying(clean); err != nil || u == "" {
		return false
	}
	strikeSpan := reStrike.FindStringSubmatchIndex(clean)
	if strikeSpan == nil {
		return false
	}
	actionSpan := reAction.FindStringIndex(clean)
	dateSpan := reDate.FindStringIndex(clean)
	slSpan := reSL.FindStringIndex(clean)
	targetSpan := reTarget.FindStringIndex(clean)
	claimed := [][]int{{strikeSpan[0], strikeSpan[1]}}
	if dateSpan != nil {
		claimed = append(claimed, dateSpan)
	}
	if slSpan != nil {
		claimed = append(claimed, slSpan)
	}
	if targetSpan != nil {
		claimed = append(claimed, targetSpan)
	}
	return extractTrigger(clean, actionSpan[1], claimed) > 0
}

// isRefinement reports whether a non-action message refines an open
// signal (stop loss, target or trigger line).
func isRefinement(clean string) bool {
	return reSL.MatchString(clean) || reTarget.MatchString(clean) || reTrigger.MatchString(clean)
}
