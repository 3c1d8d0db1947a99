package parser

import (
	"strings"
	"time"

	trderrors "dhan-signal-trader/internal/errors"
	"dhan-signal-trader/internal/logging"
	"dhan-signal-trader/internal/models"
	"dhan-signal-trader/pkg/utils"
)

// stitchBuffer accumulates the messages of one in-progress signal.
type stitchBuffer struct {
	texts     []string
	hasAction bool
	last      time.Time
}

func (b *stitchBuffer) empty() bool {
	return len(b.texts) == 0
}

func (b *stitchBuffer) append(text string, ts time.Time) {
	b.texts = append(b.texts, text)
	b.last = ts
	if reAction.MatchString(strings.ToUpper(text)) {
		b.hasAction = true
	}
}

func (b *stitchBuffer) joined() string {
	return strings.Join(b.texts, "\n")
}

func (b *stitchBuffer) reset() {
	b.texts = nil
	b.hasAction = false
	b.last = time.Time{}
}

// Extract processes one ordered message batch into trade intents.
// Multi-part signals are stitched back together; each resulting buffer
// is parsed independently so one malformed candidate never aborts the
// batch. Intents come back in message order.
func (e *Extractor) Extract(batch []Message) ([]models.TradeIntent, []Rejection) {
	var (
		intents    []models.TradeIntent
		rejections []Rejection
		buf        stitchBuffer
	)

	flush := func() {
		if buf.empty() {
			return
		}
		ints, rejs := e.parseBuffer(buf.joined(), buf.last)
		intents = append(intents, ints...)
		rejections = append(rejections, rejs...)
		buf.reset()
	}

	for _, msg := range batch {
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}

		if !buf.empty() && e.staleGap > 0 && msg.Timestamp.Sub(buf.last) > e.staleGap {
			flush()
		}

		clean := normalize(text)
		underlying, _ := detectUnderlying(clean)
		startsSignal := reAction.MatchString(clean) && underlying != ""

		switch {
		case startsSignal:
			// A fresh action line closes the previous signal. Leading
			// qualifiers like a bare "Positional" stay attached because
			// they arrived before any action line.
			if buf.hasAction {
				flush()
			}
			buf.append(text, msg.Timestamp)

		case buf.empty():
			buf.append(text, msg.Timestamp)

		case !isComplete(normalize(buf.joined())) || isRefinement(clean):
			buf.append(text, msg.Timestamp)

		default:
			flush()
			buf.append(text, msg.Timestamp)
		}
	}
	flush()

	return intents, rejections
}

// parseBuffer runs one stitched buffer through splitting, the market
// hours gate and block parsing.
func (e *Extractor) parseBuffer(text string, ts time.Time) ([]models.TradeIntent, []Rejection) {
	if utils.BeforeMarketOpen(ts) {
		logging.LogDrop(e.logger, models.OutcomeRejectedNoise, text, trderrors.ErrMarketClosed)
		return nil, []Rejection{{
			Raw:     text,
			Outcome: models.OutcomeRejectedNoise,
			Err:     trderrors.ErrMarketClosed,
		}}
	}

	var intents []models.TradeIntent
	var rejections []Rejection

	for _, candidate := range splitCandidates(text) {
		intent, perr := e.ParseBlock(candidate, ts)
		if perr != nil {
			outcome := outcomeForParseError(perr)
			logging.LogDrop(e.logger, outcome, candidate, perr)
			rejections = append(rejections, Rejection{Raw: candidate, Outcome: outcome, Err: perr})
			continue
		}
		logging.LogSignal(e.logger, intent)
		intents = append(intents, intent)
	}
	return intents, rejections
}

// splitCandidates splits a buffer holding several action keywords into
// independent candidate blocks, one per action occurrence. Text before
// the first action line belongs to the first candidate.
func splitCandidates(text string) []string {
	clean := strings.ToUpper(text)
	spans := reAction.FindAllStringIndex(clean, -1)
	if len(spans) <= 1 {
		return []string{text}
	}

	var parts []string
	start := 0
	for i := 1; i < len(spans); i++ {
		parts = append(parts, strings.TrimSpace(text[start:spans[i][0]]))
		start = spans[i][0]
	}
	parts = append(parts, strings.TrimSpace(text[start:]))
	return parts
}

func outcomeForParseError(perr *trderrors.ParseError) models.Outcome {
	switch {
	case trderrors.Is(perr, trderrors.ErrIncompleteFields):
		return models.OutcomeRejectedIncomplete
	default:
		return models.OutcomeRejectedNoise
	}
}
