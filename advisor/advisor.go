// Package advisor asks a language model to match bank transactions with the
// entries of a checkbook register, and to complete payee names.
//
// An Advisor fails closed: when the model cannot be reached, is too slow, or
// answers something that cannot be used, it returns nothing and the register
// is left to the matching rules.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/checkbook"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds every call to the model.
const DefaultTimeout = 20 * time.Second

// ErrUnavailable wraps every reason the advisor could not answer.
var ErrUnavailable = errors.New("advisor unavailable")

// Advisor implements checkbook.Advisor on top of a Generator.
type Advisor struct {
	gen     Generator
	timeout time.Duration
	log     zerolog.Logger
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithTimeout sets the maximum duration of a call to the model.
func WithTimeout(d time.Duration) Option { return func(a *Advisor) { a.timeout = d } }

// WithLogger sets the logger reporting degraded answers.
func WithLogger(l zerolog.Logger) Option { return func(a *Advisor) { a.log = l } }

// New returns an Advisor asking gen.
func New(gen Generator, opts ...Option) *Advisor {
	a := &Advisor{gen: gen, timeout: DefaultTimeout, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ checkbook.Advisor = (*Advisor)(nil)

// ProposeMatches asks the model which manual entries are the bank transactions.
//
// Bank transactions are referred to by checkbook.BankRefs. Proposals naming an
// unknown transaction, or with a confidence outside 0..100, are dropped.
func (a *Advisor) ProposeMatches(ctx context.Context, manual []checkbook.Transaction, bank []checkbook.BankTxn) []checkbook.MatchProposal {
	if len(manual) == 0 || len(bank) == 0 {
		return nil
	}
	prompt, err := matchPrompt(manual, bank)
	if err != nil {
		a.degraded("propose matches", err)
		return nil
	}
	list, err := a.ask(ctx, prompt, "$.matches")
	if err != nil {
		a.degraded("propose matches", err)
		return nil
	}

	manualIDs := make(map[string]bool, len(manual))
	for _, tx := range manual {
		manualIDs[tx.ID] = true
	}
	bankRefs := make(map[string]bool, len(bank))
	for _, ref := range checkbook.BankRefs(bank) {
		bankRefs[ref] = true
	}

	var out []checkbook.MatchProposal
	for _, item := range list {
		p := checkbook.MatchProposal{
			ManualID:  getString(item, "$.manual_id"),
			BankID:    getString(item, "$.bank_id"),
			Reasoning: getString(item, "$.reasoning"),
		}
		confidence, ok := getInt(item, "$.confidence")
		switch {
		case !manualIDs[p.ManualID], !bankRefs[p.BankID]:
			a.log.Debug().Str("manual", p.ManualID).Str("bank", p.BankID).Msg("advisor named an unknown transaction")
			continue
		case !ok, confidence < 0, confidence > 100:
			a.log.Debug().Str("manual", p.ManualID).Str("bank", p.BankID).Msg("advisor gave an invalid confidence")
			continue
		}
		p.Confidence = confidence
		out = append(out, p)
	}
	a.log.Debug().Int("manual", len(manual)).Int("bank", len(bank)).Int("proposals", len(out)).Msg("advisor proposed matches")
	return out
}

// SuggestPayee asks the model for at most checkbook.MaxPayeeSuggestions
// payees completing what the user entered, preferably among the recent bank
// payees.
func (a *Advisor) SuggestPayee(ctx context.Context, entered string, recentBankPayees []string) []string {
	entered = strings.TrimSpace(entered)
	if entered == "" {
		return nil
	}
	prompt, err := payeePrompt(entered, recentBankPayees)
	if err != nil {
		a.degraded("suggest payee", err)
		return nil
	}
	list, err := a.ask(ctx, prompt, "$.suggestions")
	if err != nil {
		a.degraded("suggest payee", err)
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, item := range list {
		s, _ := item.(string)
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
		if len(out) == checkbook.MaxPayeeSuggestions {
			break
		}
	}
	return out
}

// ask calls the model within the advisor timeout and decodes its answer as a list.
func (a *Advisor) ask(ctx context.Context, prompt, path string) ([]any, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	raw, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	a.log.Debug().Dur("elapsed", time.Since(start)).Int("bytes", len(raw)).Msg("model answered")
	list, err := items(raw, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return list, nil
}

func (a *Advisor) degraded(op string, err error) {
	a.log.Warn().Err(err).Str("op", op).Msg("advisor degraded, falling back to the rules")
}
