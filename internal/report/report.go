// Package report renders airdrop execution reports for files and terminals.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ligun0805/sui-airdrop/internal/airdrop"
	"github.com/ligun0805/sui-airdrop/internal/tokens"
)

var (
	okHeader  = []string{"address", "amount", "row", "digest", "explorer"}
	badHeader = []string{"address", "amount", "row", "error"}
)

// WriteCSV splits outcomes into successful and failed sheets. Either writer may be nil.
func WriteCSV(ok, bad io.Writer, rep *airdrop.Report) error {
	var okW, badW *csv.Writer
	if ok != nil {
		okW = csv.NewWriter(ok)
		if err := okW.Write(okHeader); err != nil {
			return err
		}
	}
	if bad != nil {
		badW = csv.NewWriter(bad)
		if err := badW.Write(badHeader); err != nil {
			return err
		}
	}
	for _, o := range rep.Outcomes {
		row := strconv.Itoa(o.Recipient.Row)
		var err error
		switch {
		case o.Succeeded && okW != nil:
			err = okW.Write([]string{o.Recipient.Address, o.Recipient.Amount, row, o.Digest, o.Explorer})
		case !o.Succeeded && badW != nil:
			err = badW.Write([]string{o.Recipient.Address, o.Recipient.Amount, row, o.Error})
		}
		if err != nil {
			return err
		}
	}
	for _, w := range []*csv.Writer{okW, badW} {
		if w == nil {
			continue
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
	}
	return nil
}

type jsonOutcome struct {
	Address   string `json:"address"`
	Amount    string `json:"amount"`
	Units     string `json:"units,omitempty"`
	Row       int    `json:"row"`
	Batch     int    `json:"batch,omitempty"`
	Succeeded bool   `json:"succeeded"`
	Digest    string `json:"digest,omitempty"`
	Explorer  string `json:"explorer,omitempty"`
	Error     string `json:"error,omitempty"`
}

type jsonReport struct {
	GeneratedAt string        `json:"generatedAt"`
	State       string        `json:"state"`
	Network     string        `json:"network"`
	Sender      string        `json:"sender"`
	CoinType    string        `json:"coinType"`
	Symbol      string        `json:"symbol"`
	Decimals    int           `json:"decimals"`
	Strategy    string        `json:"strategy"`
	Batches     int           `json:"batches"`
	Required    string        `json:"required,omitempty"`
	Available   string        `json:"available,omitempty"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	Error       string        `json:"error,omitempty"`
	StartedAt   string        `json:"startedAt"`
	Duration    string        `json:"duration"`
	Digests     []string      `json:"digests"`
	Outcomes    []jsonOutcome `json:"outcomes"`
}

// WriteJSON writes the whole report as indented JSON.
func WriteJSON(w io.Writer, rep *airdrop.Report) error {
	out := jsonReport{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		State:       string(rep.State),
		Network:     string(rep.Network),
		Sender:      rep.Sender,
		CoinType:    rep.Token.Type,
		Symbol:      rep.Token.Symbol,
		Decimals:    rep.Token.Decimals,
		Strategy:    string(rep.Strategy),
		Batches:     rep.Batches,
		Succeeded:   rep.Succeeded(),
		Failed:      rep.Failed(),
		StartedAt:   rep.Started.UTC().Format(time.RFC3339),
		Duration:    rep.Finished.Sub(rep.Started).Round(time.Millisecond).String(),
		Digests:     rep.Digests(),
		Outcomes:    make([]jsonOutcome, 0, len(rep.Outcomes)),
	}
	if out.Digests == nil {
		out.Digests = []string{}
	}
	if rep.Required != nil {
		out.Required = tokens.FormatUnits(rep.Required, rep.Token.Decimals)
	}
	if rep.Available != nil {
		out.Available = tokens.FormatUnits(rep.Available, rep.Token.Decimals)
	}
	if rep.Err != nil {
		out.Error = rep.Err.Error()
	}
	for _, o := range rep.Outcomes {
		jo := jsonOutcome{
			Address:   o.Recipient.Address,
			Amount:    o.Recipient.Amount,
			Row:       o.Recipient.Row,
			Batch:     o.Batch,
			Succeeded: o.Succeeded,
			Digest:    o.Digest,
			Explorer:  o.Explorer,
			Error:     o.Error,
		}
		if o.Amount != nil {
			jo.Units = o.Amount.String()
		}
		out.Outcomes = append(out.Outcomes, jo)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Summary is a one-line human readable result.
func Summary(rep *airdrop.Report) string {
	s := fmt.Sprintf("%s airdrop %s: %d succeeded, %d failed, %d batch(es)",
		rep.Token.Symbol, rep.State, rep.Succeeded(), rep.Failed(), rep.Batches)
	if rep.Err != nil {
		s += ": " + rep.Err.Error()
	}
	return s
}

// Table writes one line per outcome, aligned for terminals.
func Table(w io.Writer, rep *airdrop.Report) {
	for _, o := range rep.Outcomes {
		status, detail := "OK  ", o.Explorer
		if !o.Succeeded {
			status, detail = "FAIL", o.Error
		}
		fmt.Fprintf(w, "%s row %-4d %s %s %s\n", status, o.Recipient.Row, o.Recipient.Address, o.Recipient.Amount, detail)
	}
}
