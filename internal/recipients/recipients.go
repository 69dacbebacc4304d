package recipients

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ligun0805/sui-airdrop/internal/sui"
	"github.com/ligun0805/sui-airdrop/pkg/logger"
)

// Column names, matched case-insensitively.
const (
	AddressColumn = "suiWalletAddr"
	AmountColumn  = "suiTokens"
)

// IgnoredColumns may be present in exported sheets and are never read.
var IgnoredColumns = []string{"wallet", "tokens"}

// ErrNotCSV is returned by Load for files that are not CSV.
var ErrNotCSV = errors.New("Please select a CSV file")

// Recipient is one validated transfer target.
type Recipient struct {
	Address string
	// Amount is the decimal text as typed in the file.
	Amount string
	// Row is the 1-based line in the file counting the header, so the first data row is 2.
	Row int
}

// Skip records a row dropped without an error.
type Skip struct {
	Row    int
	Reason string
}

// Result is the outcome of parsing one file.
// len(Recipients) + len(Skipped) + Rejected == DataRows.
type Result struct {
	Recipients []Recipient
	Errors     []string
	Skipped    []Skip
	DataRows   int
	Rejected   int
}

// TotalAmount sums recipient amounts exactly.
func (r *Result) TotalAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, rc := range r.Recipients {
		if d, err := ParseAmount(rc.Amount); err == nil {
			sum = sum.Add(d)
		}
	}
	return sum
}

// OK reports whether the file produced recipients and no errors.
func (r *Result) OK() bool {
	return len(r.Errors) == 0 && len(r.Recipients) > 0
}

// Parser turns recipient sheets into Results.
type Parser struct {
	log *logger.Logger
}

func NewParser(l *logger.Logger) *Parser {
	return &Parser{log: logger.OrNop(l)}
}

// IsCSV gates on file name or MIME type.
func IsCSV(name, mimeType string) bool {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil && mt == "text/csv" {
		return true
	}
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// Load rejects non-CSV files before reading them, then parses.
func (p *Parser) Load(name, mimeType string, r io.Reader) (*Result, error) {
	if !IsCSV(name, mimeType) {
		return &Result{Errors: []string{ErrNotCSV.Error()}}, ErrNotCSV
	}
	return p.Parse(r), nil
}

// ParseFile loads a CSV from disk.
func (p *Parser) ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Load(filepath.Base(path), mime.TypeByExtension(filepath.Ext(path)), f)
}

// Parse reads a CSV with a header row. Errors are collected in the Result, never returned.
func (p *Parser) Parse(r io.Reader) *Result {
	res := &Result{}
	data, err := io.ReadAll(r)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("CSV parsing error: %v", err))
		return res
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comma = detectDelimiter(data)

	rows, err := reader.ReadAll()
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("CSV parsing error: %v", err))
		return res
	}
	if len(rows) == 0 {
		return res
	}

	header, body := rows[0], rows[1:]
	res.DataRows = len(body)
	addrIdx, amtIdx := columnIndex(header, AddressColumn), columnIndex(header, AmountColumn)
	if addrIdx < 0 || amtIdx < 0 {
		if addrIdx < 0 {
			res.Errors = append(res.Errors, missingColumn(AddressColumn))
		}
		if amtIdx < 0 {
			res.Errors = append(res.Errors, missingColumn(AmountColumn))
		}
		res.Rejected = res.DataRows
		return res
	}

	for i, row := range body {
		rowNo := i + 2
		address := field(row, addrIdx)
		amount := field(row, amtIdx)

		if address == "" {
			p.skip(res, rowNo, AddressColumn+" is missing")
			continue
		}
		if amount == "" || amount == "0" {
			p.skip(res, rowNo, AmountColumn+" is missing or 0")
			continue
		}
		if !sui.IsAddress(address) {
			p.reject(res, fmt.Sprintf("Row %d: Invalid SUI address format: %s", rowNo, address))
			continue
		}
		if !ValidAmount(amount) {
			p.reject(res, fmt.Sprintf("Row %d: Invalid amount: %s", rowNo, amount))
			continue
		}
		res.Recipients = append(res.Recipients, Recipient{Address: address, Amount: amount, Row: rowNo})
	}
	p.log.Debugw("csv parsed", "rows", res.DataRows, "recipients", len(res.Recipients),
		"skipped", len(res.Skipped), "rejected", res.Rejected)
	return res
}

func (p *Parser) skip(res *Result, row int, reason string) {
	p.log.Infow("skipping row", "row", row, "reason", reason)
	res.Skipped = append(res.Skipped, Skip{Row: row, Reason: reason})
}

func (p *Parser) reject(res *Result, msg string) {
	res.Errors = append(res.Errors, msg)
	res.Rejected++
}

// ValidAmount accepts any finite decimal strictly greater than zero.
func ValidAmount(s string) bool {
	d, err := ParseAmount(s)
	return err == nil && d.IsPositive()
}

// ErrAmountRange is returned for amounts a float64 cannot hold: they overflow to
// infinity or underflow to zero.
var ErrAmountRange = errors.New("amount out of range")

// ParseAmount parses a decimal amount, rejecting magnitudes outside the float64 range
// before anything expands the exponent.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsZero() {
		return d, nil
	}
	// order of magnitude of the leading digit
	mag := len(new(big.Int).Abs(d.Coefficient()).String()) + int(d.Exponent()) - 1
	if mag > 309 || mag < -325 {
		return decimal.Zero, ErrAmountRange
	}
	if f := d.InexactFloat64(); math.IsInf(f, 0) || f == 0 {
		return decimal.Zero, ErrAmountRange
	}
	return d, nil
}

func missingColumn(name string) string {
	return fmt.Sprintf("No '%s' column found. Please include a column named '%s'.", name, name)
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func field(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// detectDelimiter picks ';' when the header uses it and has no commas.
func detectDelimiter(data []byte) rune {
	for _, l := range strings.Split(string(data), "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if strings.Contains(l, ";") && !strings.Contains(l, ",") {
			return ';'
		}
		break
	}
	return ','
}
