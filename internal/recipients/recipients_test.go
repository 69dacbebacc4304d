package recipients

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	addrA = "0x" + strings.Repeat("a", 64)
	addrB = "0x" + strings.Repeat("B", 64)
)

func parse(t *testing.T, text string) *Result {
	t.Helper()
	return NewParser(nil).Parse(strings.NewReader(text))
}

func requireBalanced(t *testing.T, res *Result) {
	t.Helper()
	assert.Equal(t, res.DataRows, len(res.Recipients)+len(res.Skipped)+res.Rejected)
}

func TestParse_MixedRows(t *testing.T) {
	csv := "suiWalletAddr,suiTokens\n" +
		addrA + ",1.5\n" +
		addrA + ",0\n" +
		"0x" + strings.Repeat("a", 63) + ",3\n"

	res := parse(t, csv)
	require.Len(t, res.Recipients, 1)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, Recipient{Address: addrA, Amount: "1.5", Row: 2}, res.Recipients[0])
	assert.Equal(t, "Row 4: Invalid SUI address format: 0x"+strings.Repeat("a", 63), res.Errors[0])
	assert.Equal(t, []Skip{{Row: 3, Reason: "suiTokens is missing or 0"}}, res.Skipped)
	requireBalanced(t, res)
}

func TestParse_CaseInsensitiveHeadersAndIgnoredColumns(t *testing.T) {
	csv := "wallet,SUIWALLETADDR,tokens,SuiTokens\n" +
		"alice," + addrB + ",7,42\n" +
		"bob,,1,1\n"
	res := parse(t, csv)
	require.Len(t, res.Recipients, 1)
	assert.Equal(t, addrB, res.Recipients[0].Address)
	assert.Equal(t, "42", res.Recipients[0].Amount)
	assert.Empty(t, res.Errors)
	requireBalanced(t, res)
}

func TestParse_MissingColumnsReportedOnce(t *testing.T) {
	res := parse(t, "address,amount\n"+addrA+",1\n"+addrA+",2\n")
	assert.Empty(t, res.Recipients)
	assert.Equal(t, []string{
		"No 'suiWalletAddr' column found. Please include a column named 'suiWalletAddr'.",
		"No 'suiTokens' column found. Please include a column named 'suiTokens'.",
	}, res.Errors)
	assert.Equal(t, 2, res.Rejected)
	requireBalanced(t, res)
}

func TestParse_AmountValidation(t *testing.T) {
	tests := []struct {
		amount string
		valid  bool
	}{
		{"1", true},
		{"0.000001", true},
		{"1e3", true},
		{"-5", false},
		{"abc", false},
		{"0.0", false},
		{"NaN", false},
		{"1e308", true},
		{"1e400", false},
		{"1e999999999", false},
		{"1.8e308", false},
		{"1e-400", false},
		{"5e-324", true},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidAmount(tt.amount))
			res := parse(t, "suiWalletAddr,suiTokens\n"+addrA+","+tt.amount+"\n")
			if tt.valid {
				assert.Len(t, res.Recipients, 1)
			} else {
				assert.Equal(t, []string{"Row 2: Invalid amount: " + tt.amount}, res.Errors)
			}
			requireBalanced(t, res)
		})
	}
	assert.False(t, ValidAmount(""))
	assert.False(t, ValidAmount("0"))
}

func TestParse_AddressRule(t *testing.T) {
	bad := []string{
		strings.Repeat("a", 64),
		"0x" + strings.Repeat("a", 65),
		"0x" + strings.Repeat("g", 64),
		"0X" + strings.Repeat("a", 64),
	}
	for _, a := range bad {
		res := parse(t, "suiWalletAddr,suiTokens\n"+a+",1\n")
		assert.Len(t, res.Errors, 1, a)
		assert.Empty(t, res.Recipients)
	}
}

func TestParse_KeepsOrderAndDuplicates(t *testing.T) {
	res := parse(t, "suiWalletAddr,suiTokens\n"+addrB+",2\n"+addrA+",1\n"+addrB+",2\n")
	require.Len(t, res.Recipients, 3)
	assert.Equal(t, []int{2, 3, 4}, []int{res.Recipients[0].Row, res.Recipients[1].Row, res.Recipients[2].Row})
	assert.Equal(t, "5", res.TotalAmount().String())
}

func TestParse_SemicolonBOMAndBlankLines(t *testing.T) {
	csv := "\xef\xbb\xbfsuiWalletAddr;suiTokens\n\n" + addrA + ";3\n\n" + addrB + ";x\n"
	res := parse(t, csv)
	require.Len(t, res.Recipients, 1)
	assert.Equal(t, 2, res.Recipients[0].Row)
	assert.Equal(t, []string{"Row 3: Invalid amount: x"}, res.Errors)
	requireBalanced(t, res)
}

func TestParse_SyntaxError(t *testing.T) {
	res := parse(t, "suiWalletAddr,suiTokens\n\""+addrA+",1\n")
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.HasPrefix(res.Errors[0], "CSV parsing error: "))
}

func TestParse_Empty(t *testing.T) {
	res := parse(t, "")
	assert.Empty(t, res.Errors)
	assert.Zero(t, res.DataRows)
}

func TestLoad_RejectsNonCSV(t *testing.T) {
	p := NewParser(nil)
	res, err := p.Load("list.xlsx", "application/vnd.ms-excel", strings.NewReader("suiWalletAddr,suiTokens\n"+addrA+",1\n"))
	assert.True(t, errors.Is(err, ErrNotCSV))
	assert.Equal(t, []string{"Please select a CSV file"}, res.Errors)
	assert.Empty(t, res.Recipients)

	res, err = p.Load("export", "text/csv; charset=utf-8", strings.NewReader("suiWalletAddr,suiTokens\n"+addrA+",1\n"))
	require.NoError(t, err)
	assert.Len(t, res.Recipients, 1)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drop.CSV")
	require.NoError(t, os.WriteFile(path, []byte("suiWalletAddr,suiTokens\n"+addrA+",10\n"), 0o600))
	res, err := NewParser(nil).ParseFile(path)
	require.NoError(t, err)
	assert.True(t, res.OK())

	_, err = NewParser(nil).ParseFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
