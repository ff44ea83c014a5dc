package csvio

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/paylens/bookkeeper/internal/model"
)

func readAll(t *testing.T, d *Decoder) []model.Transaction {
	t.Helper()

	var txs []model.Transaction
	for {
		tx, err := d.Next()
		if errors.Is(err, io.EOF) {
			return txs
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		txs = append(txs, tx)
	}
}

func TestDecoder_Basic(t *testing.T) {
	input := `type,client,tx,amount
deposit,1,1,2.0
withdrawal,1,2,0.5
dispute,1,1,
resolve,1,1,
chargeback,1,1,
`
	d, err := NewDecoder(strings.NewReader(input))
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}

	txs := readAll(t, d)
	if len(txs) != 5 {
		t.Fatalf("decoded %d transactions, want 5", len(txs))
	}

	wantKinds := []model.Kind{
		model.KindDeposit, model.KindWithdrawal,
		model.KindDispute, model.KindResolve, model.KindChargeBack,
	}
	for i, want := range wantKinds {
		if txs[i].Kind != want {
			t.Errorf("txs[%d].Kind = %v, want %v", i, txs[i].Kind, want)
		}
	}

	if txs[0].Amount == nil || !txs[0].Amount.Equal(decimal.RequireFromString("2.0")) {
		t.Errorf("deposit amount = %v, want 2.0", txs[0].Amount)
	}
	if txs[2].Amount != nil {
		t.Errorf("dispute amount = %v, want nil", txs[2].Amount)
	}
}

func TestDecoder_TrimsWhitespaceAndCase(t *testing.T) {
	input := "type, client, tx, amount\n  Deposit ,  1 ,  1 ,  2.5 \n"

	d, err := NewDecoder(strings.NewReader(input))
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}

	txs := readAll(t, d)
	if len(txs) != 1 {
		t.Fatalf("decoded %d transactions, want 1", len(txs))
	}
	if txs[0].Kind != model.KindDeposit || txs[0].ClientID != 1 || txs[0].TxID != 1 {
		t.Errorf("decoded %+v, want deposit client 1 tx 1", txs[0])
	}
	if txs[0].Amount == nil || !txs[0].Amount.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("amount = %v, want 2.5", txs[0].Amount)
	}
}

func TestDecoder_ShortRowsWithoutAmount(t *testing.T) {
	input := "type,client,tx,amount\ndeposit,1,1,3\ndispute,1,1\n"

	d, err := NewDecoder(strings.NewReader(input))
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}

	txs := readAll(t, d)
	if len(txs) != 2 {
		t.Fatalf("decoded %d transactions, want 2", len(txs))
	}
	if txs[1].Kind != model.KindDispute || txs[1].Amount != nil {
		t.Errorf("short dispute row decoded as %+v", txs[1])
	}
}

func TestDecoder_IgnoresAmountOnDispute(t *testing.T) {
	input := "type,client,tx,amount\ndeposit,1,1,3\ndispute,1,1,999.99\n"

	d, err := NewDecoder(strings.NewReader(input))
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}

	txs := readAll(t, d)
	if txs[1].Amount != nil {
		t.Errorf("dispute amount = %v, want nil", txs[1].Amount)
	}
}

func TestDecoder_MalformedRecords(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"unknown kind", "transfer,1,1,2"},
		{"client out of range", "deposit,70000,1,2"},
		{"tx out of range", "deposit,1,4294967296,2"},
		{"bad client", "deposit,abc,1,2"},
		{"bad amount", "deposit,1,1,two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "type,client,tx,amount\n" + tt.row + "\ndeposit,1,9,1\n"
			d, err := NewDecoder(strings.NewReader(input))
			if err != nil {
				t.Fatalf("NewDecoder failed: %v", err)
			}

			_, err = d.Next()
			var re *RecordError
			if !errors.As(err, &re) {
				t.Fatalf("Next() error = %v, want *RecordError", err)
			}
			if re.Line != 2 {
				t.Errorf("RecordError.Line = %d, want 2", re.Line)
			}

			// The decoder keeps going after a bad row.
			tx, err := d.Next()
			if err != nil {
				t.Fatalf("Next() after bad record failed: %v", err)
			}
			if tx.TxID != 9 {
				t.Errorf("TxID = %d, want 9", tx.TxID)
			}
		})
	}
}

func TestDecoder_MissingHeaderColumns(t *testing.T) {
	for _, header := range []string{"client,tx,amount", "type,tx", "type,client", ""} {
		if _, err := NewDecoder(strings.NewReader(header + "\n")); err == nil {
			t.Errorf("NewDecoder(%q) succeeded, want error", header)
		}
	}
}

func TestDecoder_HeaderOnly(t *testing.T) {
	d, err := NewDecoder(strings.NewReader("type,client,tx,amount\n"))
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}
	if _, err := d.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() on empty stream error = %v, want io.EOF", err)
	}
}
