package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/paylens/bookkeeper/internal/model"
)

// RecordError reports one malformed record. The surrounding stream is still
// readable.
type RecordError struct {
	Line int
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record on line %d: %v", e.Line, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// BadRecord marks the error as skippable for stream processing.
func (e *RecordError) BadRecord() {}

// columns holds header-resolved field positions. amount is -1 when the
// input has no amount column at all.
type columns struct {
	kind, client, tx, amount int
}

// Decoder reads transactions from delimited text.
type Decoder struct {
	r    *csv.Reader
	cols columns
	line int
}

// NewDecoder reads the header and resolves column positions. The type,
// client and tx columns are required; amount is optional. Failing to read
// the header is fatal — there is no stream to recover.
func NewDecoder(r io.Reader) (*Decoder, error) {
	cr := csv.NewReader(r)
	// Rows without an amount are shorter in some feeds.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := columns{kind: -1, client: -1, tx: -1, amount: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "type":
			cols.kind = i
		case "client":
			cols.client = i
		case "tx":
			cols.tx = i
		case "amount":
			cols.amount = i
		}
	}
	if cols.kind < 0 || cols.client < 0 || cols.tx < 0 {
		return nil, fmt.Errorf("header %v: missing type, client or tx column", header)
	}

	return &Decoder{r: cr, cols: cols, line: 1}, nil
}

// Next returns the next transaction. io.EOF ends the stream; a *RecordError
// reports one malformed row and leaves the decoder usable.
func (d *Decoder) Next() (model.Transaction, error) {
	rec, err := d.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.Transaction{}, io.EOF
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			d.line = perr.Line
			return model.Transaction{}, &RecordError{Line: perr.Line, Err: err}
		}
		return model.Transaction{}, err
	}
	d.line++

	tx, err := d.decode(rec)
	if err != nil {
		return model.Transaction{}, &RecordError{Line: d.line, Err: err}
	}
	return tx, nil
}

func (d *Decoder) decode(rec []string) (model.Transaction, error) {
	field := func(i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	kind, err := model.ParseKind(field(d.cols.kind))
	if err != nil {
		return model.Transaction{}, err
	}

	client, err := strconv.ParseUint(field(d.cols.client), 10, 16)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("client id %q: %w", field(d.cols.client), err)
	}

	txID, err := strconv.ParseUint(field(d.cols.tx), 10, 32)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("tx id %q: %w", field(d.cols.tx), err)
	}

	tx := model.Transaction{
		Kind:     kind,
		ClientID: uint16(client),
		TxID:     uint32(txID),
	}

	// Dispute, resolve and chargeback reference a prior deposit; anything in
	// their amount column is ignored, not an error.
	if kind == model.KindDeposit || kind == model.KindWithdrawal {
		if raw := field(d.cols.amount); raw != "" {
			amount, err := decimal.NewFromString(raw)
			if err != nil {
				return model.Transaction{}, fmt.Errorf("amount %q: %w", raw, err)
			}
			tx.Amount = &amount
		}
	}

	return tx, nil
}
