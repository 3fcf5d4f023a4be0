// Package charter defines the charter record handed to sinks and assembles it
// from extracted fields.
package charter

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mattjoyce/charterhook/internal/extract"
)

// TimestampLayout is the fixed-width YYYY-MM-DD HH:MM:SS receive time format.
const TimestampLayout = "2006-01-02 15:04:05"

// RowWidth is the number of columns produced by Record.Row.
const RowWidth = 7

// Columns names the Row columns in order.
var Columns = [RowWidth]string{
	"request_received",
	"charter_id",
	"first_name",
	"last_name",
	"phone",
	"pick_up_date",
	"return_date",
}

// Record is one extracted charter request. It is a value type; copies are
// independent and nothing mutates a Record after Assemble returns it.
type Record struct {
	CharterID       string `json:"charter_id"       validate:"required,numeric"`
	Name            string `json:"name"             validate:"required"`
	FirstName       string `json:"first_name"       validate:"required"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone"            validate:"required"`
	PickUpDate      string `json:"pick_up_date"     validate:"required"`
	ReturnDate      string `json:"return_date"`
	RequestReceived string `json:"request_received" validate:"required,len=19"`
}

// HasReturnDate reports whether the message carried a return date. The return
// date rule only matches non-empty values, so empty means absent.
func (r Record) HasReturnDate() bool {
	return r.ReturnDate != ""
}

// Row serializes r in sink column order.
func (r Record) Row() []string {
	return []string{
		r.RequestReceived,
		r.CharterID,
		r.FirstName,
		r.LastName,
		r.Phone,
		r.PickUpDate,
		r.ReturnDate,
	}
}

var validate = validator.New()

// Assemble folds extracted fields and the receive time into a Record.
func Assemble(fields extract.Fields, receivedAt time.Time) (Record, error) {
	name := fields.Get(extract.FieldName)
	first, last := SplitName(name)

	rec := Record{
		CharterID:       fields.Get(extract.FieldCharterID),
		Name:            name,
		FirstName:       first,
		LastName:        last,
		Phone:           fields.Get(extract.FieldPhone),
		PickUpDate:      fields.Get(extract.FieldPickUpDate),
		ReturnDate:      fields.Get(extract.FieldReturnDate),
		RequestReceived: receivedAt.Format(TimestampLayout),
	}

	if err := validate.Struct(rec); err != nil {
		return Record{}, fmt.Errorf("assemble charter record: %w", err)
	}
	return rec, nil
}

// SplitName returns the first whitespace token and, when there is more than
// one token, the last. Middle tokens are dropped.
func SplitName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[len(parts)-1]
	}
}
