package extract

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMessage = `A new charter request has been received
Charter Id: 1234
Name: Jane Doe
Email: jane@example.com
Phone: 555-1234
Pick up date: 2024-05-01`

func TestExtractSample(t *testing.T) {
	fields, err := New().Extract(sampleMessage)
	require.NoError(t, err)

	assert.Equal(t, "1234", fields.Get(FieldCharterID))
	assert.Equal(t, "Jane Doe", fields.Get(FieldName))
	assert.Equal(t, "555-1234", fields.Get(FieldPhone))
	assert.Equal(t, "2024-05-01", fields.Get(FieldPickUpDate))
	assert.False(t, fields.Has(FieldReturnDate))
	assert.Equal(t, "", fields.Get(FieldReturnDate))
}

func TestExtractFormatDrift(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		field Field
		want  string
	}{
		{
			name:  "bold labels",
			text:  "*Charter Request*\n*Charter Id:* 77\n*Name:* Ann Lee\n*Phone:* 123\n*Pick up date:* 2024-01-02",
			field: FieldName,
			want:  "Ann Lee",
		},
		{
			name:  "italic labels",
			text:  "charter request\n_Charter Id_: 77\n_Name_: Ann Lee\n_Phone_: 123\n_Pick up date_: 2024-01-02",
			field: FieldName,
			want:  "Ann Lee",
		},
		{
			name:  "charter id separated by punctuation",
			text:  "CHARTER REQUEST\nCharter Id #- 9001\nName: A\nPhone: 1\nPick up date: 2024-01-02",
			field: FieldCharterID,
			want:  "9001",
		},
		{
			name:  "charter id without colon",
			text:  "charter request\ncharter ID 42\nName: A\nPhone: 1\nPick up date: 2024-01-02",
			field: FieldCharterID,
			want:  "42",
		},
		{
			name:  "international phone",
			text:  "charter request\nCharter Id: 1\nName: A\nPhone: +1 (555) 123-4567\nPick up date: 2024-01-02",
			field: FieldPhone,
			want:  "+1 (555) 123-4567",
		},
		{
			name:  "phone with qualifier",
			text:  "charter request\nCharter Id: 1\nName: A\nPhone (mobile): 0400 123 456\nPick up date: 2024-01-02",
			field: FieldPhone,
			want:  "0400 123 456",
		},
		{
			name:  "pick-up hyphenated",
			text:  "charter request\nCharter Id: 1\nName: A\nPhone: 1\nPick-up date: 2024-03-04",
			field: FieldPickUpDate,
			want:  "2024-03-04",
		},
		{
			name:  "labels out of order",
			text:  "Pick up date: 2024-06-07\nPhone: 99\nName: Bo\nCharter Id: 5\n(charter request)",
			field: FieldPickUpDate,
			want:  "2024-06-07",
		},
		{
			name:  "return date present",
			text:  sampleMessage + "\nReturn date: 2024-05-09",
			field: FieldReturnDate,
			want:  "2024-05-09",
		},
		{
			name:  "phone followed by qualifier",
			text:  "charter request\nCharter Id: 1\nName: A\nPhone: 0400 123 456 (mobile)\nPick up date: 2024-01-02",
			field: FieldPhone,
			want:  "0400 123 456",
		},
		{
			name:  "charter id on next line",
			text:  "charter request\n*Charter Id:*\n1234\nName: A\nPhone: 1\nPick up date: 2024-01-02",
			field: FieldCharterID,
			want:  "1234",
		},
		{
			name:  "name on next line",
			text:  "charter request\nCharter Id: 1\n*Name:*\nJane Doe\nPhone: 1\nPick up date: 2024-01-02",
			field: FieldName,
			want:  "Jane Doe",
		},
		{
			name:  "return date on next line",
			text:  sampleMessage + "\nReturn date:\n2024-05-09",
			field: FieldReturnDate,
			want:  "2024-05-09",
		},
		{
			name:  "trailing emphasis on name",
			text:  "charter request\nCharter Id: 1\n*Name: Jane Doe*\nPhone: 1\nPick up date: 2024-01-02",
			field: FieldName,
			want:  "Jane Doe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := New().Extract(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fields.Get(tt.field))
		})
	}
}

func TestExtractValuesBelowLabels(t *testing.T) {
	text := "A new charter request has been received\nCharter Id:\n1234\nName:\nJane Doe\nPhone:\n555-1234\nPick up date:\n2024-05-01"

	fields, err := New().Extract(text)
	require.NoError(t, err)
	assert.Equal(t, "1234", fields.Get(FieldCharterID))
	assert.Equal(t, "Jane Doe", fields.Get(FieldName))
	assert.Equal(t, "555-1234", fields.Get(FieldPhone))
	assert.Equal(t, "2024-05-01", fields.Get(FieldPickUpDate))
	assert.False(t, fields.Has(FieldReturnDate))
}

func TestExtractStripsLinkAnnotation(t *testing.T) {
	text := "charter request\nCharter Id: 1\nName: <mailto:a@b.com|John Smith>\nPhone: 1\nPick up date: 2024-01-02"

	fields, err := New().Extract(text)
	require.NoError(t, err)
	assert.Equal(t, "John Smith", fields.Get(FieldName))
}

func TestExtractMissingRequired(t *testing.T) {
	text := "A new charter request has been received\nCharter Id: 1234\nName: Jane Doe\nPick up date: 2024-05-01\nReturn date: 2024-05-03"

	fields, err := New().Extract(text)
	require.Error(t, err)

	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []Field{FieldPhone}, missing.Fields)
	assert.Equal(t, "missing required fields: phone", err.Error())

	// Matched fields are still reported for diagnostics.
	assert.Equal(t, "1234", fields.Get(FieldCharterID))
}

func TestExtractCollectsAllMissing(t *testing.T) {
	_, err := New().Extract("charter request\nName: Jane Doe")

	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []Field{FieldCharterID, FieldPhone, FieldPickUpDate}, missing.Fields)
}

func TestExtractShortCircuit(t *testing.T) {
	_, err := New(WithShortCircuit()).Extract("charter request\nName: Jane Doe")

	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []Field{FieldCharterID}, missing.Fields)
}

func TestExtractNotCharterRequest(t *testing.T) {
	calls := 0
	catchAll := []Rule{{
		Field:    FieldName,
		Pattern:  regexp.MustCompile(`(.+)`),
		Required: true,
		Normalize: func(s string) string {
			calls++
			return s
		},
	}}

	for _, text := range []string{"", "hello there", "Charter Id: 1\nName: A", "charter-request"} {
		fields, err := New(WithRules(catchAll)).Extract(text)
		assert.ErrorIs(t, err, ErrNotCharterRequest)
		assert.Nil(t, fields)
	}
	assert.Zero(t, calls, "no rule may run before the marker check passes")

	_, err := New(WithRules(catchAll)).Extract("CHARTER REQUEST")
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestStripLinks(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<mailto:a@b.com|a@b.com>", "a@b.com"},
		{"John <http://x.y|Smith>", "John Smith"},
		{"<mailto:a@b.com|A> and <mailto:c@d.com|C>", "A and C"},
		{"plain", "plain"},
		{"<http://no-label>", "<http://no-label>"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripLinks(tt.in))
	}
}
