package google

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowFromRange(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"Transactions!A12:J12", 12, true},
		{"'My Sheet'!A3:J3", 3, true},
		{"A7", 7, true},
		{"Transactions!$A$9:$J$9", 9, true},
		{"Transactions!A:J", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, ok := rowFromRange(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestRowRange(t *testing.T) {
	assert.Equal(t, "Transactions!A4:J4", rowRange("Transactions", 4))
}

func TestCellAt(t *testing.T) {
	values := [][]interface{}{{"ID"}, {}, {" tx-1 "}, {42}}
	assert.Equal(t, "ID", cellAt(values, 0))
	assert.Equal(t, "", cellAt(values, 1))
	assert.Equal(t, "tx-1", cellAt(values, 2))
	assert.Equal(t, "42", cellAt(values, 3))
	assert.Equal(t, "", cellAt(values, 9))
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}
