package history_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/gatekeeper/ledger"
	"github.com/viant/gatekeeper/service/history"
)

func TestService_RecordAndRecent(t *testing.T) {
	svc := history.New(3)
	for i := 1; i <= 5; i++ {
		svc.Record(&history.Entry{Item: "pens", Quantity: i, Total: int64(i) * 8_50})
	}

	// capacity 3: the two oldest entries were evicted
	assert.EqualValues(t, 3, svc.Size())

	recent := svc.Recent(0)
	assert.Len(t, recent, 3)
	// newest first
	assert.EqualValues(t, 5, recent[0].Quantity)
	assert.EqualValues(t, 3, recent[2].Quantity)

	one := svc.Recent(1)
	assert.Len(t, one, 1)
	assert.EqualValues(t, 5, one[0].Quantity)
}

func TestService_RecordReceipt(t *testing.T) {
	svc := history.New(0)
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.RecordReceipt(&ledger.Receipt{
		Item: "paper clips", Quantity: 50, UnitPrice: 12_99, Total: 649_50,
	}, "restock", at)
	svc.RecordReceipt(nil, "ignored", at)

	assert.EqualValues(t, 1, svc.Size())
	entry := svc.Recent(1)[0]
	assert.EqualValues(t, "paper clips", entry.Item)
	assert.EqualValues(t, 649_50, entry.Total)
	assert.EqualValues(t, "restock", entry.Justification)
	assert.EqualValues(t, at, entry.At)
}
