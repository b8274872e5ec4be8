package journal

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestInMemoryRecordAndFilter(t *testing.T) {
	j := NewInMemory()
	ctx := context.Background()
	now := time.Now().UTC()

	if err := j.Record(ctx,
		Entry{Handle: "js", Kind: KindTransferOut, Amount: decimal.NewFromInt(-300), RecordedAt: now},
		Entry{Handle: "jd", Kind: KindTransferIn, Amount: decimal.NewFromInt(300), RecordedAt: now},
	); err != nil {
		t.Fatalf("record: %v", err)
	}

	if n := len(j.Entries()); n != 2 {
		t.Fatalf("expected 2 entries, got %d", n)
	}
	got := j.ForHandle("jd")
	if len(got) != 1 || got[0].Kind != KindTransferIn {
		t.Fatalf("unexpected entries for jd: %+v", got)
	}
}

func TestInMemoryConcurrentRecord(t *testing.T) {
	j := NewInMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = j.Record(ctx, Entry{Handle: fmt.Sprintf("h%d", i%5), Kind: KindLoan, Amount: decimal.NewFromInt(int64(i))})
		}(i)
	}
	wg.Wait()

	if n := len(j.Entries()); n != 25 {
		t.Fatalf("expected 25 entries, got %d", n)
	}
}
