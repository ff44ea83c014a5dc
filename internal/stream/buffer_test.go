package stream

import (
	"sync"
	"testing"
	"time"

	"github.com/paylens/bookkeeper/internal/model"
)

func tx(txID uint32) model.Transaction {
	return model.Transaction{Kind: model.KindDispute, ClientID: 1, TxID: txID}
}

func TestTxQueue_SendReceiveOrder(t *testing.T) {
	q := newTxQueue(8)

	for i := uint32(0); i < 5; i++ {
		if !q.Send(tx(i)) {
			t.Fatalf("Send(%d) returned false", i)
		}
	}
	if q.Len() != 5 {
		t.Errorf("Len() = %d, want 5", q.Len())
	}

	for i := uint32(0); i < 5; i++ {
		got, ok := q.Receive()
		if !ok {
			t.Fatalf("Receive() closed early at %d", i)
		}
		if got.TxID != i {
			t.Errorf("Receive().TxID = %d, want %d", got.TxID, i)
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestTxQueue_GrowsWhenFull(t *testing.T) {
	q := newTxQueue(4)

	for i := uint32(0); i < 100; i++ {
		if !q.Send(tx(i)) {
			t.Fatalf("Send(%d) returned false", i)
		}
	}
	if q.Len() != 100 {
		t.Errorf("Len() = %d, want 100", q.Len())
	}
	if q.grows == 0 {
		t.Error("grows = 0, expected the queue to have grown")
	}

	// Order survives growth, including the wrapped region.
	for i := uint32(0); i < 100; i++ {
		got, ok := q.Receive()
		if !ok {
			t.Fatalf("Receive() closed early at %d", i)
		}
		if got.TxID != i {
			t.Errorf("Receive().TxID = %d, want %d", got.TxID, i)
		}
	}
}

func TestTxQueue_GrowAfterWrap(t *testing.T) {
	q := newTxQueue(4)

	// Advance head so the ring wraps before growing.
	for i := uint32(0); i < 3; i++ {
		q.Send(tx(i))
	}
	for i := uint32(0); i < 2; i++ {
		if got, _ := q.Receive(); got.TxID != i {
			t.Fatalf("Receive().TxID = %d, want %d", got.TxID, i)
		}
	}
	for i := uint32(3); i < 10; i++ {
		q.Send(tx(i))
	}

	for want := uint32(2); want < 10; want++ {
		got, ok := q.Receive()
		if !ok {
			t.Fatalf("Receive() closed early at %d", want)
		}
		if got.TxID != want {
			t.Errorf("Receive().TxID = %d, want %d", got.TxID, want)
		}
	}
}

func TestTxQueue_CloseDrainsRemaining(t *testing.T) {
	q := newTxQueue(8)

	q.Send(tx(1))
	q.Send(tx(2))
	q.Close()

	if q.Send(tx(3)) {
		t.Error("Send() after Close returned true")
	}

	for _, want := range []uint32{1, 2} {
		got, ok := q.Receive()
		if !ok {
			t.Fatalf("Receive() returned closed before draining %d", want)
		}
		if got.TxID != want {
			t.Errorf("Receive().TxID = %d, want %d", got.TxID, want)
		}
	}

	if _, ok := q.Receive(); ok {
		t.Error("Receive() on drained closed queue returned ok")
	}
}

func TestTxQueue_ReceiveBlocksUntilSend(t *testing.T) {
	q := newTxQueue(4)

	var wg sync.WaitGroup
	wg.Add(1)
	var got model.Transaction
	go func() {
		defer wg.Done()
		got, _ = q.Receive()
	}()

	time.Sleep(10 * time.Millisecond)
	q.Send(tx(42))
	wg.Wait()

	if got.TxID != 42 {
		t.Errorf("Receive().TxID = %d, want 42", got.TxID)
	}
}

func TestTxQueue_CloseWakesBlockedReceivers(t *testing.T) {
	q := newTxQueue(4)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, ok := q.Receive(); ok {
			t.Error("Receive() on empty closed queue returned ok")
		}
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Receive() still blocked after Close")
	}
}
