package game

import "testing"

func TestRoundStorePutReplaces(t *testing.T) {
	store := NewRoundStore()

	store.Put("0xABC", "RIVER")
	store.Put("0xABC", "STONE")

	round, ok := store.Get("0xABC")
	if !ok {
		t.Fatal("round should exist")
	}
	if round.Secret != "STONE" {
		t.Errorf("secret = %s, want STONE (last writer wins)", round.Secret)
	}
}

func TestRoundStoreCaseFoldsAddresses(t *testing.T) {
	store := NewRoundStore()

	store.Put("0xAbCd", "RIVER")
	if _, ok := store.Get("0xABCD"); !ok {
		t.Error("mixed-case lookup should hit the same round")
	}
	if _, ok := store.Get(" 0xabcd "); !ok {
		t.Error("padded lookup should hit the same round")
	}
}

func TestRoundStoreRemove(t *testing.T) {
	store := NewRoundStore()

	store.Put("0xABC", "RIVER")
	store.Remove("0xABC")
	if _, ok := store.Get("0xABC"); ok {
		t.Error("round should be gone after Remove")
	}
}

func TestConsumeWinOnce(t *testing.T) {
	store := NewRoundStore()

	if store.ConsumeWin("0xABC") {
		t.Fatal("no round, nothing to consume")
	}

	store.Put("0xABC", "RIVER")
	if store.ConsumeWin("0xABC") {
		t.Fatal("round not won yet, nothing to consume")
	}

	store.MarkWon("0xABC")
	if !store.HasWin("0xABC") {
		t.Fatal("win flag should be armed")
	}
	if !store.ConsumeWin("0xABC") {
		t.Fatal("first consume must succeed")
	}
	if store.ConsumeWin("0xABC") {
		t.Error("second consume must fail, flag is one-shot")
	}
	if store.HasWin("0xABC") {
		t.Error("flag must be cleared after consume")
	}
}
