package registry

import (
	"regexp"
	"sync"
	"testing"
	"time"
)

func TestRegistry_CreateRoom(t *testing.T) {
	reg := New(Options{})

	t.Run("allocates passcode and room key", func(t *testing.T) {
		room, err := reg.CreateRoom()
		if err != nil {
			t.Fatalf("Failed to create room: %v", err)
		}

		if !regexp.MustCompile(`^[1-9][0-9]{5}$`).MatchString(room.Passcode) {
			t.Errorf("Expected 6-digit passcode in 100000-999999, got %q", room.Passcode)
		}
		if !regexp.MustCompile(`^[0-9a-f]{32}$`).MatchString(room.RoomKey) {
			t.Errorf("Expected 32 lowercase hex chars, got %q", room.RoomKey)
		}
	})

	t.Run("expiry is TTL from creation", func(t *testing.T) {
		reg := New(Options{TTL: 40 * time.Minute})
		before := time.Now()
		room, err := reg.CreateRoom()
		if err != nil {
			t.Fatalf("Failed to create room: %v", err)
		}
		after := time.Now()

		if room.ExpireAt.Before(before.Add(40*time.Minute)) || room.ExpireAt.After(after.Add(40*time.Minute)) {
			t.Errorf("ExpireAt %v not within 40 minutes of creation", room.ExpireAt)
		}
	})

	t.Run("passcodes are pairwise distinct while live", func(t *testing.T) {
		reg := New(Options{})
		seen := make(map[string]bool)
		for i := 0; i < 200; i++ {
			room, err := reg.CreateRoom()
			if err != nil {
				t.Fatalf("Failed to create room %d: %v", i, err)
			}
			if seen[room.Passcode] {
				t.Fatalf("Duplicate passcode among live rooms: %s", room.Passcode)
			}
			seen[room.Passcode] = true
		}
	})
}

func TestRegistry_LookupByPasscode(t *testing.T) {
	reg := New(Options{})
	created, err := reg.CreateRoom()
	if err != nil {
		t.Fatalf("Failed to create room: %v", err)
	}

	t.Run("existing room", func(t *testing.T) {
		room, err := reg.LookupByPasscode(created.Passcode)
		if err != nil {
			t.Fatalf("Failed to look up room: %v", err)
		}
		if room.RoomKey != created.RoomKey {
			t.Errorf("Expected room key %s, got %s", created.RoomKey, room.RoomKey)
		}
	})

	t.Run("trims whitespace", func(t *testing.T) {
		room, err := reg.LookupByPasscode("  " + created.Passcode + "\n")
		if err != nil {
			t.Fatalf("Failed to look up room with padded passcode: %v", err)
		}
		if room.Passcode != created.Passcode {
			t.Errorf("Expected passcode %s, got %s", created.Passcode, room.Passcode)
		}
	})

	t.Run("unknown passcode", func(t *testing.T) {
		if _, err := reg.LookupByPasscode("000000"); err != ErrRoomNotFound {
			t.Errorf("Expected ErrRoomNotFound, got %v", err)
		}
	})
}

func TestRegistry_LookupByRoomKey(t *testing.T) {
	reg := New(Options{})
	created, err := reg.CreateRoom()
	if err != nil {
		t.Fatalf("Failed to create room: %v", err)
	}

	t.Run("resolves back to the same passcode", func(t *testing.T) {
		room, err := reg.LookupByRoomKey(created.RoomKey)
		if err != nil {
			t.Fatalf("Failed to look up room by key: %v", err)
		}
		if room.Passcode != created.Passcode {
			t.Errorf("Expected passcode %s, got %s", created.Passcode, room.Passcode)
		}
	})

	t.Run("unknown room key", func(t *testing.T) {
		if _, err := reg.LookupByRoomKey("deadbeefdeadbeefdeadbeefdeadbeef"); err != ErrRoomNotFound {
			t.Errorf("Expected ErrRoomNotFound, got %v", err)
		}
	})
}

// The two maps must remain a strict bidirectional index over the same set of
// live rooms.
func TestRegistry_BidirectionalConsistency(t *testing.T) {
	reg := New(Options{})

	for i := 0; i < 50; i++ {
		if _, err := reg.CreateRoom(); err != nil {
			t.Fatalf("Failed to create room: %v", err)
		}
	}

	for _, room := range reg.List() {
		back, err := reg.LookupByRoomKey(room.RoomKey)
		if err != nil {
			t.Fatalf("Room key %s did not resolve: %v", room.RoomKey, err)
		}
		if back.Passcode != room.Passcode {
			t.Errorf("Round trip through room key gave passcode %s, want %s", back.Passcode, room.Passcode)
		}
	}

	reg.mu.Lock()
	if len(reg.byPasscode) != len(reg.byRoomKey) {
		t.Errorf("Index size mismatch: %d passcodes vs %d room keys", len(reg.byPasscode), len(reg.byRoomKey))
	}
	reg.mu.Unlock()
}

func TestRegistry_Expiry(t *testing.T) {
	reg := New(Options{TTL: 30 * time.Millisecond})

	var mu sync.Mutex
	fired := 0
	var expired *Room
	reg.SetExpiryFunc(func(room *Room) {
		mu.Lock()
		fired++
		expired = room
		mu.Unlock()
	})

	room, err := reg.CreateRoom()
	if err != nil {
		t.Fatalf("Failed to create room: %v", err)
	}

	time.Sleep(150 * time.Millisecond)

	if _, err := reg.LookupByPasscode(room.Passcode); err != ErrRoomNotFound {
		t.Errorf("Expected passcode to be unresolvable after expiry, got %v", err)
	}
	if _, err := reg.LookupByRoomKey(room.RoomKey); err != ErrRoomNotFound {
		t.Errorf("Expected room key to be unresolvable after expiry, got %v", err)
	}
	if reg.Count() != 0 {
		t.Errorf("Expected 0 live rooms after expiry, got %d", reg.Count())
	}

	mu.Lock()
	defer mu.Unlock()
	if fired != 1 {
		t.Errorf("Expected expiry callback to fire exactly once, fired %d times", fired)
	}
	if expired == nil || expired.RoomKey != room.RoomKey {
		t.Errorf("Expiry callback received wrong room: %+v", expired)
	}
}

func TestRegistry_ExpiredPasscodeReusable(t *testing.T) {
	reg := New(Options{TTL: 20 * time.Millisecond})

	room, err := reg.CreateRoom()
	if err != nil {
		t.Fatalf("Failed to create room: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	// Once the room is gone its passcode is free again; creating many rooms
	// must not trip over the stale value.
	for i := 0; i < 100; i++ {
		if _, err := reg.CreateRoom(); err != nil {
			t.Fatalf("Failed to create room after expiry: %v", err)
		}
	}
	_ = room
}

func TestRegistry_ConcurrentCreate(t *testing.T) {
	reg := New(Options{})

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := reg.CreateRoom(); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent create: %v", err)
	}

	if reg.Count() != 100 {
		t.Errorf("Expected 100 live rooms, got %d", reg.Count())
	}

	seen := make(map[string]bool)
	for _, room := range reg.List() {
		if seen[room.Passcode] {
			t.Errorf("Duplicate passcode after concurrent create: %s", room.Passcode)
		}
		seen[room.Passcode] = true
	}
}
