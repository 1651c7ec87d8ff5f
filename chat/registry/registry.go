package registry

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrRoomNotFound           = errors.New("room not found")
	ErrPasscodeSpaceExhausted = errors.New("passcode space exhausted")
)

const (
	// DefaultTTL is how long a room stays live after creation.
	DefaultTTL = 40 * time.Minute

	// DefaultMaxPasscodeAttempts caps the resampling loop when allocating a
	// unique passcode. The space holds 900,000 values, so hitting the cap
	// means something is very wrong.
	DefaultMaxPasscodeAttempts = 1000

	passcodeMin   = 100000
	passcodeRange = 900000
	roomKeyBytes  = 16
)

// Room is an immutable record of a live chat room. Expiry is enacted by
// removal from the registry, never by mutating the record.
type Room struct {
	Passcode  string
	RoomKey   string
	CreatedAt time.Time
	ExpireAt  time.Time
}

// ExpiryFunc is invoked exactly once when a room's expiry timer removes it
// from the registry. It runs on the timer goroutine, outside the registry
// lock, so implementations may call back into the registry.
type ExpiryFunc func(room *Room)

// entry pairs a room with its pending expiry timer. The timer is kept so a
// future early-close feature could cancel it; nothing cancels it today.
type entry struct {
	room  *Room
	timer *time.Timer
}

// Registry is the single in-process authority over room existence, identity
// mapping, and expiry. The two maps form a bidirectional index over the same
// set of live rooms and are always updated together under one lock.
type Registry struct {
	byPasscode map[string]*entry
	byRoomKey  map[string]string

	ttl         time.Duration
	maxAttempts int
	onExpire    ExpiryFunc
	mu          sync.Mutex
}

// Options configures a Registry. Zero values fall back to defaults.
type Options struct {
	TTL                 time.Duration
	MaxPasscodeAttempts int
}

// New creates a registry with the given options.
func New(opts Options) *Registry {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxPasscodeAttempts <= 0 {
		opts.MaxPasscodeAttempts = DefaultMaxPasscodeAttempts
	}
	return &Registry{
		byPasscode:  make(map[string]*entry),
		byRoomKey:   make(map[string]string),
		ttl:         opts.TTL,
		maxAttempts: opts.MaxPasscodeAttempts,
	}
}

// SetExpiryFunc registers the callback invoked when a room expires. It must
// be called before the first CreateRoom; later timers capture the value set
// at creation time.
func (r *Registry) SetExpiryFunc(fn ExpiryFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onExpire = fn
}

// CreateRoom allocates a new room: a 128-bit hex roomKey (collisions treated
// as negligible, no uniqueness check), a 6-digit passcode unique among live
// rooms, and an expiry timer at now+TTL. Returns a copy of the room record.
func (r *Registry) CreateRoom() (*Room, error) {
	roomKey, err := generateRoomKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate room key: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	passcode, err := r.generateUniquePasscode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	room := &Room{
		Passcode:  passcode,
		RoomKey:   roomKey,
		CreatedAt: now,
		ExpireAt:  now.Add(r.ttl),
	}

	e := &entry{room: room}
	e.timer = time.AfterFunc(r.ttl, func() {
		r.expire(passcode)
	})

	r.byPasscode[passcode] = e
	r.byRoomKey[roomKey] = passcode

	logrus.WithFields(logrus.Fields{
		"passcode":  passcode,
		"room_key":  roomKey,
		"expire_at": room.ExpireAt,
	}).Info("Room created")

	return cloneRoom(room), nil
}

// LookupByPasscode resolves a live room by its passcode. Input whitespace is
// trimmed. Unknown and expired passcodes are deliberately indistinguishable:
// both return ErrRoomNotFound.
func (r *Registry) LookupByPasscode(passcode string) (*Room, error) {
	passcode = strings.TrimSpace(passcode)

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byPasscode[passcode]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return cloneRoom(e.room), nil
}

// LookupByRoomKey resolves a live room by its roomKey via the reverse index.
// It lets a connection that already holds its roomKey recover room state
// (including the passcode) without re-entering the passcode.
func (r *Registry) LookupByRoomKey(roomKey string) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	passcode, ok := r.byRoomKey[roomKey]
	if !ok {
		return nil, ErrRoomNotFound
	}
	e, ok := r.byPasscode[passcode]
	if !ok {
		// The maps are updated as a pair under the lock; this branch would
		// mean the bidirectional index broke.
		logrus.WithField("room_key", roomKey).Error("Reverse index entry without matching passcode entry")
		return nil, ErrRoomNotFound
	}
	return cloneRoom(e.room), nil
}

// List returns copies of all live rooms.
func (r *Registry) List() []*Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms := make([]*Room, 0, len(r.byPasscode))
	for _, e := range r.byPasscode {
		rooms = append(rooms, cloneRoom(e.room))
	}
	return rooms
}

// Count returns the number of live rooms.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byPasscode)
}

// expire removes a room when its timer fires. If the room was already removed
// the call is a no-op, so the callback fires at most once per room.
func (r *Registry) expire(passcode string) {
	r.mu.Lock()
	e, ok := r.byPasscode[passcode]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.byPasscode, passcode)
	delete(r.byRoomKey, e.room.RoomKey)
	onExpire := r.onExpire
	r.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"passcode": passcode,
		"room_key": e.room.RoomKey,
	}).Info("Room expired")

	if onExpire != nil {
		onExpire(cloneRoom(e.room))
	}
}

// generateUniquePasscode samples uniform 6-digit values (100000-999999) and
// resamples on collision with a live room, up to the configured cap.
// Callers must hold r.mu.
func (r *Registry) generateUniquePasscode() (string, error) {
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(passcodeRange))
		if err != nil {
			return "", fmt.Errorf("failed to generate random passcode: %w", err)
		}
		passcode := fmt.Sprintf("%06d", n.Int64()+passcodeMin)

		if _, exists := r.byPasscode[passcode]; !exists {
			return passcode, nil
		}
		logrus.WithField("passcode", passcode).Debugf("Passcode collision, retrying (attempt %d)", attempt+1)
	}
	return "", ErrPasscodeSpaceExhausted
}

// generateRoomKey returns 128 bits of cryptographic randomness, hex-encoded
// to 32 lowercase characters.
func generateRoomKey() (string, error) {
	b := make([]byte, roomKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func cloneRoom(room *Room) *Room {
	c := *room
	return &c
}
