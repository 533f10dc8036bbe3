package protocol

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"testing/quick"
)

func sampleCharacters() []CharacterState {
	return []CharacterState{
		{ID: 1, X: 512, Y: 384, Hitpoints: 3, Ammo: 2, Knockback: 40},
		{ID: 2, X: -1.5, Y: math.MaxFloat32, Hitpoints: 0, Ammo: 0, Knockback: 65.25},
		{ID: math.MaxInt32, X: math.SmallestNonzeroFloat32, Y: 0, Hitpoints: -4, Ammo: math.MaxInt32, Knockback: 40},
	}
}

func TestClientRoundTripEveryKind(t *testing.T) {
	msgs := []ClientMessage{
		Quit{},
		RequestCoopPartner{},
		PlayerEvent{CharacterID: 7, Action: 4},
		PlayerRealtimeChange{CharacterID: 7, Action: 1, Enabled: true},
		PlayerRealtimeChange{CharacterID: 7, Action: 1, Enabled: false},
		PositionUpdate{},
		PositionUpdate{Characters: sampleCharacters()},
	}
	for _, m := range msgs {
		b, err := EncodeClient(m)
		if err != nil {
			t.Fatalf("encode %T: %v", m, err)
		}
		got, err := DecodeClient(b)
		if err != nil {
			t.Fatalf("decode %T: %v", m, err)
		}
		if !reflect.DeepEqual(got, m) {
			t.Fatalf("round trip %T: got %+v, want %+v", m, got, m)
		}
	}
}

func TestServerRoundTripEveryKind(t *testing.T) {
	msgs := []ServerMessage{
		MissionSuccess{},
		BroadcastMessage{},
		BroadcastMessage{Text: "New player!"},
		BroadcastMessage{Text: strings.Repeat("x", MaxStringLen)},
		BroadcastMessage{Text: "ünïcødé ✈"},
		SpawnSelf{ID: 1, X: 512, Y: 384},
		PlayerConnect{ID: 2, X: -3, Y: 4.5},
		AcceptCoopPartner{ID: 3, X: 10, Y: 20},
		PlayerDisconnect{ID: 9},
		PlayerEvent{CharacterID: 1, Action: 3},
		PlayerRealtimeChange{CharacterID: 2, Action: 0, Enabled: true},
		SpawnPickup{Type: 2, X: 100, Y: 50},
		InitialState{},
		InitialState{Characters: sampleCharacters()},
		UpdateClientState{Characters: sampleCharacters()},
	}
	for _, m := range msgs {
		b, err := EncodeServer(m)
		if err != nil {
			t.Fatalf("encode %T: %v", m, err)
		}
		got, err := DecodeServer(b)
		if err != nil {
			t.Fatalf("decode %T: %v", m, err)
		}
		if !reflect.DeepEqual(got, m) {
			t.Fatalf("round trip %T: got %+v, want %+v", m, got, m)
		}
	}
}

func TestPositionUpdateRoundTripArbitraryValues(t *testing.T) {
	f := func(ids []int32, xs []float32, hp int32, knock float32) bool {
		cs := make([]CharacterState, 0, len(ids))
		for i, id := range ids {
			x := float32(0)
			if i < len(xs) {
				x = xs[i]
			}
			cs = append(cs, CharacterState{ID: id, X: x, Y: -x, Hitpoints: hp, Ammo: int32(i), Knockback: knock})
		}
		if len(cs) == 0 {
			cs = nil
		}
		m := UpdateClientState{Characters: cs}
		b, err := EncodeServer(m)
		if err != nil {
			return false
		}
		got, err := DecodeServer(b)
		return err == nil && reflect.DeepEqual(got, m)
	}
	cfg := &quick.Config{MaxCount: 200, Rand: rand.New(rand.NewSource(1))}
	if err := quick.Check(f, cfg); err != nil {
		t.Fatal(err)
	}
}

func TestEncodePreservesFloatBits(t *testing.T) {
	x := math.Float32frombits(0x7f7fffff)
	b, err := EncodeServer(SpawnSelf{ID: 1, X: x, Y: -0})
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeServer(b)
	if err != nil {
		t.Fatal(err)
	}
	if math.Float32bits(got.(SpawnSelf).X) != 0x7f7fffff {
		t.Fatalf("float bits changed: %#x", math.Float32bits(got.(SpawnSelf).X))
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	w := &writer{}
	w.int32(99)
	if _, err := DecodeClient(w.buf); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("client err = %v, want ErrUnknownKind", err)
	}
	if _, err := DecodeServer(w.buf); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("server err = %v, want ErrUnknownKind", err)
	}
	w = &writer{}
	w.int32(-1)
	if _, err := DecodeClient(w.buf); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("negative kind err = %v, want ErrUnknownKind", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	full, err := EncodeClient(PositionUpdate{Characters: sampleCharacters()})
	if err != nil {
		t.Fatal(err)
	}
	for n := 0; n < len(full); n++ {
		if _, err := DecodeClient(full[:n]); err == nil {
			t.Fatalf("decode of %d/%d bytes succeeded", n, len(full))
		}
	}
	if _, err := DecodeClient(append(full, 0)); !errors.Is(err, ErrTrailingBytes) {
		t.Fatalf("trailing err = %v, want ErrTrailingBytes", err)
	}

	w := &writer{}
	w.int32(int32(ClientPositionUpdate))
	w.int32(-2)
	if _, err := DecodeClient(w.buf); !errors.Is(err, ErrNegativeLength) {
		t.Fatalf("negative count err = %v, want ErrNegativeLength", err)
	}

	w = &writer{}
	w.int32(int32(ServerBroadcastMessage))
	w.int32(MaxStringLen + 1)
	if _, err := DecodeServer(w.buf); !errors.Is(err, ErrStringTooLong) {
		t.Fatalf("long string err = %v, want ErrStringTooLong", err)
	}
}

func TestEncodeRejectsOversizedString(t *testing.T) {
	_, err := EncodeServer(BroadcastMessage{Text: strings.Repeat("y", MaxStringLen+1)})
	if !errors.Is(err, ErrStringTooLong) {
		t.Fatalf("err = %v, want ErrStringTooLong", err)
	}
}

func TestWireLayoutIsBigEndianFixedWidth(t *testing.T) {
	b, err := EncodeClient(PlayerRealtimeChange{CharacterID: 0x01020304, Action: 5, Enabled: true})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0, 0, 0, 1, // discriminator
		1, 2, 3, 4, // character id
		0, 0, 0, 5, // action
		1, // enabled
	}
	if !bytes.Equal(b, want) {
		t.Fatalf("layout = % x, want % x", b, want)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	p1, _ := EncodeClient(PlayerEvent{CharacterID: 1, Action: 2})
	p2, _ := EncodeClient(Quit{})
	if err := WriteFrame(&buf, p1); err != nil {
		t.Fatal(err)
	}
	if err := WriteFrame(&buf, p2); err != nil {
		t.Fatal(err)
	}
	got1, err := ReadFrame(&buf)
	if err != nil || !bytes.Equal(got1, p1) {
		t.Fatalf("frame 1 = % x, %v", got1, err)
	}
	got2, err := ReadFrame(&buf)
	if err != nil || !bytes.Equal(got2, p2) {
		t.Fatalf("frame 2 = % x, %v", got2, err)
	}
}

func TestReadFrameRejectsOversized(t *testing.T) {
	hdr := []byte{0xff, 0xff, 0xff, 0xff}
	if _, err := ReadFrame(bytes.NewReader(hdr)); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("err = %v, want ErrFrameTooLarge", err)
	}
}

func TestKindConstants(t *testing.T) {
	if ClientQuit != 4 || ClientPositionUpdate != 3 {
		t.Fatalf("client kinds shifted: quit=%d position=%d", ClientQuit, ClientPositionUpdate)
	}
	if ServerUpdateClientState != 9 || ServerMissionSuccess != 10 {
		t.Fatalf("server kinds shifted: update=%d success=%d", ServerUpdateClientState, ServerMissionSuccess)
	}
	if ClientKind(42).String() != "Unknown" || ServerSpawnSelf.String() != "SpawnSelf" {
		t.Fatalf("unexpected kind names")
	}
}
