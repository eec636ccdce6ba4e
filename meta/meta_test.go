package meta_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/kzio/flaccore/meta"
)

func TestStreamInfoRoundTrip(t *testing.T) {
	want := &meta.StreamInfo{
		BlockSizeMin:  4096,
		BlockSizeMax:  4096,
		FrameSizeMin:  1024,
		FrameSizeMax:  8192,
		SampleRate:    44100,
		NChannels:     2,
		BitsPerSample: 16,
		NSamples:      123456,
		MD5sum:        [16]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10},
	}

	buf := &bytes.Buffer{}
	if err := meta.EncodeStreamInfo(buf, want); err != nil {
		t.Fatalf("EncodeStreamInfo: %v", err)
	}
	got, err := meta.DecodeStreamInfo(buf)
	if err != nil {
		t.Fatalf("DecodeStreamInfo: %v", err)
	}
	if *got != *want {
		t.Errorf("round-trip mismatch: want %+v, got %+v", want, got)
	}
}

func TestBlockHeaderRoundTrip(t *testing.T) {
	cases := []meta.Header{
		{Type: meta.TypeStreamInfo, Length: 34, IsLast: false},
		{Type: meta.TypeVorbisComment, Length: 202, IsLast: true},
		{Type: meta.TypePadding, Length: 4096, IsLast: false},
	}
	for i, want := range cases {
		buf := &bytes.Buffer{}
		if err := meta.EncodeHeader(buf, want); err != nil {
			t.Fatalf("case %d: EncodeHeader: %v", i, err)
		}
		buf.Write(make([]byte, want.Length))
		block, err := meta.New(buf)
		if err != nil {
			t.Fatalf("case %d: New: %v", i, err)
		}
		if block.Header != want {
			t.Errorf("case %d: header mismatch: want %+v, got %+v", i, want, block.Header)
		}
	}
}

func TestParsePadding(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := meta.EncodeHeader(buf, meta.Header{Type: meta.TypePadding, Length: 16, IsLast: true}); err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}
	buf.Write(make([]byte, 16))
	if _, err := meta.Parse(buf); err != nil {
		t.Fatalf("Parse: %v", err)
	}
}

func TestParsePaddingNonZero(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := meta.EncodeHeader(buf, meta.Header{Type: meta.TypePadding, Length: 4, IsLast: true}); err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}
	buf.Write([]byte{0, 0, 1, 0})
	if _, err := meta.Parse(buf); err == nil {
		t.Fatal("expected an error for non-zero padding, got nil")
	}
}

func TestParseApplication(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := meta.EncodeHeader(buf, meta.Header{Type: meta.TypeApplication, Length: 8, IsLast: true}); err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}
	buf.Write([]byte{0x66, 0x61, 0x6b, 0x65, 0xde, 0xad, 0xbe, 0xef})
	block, err := meta.Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	app, ok := block.Body.(*meta.Application)
	if !ok {
		t.Fatalf("expected *meta.Application body, got %T", block.Body)
	}
	if app.ID != 0x66616b65 {
		t.Errorf("ID mismatch: got %#x", app.ID)
	}
	if !bytes.Equal(app.Data, []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Errorf("data mismatch: got %x", app.Data)
	}
}

func TestParseSeekTable(t *testing.T) {
	buf := &bytes.Buffer{}
	points := []meta.SeekPoint{
		{SampleNum: 0, Offset: 0, NSamples: 4096},
		{SampleNum: 4096, Offset: 8192, NSamples: 4096},
		{SampleNum: meta.PlaceholderPoint, Offset: 0, NSamples: 0},
	}
	if err := meta.EncodeHeader(buf, meta.Header{Type: meta.TypeSeekTable, Length: int64(len(points) * 18), IsLast: true}); err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}
	for _, p := range points {
		writeSeekPoint(t, buf, p)
	}
	block, err := meta.Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	st, ok := block.Body.(*meta.SeekTable)
	if !ok {
		t.Fatalf("expected *meta.SeekTable body, got %T", block.Body)
	}
	if len(st.Points) != len(points) {
		t.Fatalf("expected %d points, got %d", len(points), len(st.Points))
	}
	for i, p := range points {
		if st.Points[i] != p {
			t.Errorf("point %d mismatch: want %+v, got %+v", i, p, st.Points[i])
		}
	}
}

func writeSeekPoint(t *testing.T, buf *bytes.Buffer, p meta.SeekPoint) {
	t.Helper()
	var raw [18]byte
	putUint64(raw[0:8], p.SampleNum)
	putUint64(raw[8:16], p.Offset)
	putUint16(raw[16:18], p.NSamples)
	buf.Write(raw[:])
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
}

func putUint16(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}

func TestParseVorbisComment(t *testing.T) {
	buf := &bytes.Buffer{}
	body := &bytes.Buffer{}
	writeLEUint32(body, 8)
	body.WriteString("flaccore")
	writeLEUint32(body, 2)
	writeLEVorbisEntry(body, "ARTIST", "Test")
	writeLEVorbisEntry(body, "TITLE", "Song")

	if err := meta.EncodeHeader(buf, meta.Header{Type: meta.TypeVorbisComment, Length: int64(body.Len()), IsLast: true}); err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}
	buf.Write(body.Bytes())

	block, err := meta.Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	vc, ok := block.Body.(*meta.VorbisComment)
	if !ok {
		t.Fatalf("expected *meta.VorbisComment body, got %T", block.Body)
	}
	if len(vc.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(vc.Tags))
	}
	if vc.Tags[0] != [2]string{"ARTIST", "Test"} {
		t.Errorf("tag 0 mismatch: got %+v", vc.Tags[0])
	}
	if vc.Tags[1] != [2]string{"TITLE", "Song"} {
		t.Errorf("tag 1 mismatch: got %+v", vc.Tags[1])
	}
}

func writeLEUint32(buf *bytes.Buffer, v uint32) {
	buf.Write([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

func writeLEVorbisEntry(buf *bytes.Buffer, name, value string) {
	vector := name + "=" + value
	writeLEUint32(buf, uint32(len(vector)))
	buf.WriteString(vector)
}

func TestVorbisCommentTooManyTags(t *testing.T) {
	buf := &bytes.Buffer{}
	body := &bytes.Buffer{}
	writeLEUint32(body, 1)
	body.WriteString("x")
	writeLEUint32(body, 0xFF000000) // declares far more tags than fit in Length
	if err := meta.EncodeHeader(buf, meta.Header{Type: meta.TypeVorbisComment, Length: int64(body.Len()), IsLast: true}); err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}
	buf.Write(body.Bytes())
	_, err := meta.Parse(buf)
	if !errors.Is(err, meta.ErrDeclaredBlockTooBig) {
		t.Errorf("expected ErrDeclaredBlockTooBig, got %v", err)
	}
}

func TestBlockSkip(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := meta.EncodeHeader(buf, meta.Header{Type: meta.TypeApplication, Length: 8, IsLast: true}); err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}
	buf.Write([]byte{0x66, 0x61, 0x6b, 0x65, 0xde, 0xad, 0xbe, 0xef})
	buf.WriteString("trailing")

	block, err := meta.New(buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := block.Skip(); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	rest := buf.String()
	if rest != "trailing" {
		t.Errorf("expected Skip to leave only trailing data, got %q", rest)
	}
}

func TestReservedBlockType(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := meta.EncodeHeader(buf, meta.Header{Type: 10, Length: 0, IsLast: true}); err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}
	if _, err := meta.New(buf); !errors.Is(err, meta.ErrReservedType) {
		t.Errorf("expected ErrReservedType, got %v", err)
	}
}
