package response

import "testing"

func TestBuildOK(t *testing.T) {
	buf := make([]byte, 256)
	n, ok := Build(buf, StatusOK, 1234, true)
	if !ok {
		t.Fatal("Build: want ok")
	}
	got := string(buf[:n])
	want := "HTTP/1.1 200 OK\r\nContent-Length: 1234\r\nContent-Type:text/html\r\nConnection: keep-alive\r\n\r\n"
	if got != want {
		t.Errorf("Build = %q, want %q", got, want)
	}
}

func TestBuildErrorBody(t *testing.T) {
	buf := make([]byte, 256)
	n, ok := Build(buf, StatusNotFound, int64(len(StatusNotFound.Body)), false)
	if !ok {
		t.Fatal("Build: want ok")
	}
	got := string(buf[:n])
	if got[len(got)-len(StatusNotFound.Body):] != StatusNotFound.Body {
		t.Errorf("Build body suffix = %q, want %q", got, StatusNotFound.Body)
	}
}

func TestBuildOverflow(t *testing.T) {
	buf := make([]byte, 8)
	_, ok := Build(buf, StatusOK, 1, false)
	if ok {
		t.Fatal("Build: want overflow to report !ok")
	}
}

func TestAdvancePartialFirstSegment(t *testing.T) {
	segs := [][]byte{[]byte("hello"), []byte("world")}
	segs = Advance(segs, 2)
	if len(segs) != 2 || string(segs[0]) != "llo" || string(segs[1]) != "world" {
		t.Fatalf("Advance(2) = %v", segsAsStrings(segs))
	}
}

func TestAdvanceDropsFirstSegment(t *testing.T) {
	segs := [][]byte{[]byte("hello"), []byte("world")}
	segs = Advance(segs, 5)
	if len(segs) != 1 || string(segs[0]) != "world" {
		t.Fatalf("Advance(5) = %v", segsAsStrings(segs))
	}
}

func TestAdvanceSpansBothSegments(t *testing.T) {
	segs := [][]byte{[]byte("hello"), []byte("world")}
	segs = Advance(segs, 7)
	if len(segs) != 1 || string(segs[0]) != "rld" {
		t.Fatalf("Advance(7) = %v", segsAsStrings(segs))
	}
}

func TestAdvanceExact(t *testing.T) {
	segs := [][]byte{[]byte("hello"), []byte("world")}
	segs = Advance(segs, 10)
	if len(segs) != 0 {
		t.Fatalf("Advance(10) = %v, want empty", segsAsStrings(segs))
	}
}

func segsAsStrings(segs [][]byte) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = string(s)
	}
	return out
}
