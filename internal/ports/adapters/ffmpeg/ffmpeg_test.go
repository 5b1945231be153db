package ffmpeg

import "testing"

func TestParseFrameRate(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		err  bool
	}{
		{in: "30/1", want: 30},
		{in: "30000/1001", want: 29.97002997002997},
		{in: "25", want: 25},
		{in: "60/0", err: true},
		{in: "abc", err: true},
		{in: "", err: true},
	}
	for _, tc := range cases {
		got, err := parseFrameRate(tc.in)
		if tc.err {
			if err == nil {
				t.Fatalf("%q: expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseChapters(t *testing.T) {
	raw := []byte(`{
		"chapters": [
			{"id": 0, "start": 0, "end": 4000, "tags": {"title": "Intro"}},
			{"id": 1, "start": 5250, "end": 5250, "tags": {"title": "Bad Take"}}
		]
	}`)
	chapters, err := parseChapters(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chapters))
	}
	if chapters[1].StartMs != 5250 || chapters[1].Title != "Bad Take" {
		t.Fatalf("chapter 1: got %+v", chapters[1])
	}
}

func TestParseChapters_NoChapters(t *testing.T) {
	chapters, err := parseChapters([]byte(`{"chapters": []}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(chapters) != 0 {
		t.Fatalf("expected no chapters, got %d", len(chapters))
	}
}
