package store

import "testing"

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern, key string
		want         bool
	}{
		{"mikro:*", "mikro:a", true},
		{"mikro:*", "mikro:", true},
		{"mikro:*", "mikro:a/b/c", true},
		{"mikro:*", "other:a", false},
		{"mikro:*", "mikro", false},
		{`a\*:*`, "a*:x", true},
		{`a\*:*`, "ab:x", false},
		{`a\?:*`, "a?:x", true},
		{`a\?:*`, "ab:x", false},
		{`\[x\]:*`, "[x]:k", true},
		{"k?", "k1", true},
		{"k?", "k", false},
		{"k[0-9]", "k5", true},
		{"k[0-9]", "ka", false},
		{"k[^0-9]", "ka", true},
		{"k[abc]x", "kbx", true},
		{"*b", "aaab", true},
		{"a**b", "ab", true},
		{"", "", true},
		{"", "a", false},
	}
	for _, tc := range cases {
		if got := Match(tc.pattern, tc.key); got != tc.want {
			t.Errorf("Match(%q, %q)=%v want %v", tc.pattern, tc.key, got, tc.want)
		}
	}
}

func TestBatches(t *testing.T) {
	keys := []string{"a", "b", "c", "d", "e"}
	var got [][]string
	for batch, err := range Batches(keys, 2) {
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		got = append(got, batch)
	}
	if len(got) != 3 || len(got[0]) != 2 || len(got[2]) != 1 || got[2][0] != "e" {
		t.Fatalf("unexpected batches %v", got)
	}

	n := 0
	for range Batches(keys, 1) {
		n++
		break
	}
	if n != 1 {
		t.Fatalf("early break not honored")
	}

	for range Batches(nil, 10) {
		t.Fatalf("empty input must yield nothing")
	}
}
