package hedera

import "testing"

func TestSanitizeKeyStripsWhitespace(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"abc123", "abc123"},
		{"  abc123  ", "abc123"},
		{"abc\n123", "abc123"},
		{"ab c\t1 2\r\n3", "abc123"},
	}
	for _, tc := range cases {
		if got := SanitizeKey(tc.in); got != tc.want {
			t.Errorf("SanitizeKey(%q): want=%q got=%q", tc.in, tc.want, got)
		}
	}
}

func TestDetectKeyFormat(t *testing.T) {
	hex64 := "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2"
	cases := []struct {
		in   string
		want string
	}{
		{"302e020100300506032b657004220420" + hex64, keyFormatDER},
		{"3030020100300706052b8104000a", keyFormatDER},
		{"3081" + hex64, keyFormatDER},
		{hex64, keyFormatHex64},
		{"not-a-key", keyFormatGeneric},
		{hex64[:62], keyFormatGeneric},
	}
	for _, tc := range cases {
		if got := detectKeyFormat(tc.in); got != tc.want {
			t.Errorf("detectKeyFormat(%q): want=%q got=%q", tc.in, tc.want, got)
		}
	}
}

func TestLoadPrivateKeyAnyRejectsEmpty(t *testing.T) {
	if _, err := LoadPrivateKeyAny(""); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestLoadPrivateKeyAnyRejectsGarbage(t *testing.T) {
	_, err := LoadPrivateKeyAny("definitely-not-a-private-key")
	if err == nil {
		t.Fatal("expected error for unparseable key")
	}
}
