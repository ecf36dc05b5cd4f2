package arxiv

import "testing"

func TestEntryID(t *testing.T) {
	var cases = []struct {
		id   string
		raw  string
		base string
	}{
		{"http://arxiv.org/abs/2003.00001v2", "2003.00001v2", "2003.00001"},
		{"https://arxiv.org/abs/2003.00001", "2003.00001", "2003.00001"},
		{"http://arxiv.org/abs/q-bio/0301001v1", "q-bio/0301001v1", "q-bio/0301001"},
		{"2004.11111v10", "2004.11111v10", "2004.11111"},
	}
	for _, c := range cases {
		e := Entry{ID: c.id}
		if got := e.RawID(); got != c.raw {
			t.Errorf("RawID(%s): got %s, want %s", c.id, got, c.raw)
		}
		if got := e.BaseID(); got != c.base {
			t.Errorf("BaseID(%s): got %s, want %s", c.id, got, c.base)
		}
	}
}
