package convert

import (
	"fmt"
	"testing"
)

func TestCleanDOI(t *testing.T) {
	testCases := []struct {
		raw    string
		result string
	}{
		{"", ""},
		{"10.1234/asdf ", "10.1234/asdf"},
		{"10.1037//0002-9432.72.1.50", "10.1037/0002-9432.72.1.50"},
		{"10.1026//1616-1041.3.2.86", "10.1026//1616-1041.3.2.86"},
		{"10.23750/abm.v88i2 -s.6506", ""},
		{"10.17167/mksz.2017.2.129–155", ""},
		{"http://doi.org/10.1234/asdf ", "10.1234/asdf"},
		{"https://dx.doi.org/10.1234/asdf ", "10.1234/asdf"},
		{"doi:10.1234/asdf ", "10.1234/asdf"},
		{"doi:10.1234/ asdf ", ""},
		{"10.4149/gpb¬_2017042", ""},
		{"10.6002/ect.2020.häyry", ""},
		{"10.20944/PREPRINTS202003.0001.V1", "10.20944/preprints202003.0001.v1"},
		{"10.21203/rs.3.rs-16073/v1", "10.21203/rs.3.rs-16073/v1"},
		{"arXiv:2003.00001", ""},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("testing DOI: %s", tc.raw), func(t *testing.T) {
			cleaned := cleanDOI(tc.raw)
			if cleaned != tc.result {
				t.Errorf("want %s, but got %s", tc.result, cleaned)
			}
		})
	}
}
