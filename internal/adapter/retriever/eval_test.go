package retriever

import (
	"testing"
)

func TestPrecisionAtK(t *testing.T) {
	cases := []struct {
		name      string
		retrieved []string
		relevant  []string
		wantP     float64
	}{
		{"perfect", []string{"a.xml", "b.xml", "c.xml"}, []string{"a.xml", "b.xml", "c.xml"}, 1.0},
		{"partial", []string{"a.xml", "b.xml", "x.xml"}, []string{"a.xml", "b.xml", "c.xml"}, 0.666},
		{"none", []string{"x.xml", "y.xml", "z.xml"}, []string{"a.xml", "b.xml", "c.xml"}, 0.0},
		{"empty_retrieved", []string{}, []string{"a.xml", "b.xml"}, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := PrecisionAtK(tc.retrieved, tc.relevant)
			if diff := p - tc.wantP; diff > 0.01 || diff < -0.01 {
				t.Errorf("precision = %.3f, want %.3f", p, tc.wantP)
			}
		})
	}
}

func TestRecallAtK(t *testing.T) {
	cases := []struct {
		name      string
		retrieved []string
		relevant  []string
		wantR     float64
	}{
		{"perfect", []string{"a.xml", "b.xml", "c.xml"}, []string{"a.xml", "b.xml", "c.xml"}, 1.0},
		{"partial", []string{"a.xml", "b.xml", "x.xml"}, []string{"a.xml", "b.xml", "c.xml"}, 0.666},
		{"none", []string{"x.xml", "y.xml", "z.xml"}, []string{"a.xml", "b.xml", "c.xml"}, 0.0},
		{"empty_relevant", []string{"a.xml", "b.xml"}, []string{}, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := RecallAtK(tc.retrieved, tc.relevant)
			if diff := r - tc.wantR; diff > 0.01 || diff < -0.01 {
				t.Errorf("recall = %.3f, want %.3f", r, tc.wantR)
			}
		})
	}
}

func TestReciprocalRank(t *testing.T) {
	cases := []struct {
		name      string
		retrieved []string
		relevant  []string
		wantRR    float64
	}{
		{"first", []string{"a.xml", "b.xml", "c.xml"}, []string{"a.xml"}, 1.0},
		{"second", []string{"x.xml", "a.xml", "c.xml"}, []string{"a.xml"}, 0.5},
		{"third", []string{"x.xml", "y.xml", "a.xml"}, []string{"a.xml"}, 0.333},
		{"any_relevant", []string{"x.xml", "c.xml", "a.xml"}, []string{"a.xml", "c.xml"}, 0.5},
		{"missing", []string{"x.xml", "y.xml", "z.xml"}, []string{"a.xml"}, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := ReciprocalRank(tc.retrieved, tc.relevant)
			if diff := rr - tc.wantRR; diff > 0.01 || diff < -0.01 {
				t.Errorf("RR = %.3f, want %.3f", rr, tc.wantRR)
			}
		})
	}
}

func TestNDCG(t *testing.T) {
	cases := []struct {
		name      string
		retrieved []string
		relevant  []string
		wantNDCG  float64
	}{
		{"perfect", []string{"a.xml", "b.xml", "x.xml"}, []string{"a.xml", "b.xml"}, 1.0},
		// dcg = 1/log2(3) + 1/log2(4) = 1.131, idcg = 1 + 0.631 = 1.631
		{"late", []string{"x.xml", "a.xml", "b.xml"}, []string{"a.xml", "b.xml"}, 0.693},
		{"none", []string{"x.xml", "y.xml"}, []string{"a.xml"}, 0.0},
		{"no_relevant", []string{"x.xml"}, []string{}, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ndcg := NDCG(tc.retrieved, tc.relevant)
			if diff := ndcg - tc.wantNDCG; diff > 0.01 || diff < -0.01 {
				t.Errorf("NDCG = %.3f, want %.3f", ndcg, tc.wantNDCG)
			}
		})
	}
}

func TestDistinctFiles(t *testing.T) {
	got := DistinctFiles([]string{"b.xml", "a.xml", "b.xml", "c.xml", "a.xml"})
	want := []string{"b.xml", "a.xml", "c.xml"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}
